package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `---
slug: evening-walk
tags:
  - outdoors
  - calm
---
Walk **slowly**.
`

func TestParseWithFrontmatter(t *testing.T) {
	html, meta, err := NewParser().ParseWithFrontmatter([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "evening-walk", meta["slug"])
	assert.Contains(t, string(html), "<strong>slowly</strong>")
	assert.NotContains(t, string(html), "slug:")
}

func TestDecodeFrontmatter(t *testing.T) {
	var out struct {
		Slug string   `json:"slug"`
		Tags []string `json:"tags"`
	}

	_, err := NewParser().DecodeFrontmatter([]byte(doc), &out)
	require.NoError(t, err)

	assert.Equal(t, "evening-walk", out.Slug)
	assert.Equal(t, []string{"outdoors", "calm"}, out.Tags)
}

func TestParseWithoutFrontmatter(t *testing.T) {
	_, meta, err := NewParser().ParseWithFrontmatter([]byte("# Title\n"))
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestSplitFrontmatter(t *testing.T) {
	var out struct {
		Slug string `json:"slug"`
	}

	body, err := NewParser().SplitFrontmatter([]byte(doc), &out)
	require.NoError(t, err)

	assert.Equal(t, "evening-walk", out.Slug)
	assert.Equal(t, "Walk **slowly**.", string(body))
}

func TestSplitFrontmatterKeepsBlockMarkers(t *testing.T) {
	source := "---\nslug: list\n---\n\n# Plan\n\n- stretch\n- walk\n"

	var out map[string]any
	body, err := NewParser().SplitFrontmatter([]byte(source), &out)
	require.NoError(t, err)

	assert.Equal(t, "list", out["slug"])
	assert.Equal(t, "# Plan\n\n- stretch\n- walk", string(body))
}

func TestSplitFrontmatterWithoutBody(t *testing.T) {
	var out map[string]any
	body, err := NewParser().SplitFrontmatter([]byte("---\nslug: empty\n---\n"), &out)
	require.NoError(t, err)

	assert.Empty(t, body)
	assert.Equal(t, "empty", out["slug"])
}
