package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseWithFrontmatter renders the body to HTML and returns the frontmatter
// as a generic map. A missing frontmatter block yields an empty map.
func (p *Parser) ParseWithFrontmatter(source []byte) (content []byte, meta map[string]any, err error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err = p.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, nil, err
	}

	meta = make(map[string]any)
	data := frontmatter.Get(context)
	if data != nil {
		err = data.Decode(&meta)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode frontmatter: %w", err)
		}
	}

	return buf.Bytes(), meta, nil
}

// DecodeFrontmatter renders the body to HTML and decodes the frontmatter
// into v using v's json tags, so model types need no yaml tags.
func (p *Parser) DecodeFrontmatter(source []byte, v any) (content []byte, err error) {
	content, meta, err := p.ParseWithFrontmatter(source)
	if err != nil {
		return nil, err
	}

	err = decodeMeta(meta, v)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// SplitFrontmatter decodes the frontmatter into v like DecodeFrontmatter and
// returns the markdown body as written, without rendering it.
func (p *Parser) SplitFrontmatter(source []byte, v any) (body []byte, err error) {
	context := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	meta := make(map[string]any)
	data := frontmatter.Get(context)
	if data != nil {
		err = data.Decode(&meta)
		if err != nil {
			return nil, fmt.Errorf("failed to decode frontmatter: %w", err)
		}
	}

	err = decodeMeta(meta, v)
	if err != nil {
		return nil, err
	}

	start, ok := firstLine(doc)
	if !ok {
		return nil, nil
	}
	// back up to the start of the line so block markers survive
	if nl := bytes.LastIndexByte(source[:start], '\n'); nl >= 0 {
		start = nl + 1
	} else {
		start = 0
	}
	return bytes.TrimSpace(source[start:]), nil
}

// firstLine returns the source offset of the first block line in n.
func firstLine(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if start, ok := firstLine(c); ok {
			return start, true
		}
	}
	return 0, false
}

func decodeMeta(meta map[string]any, v any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	err = json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("failed to decode frontmatter: %w", err)
	}
	return nil
}
