package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	cfg "github.com/templui/ritual/internal/config"
)

func TestNewDisabledWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), &cfg.Config{})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com",
		publicURL(S3Config{Bucket: "media", Region: "eu-west-1"}))
	assert.Equal(t, "http://localhost:9000/media",
		publicURL(S3Config{Bucket: "media", Endpoint: "http://localhost:9000/"}))
}
