package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/avatars/abc123.jpg", "avatars/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/blog-thumbnails/x/y.png", "blog-thumbnails/x/y"},
		{"https://res.cloudinary.com/demo/image/upload/v99/plain.webp", "plain"},
	}
	for _, tt := range tests {
		got, err := ExtractPublicID(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtractPublicIDRejectsForeignURLs(t *testing.T) {
	_, err := ExtractPublicID("https://example.com/images/cat.jpg")
	assert.Error(t, err)

	_, err = ExtractPublicID("https://res.cloudinary.com/demo/image/upload/")
	assert.Error(t, err)
}
