package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	FolderAvatars    = "avatars"
	FolderThumbnails = "blog-thumbnails"
	FolderUploads    = "uploads"
)

// ImageStore hosts user supplied images and hands back a public URL.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}

	return resp.SecureURL, nil
}

// Delete removes an image using its full delivery URL.
func (s *CloudinaryStore) Delete(ctx context.Context, imageURL string) error {
	publicID, err := ExtractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ExtractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v1234567890/avatars/abc123.jpg
// into avatars/abc123.
func ExtractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(parts)-1 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[idx+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
