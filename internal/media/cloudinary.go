package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/khalidsaid/storefront/pkg/config"
)

// CloudinaryStore implements Store on top of the Cloudinary upload API.
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	timeout time.Duration
	logger  *slog.Logger
}

// NewCloudinaryStore creates a media store client from the given credentials.
func NewCloudinaryStore(cfg config.MediaConfig, logger *slog.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &CloudinaryStore{
		cld:     cld,
		timeout: cfg.UploadTimeout,
		logger:  logger.With("component", "media"),
	}, nil
}

// Upload stores content under the given folder and returns the secure
// delivery URL as the durable reference.
func (s *CloudinaryStore) Upload(ctx context.Context, content []byte, folder string, kind Kind) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrUploadFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(content), uploader.UploadParams{
		Folder:       folder,
		ResourceType: string(kind),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: response carries no secure URL", ErrUploadFailed)
	}
	s.logger.DebugContext(ctx, "Uploaded asset", "folder", folder, "public_id", result.PublicID)
	return result.SecureURL, nil
}

// Remove deletes previously stored content addressed by its delivery URL.
func (s *CloudinaryStore) Remove(ctx context.Context, reference string, kind Kind) error {
	publicID := publicIDFromURL(reference)
	if publicID == "" {
		return fmt.Errorf("%w: cannot derive public ID from %q", ErrRemoveFailed, reference)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoveFailed, err)
	}
	// "not found" counts as removed: the asset is gone either way.
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("%w: %s", ErrRemoveFailed, result.Result)
	}
	return nil
}

// publicIDFromURL extracts the public ID (folder plus name, without version
// or extension) from a Cloudinary delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v123/products/images/abc.png
func publicIDFromURL(reference string) string {
	u, err := url.Parse(reference)
	if err != nil {
		return ""
	}
	const marker = "/upload/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimPrefix(u.Path[idx+len(marker):], "/")
	if first, remainder, found := strings.Cut(rest, "/"); found && isVersionSegment(first) {
		rest = remainder
	}
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	return rest
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
