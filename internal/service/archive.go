package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storyboarder/ai-service/internal/client"
)

const maxArchiveBytes = 20 << 20

// ErrImageTooLarge is returned for images above the archive size limit.
var ErrImageTooLarge = errors.New("image exceeds archive size limit")

// ImageArchiver downloads provider-hosted images, which expire, and re-uploads
// them to object storage.
type ImageArchiver struct {
	store      client.ObjectStore
	httpClient *http.Client
	maxBytes   int64
	now        func() time.Time
}

func NewImageArchiver(store client.ObjectStore, httpClient *http.Client) *ImageArchiver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ImageArchiver{store: store, httpClient: httpClient, maxBytes: maxArchiveBytes, now: time.Now}
}

// Archive stores the image at sourceURL under panels/<yyyy>/<mm>/<uuid><ext>
// and returns its public URL.
func (a *ImageArchiver) Archive(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}

	if resp.ContentLength > a.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrImageTooLarge, resp.ContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(body)) > a.maxBytes {
		return "", ErrImageTooLarge
	}

	now := a.now().UTC()
	key := fmt.Sprintf("panels/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New().String(), extensionFor(mediaType))

	return a.store.Upload(ctx, key, bytes.NewReader(body), mediaType)
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
