package imagecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
)

// maxImageBytes bounds a single download.
const maxImageBytes = 10 << 20

// Localizer downloads remote article images and stores them as WebP next to the data files.
type Localizer struct {
	dir        string // filesystem directory, e.g. ./public/data/images
	urlPrefix  string // public path for dir, e.g. /data/images
	quality    int
	httpClient *http.Client
}

func New(dir, urlPrefix string, quality int, timeout time.Duration) *Localizer {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Localizer{
		dir:        dir,
		urlPrefix:  strings.TrimRight(urlPrefix, "/"),
		quality:    quality,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Localize fetches src and writes <dir>/<id>.webp, returning its public path.
func (l *Localizer) Localize(ctx context.Context, id, src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", errors.New("imagecache: empty image url")
	}
	if strings.ContainsAny(id, `/\`) || id == "" {
		return "", fmt.Errorf("imagecache: bad id %q", id)
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: status=%d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := id + ".webp"
	outPath := filepath.Join(l.dir, name)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: float32(l.quality)}); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encode webp: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	b := img.Bounds()
	slog.Info("imagecache: image saved", "path", outPath, "source_format", format,
		"width", b.Dx(), "height", b.Dy(), "duration", time.Since(start))
	return path.Join(l.urlPrefix, name), nil
}
