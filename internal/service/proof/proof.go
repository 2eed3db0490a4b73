// Package proof prepares payment screenshots for storage.
package proof

import (
	"io"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
	"github.com/IICPAS/IICPAS-sub003/pkg/imaging"
)

const (
	ContentType = imaging.WebPContentType
	Ext         = ".webp"
	quality     = 80
)

// Prepare reads at most maxBytes, checks the upload is an image and re-encodes it as WebP.
func Prepare(r io.Reader, maxBytes int64, maxWidth int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, app_errors.ErrFileSize
	}
	if !imaging.IsImage(data) {
		return nil, app_errors.ErrNotImage
	}
	out, err := imaging.ToWebP(data, maxWidth, quality)
	if err != nil {
		return nil, app_errors.ErrNotImage
	}
	return out, nil
}

// Limits bounds accepted screenshots.
type Limits struct {
	MaxBytes int64
	MaxWidth int
}

func (l Limits) Prepare(r io.Reader) ([]byte, error) {
	return Prepare(r, l.MaxBytes, l.MaxWidth)
}
