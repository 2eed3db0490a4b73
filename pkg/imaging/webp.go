// Package imaging normalises uploaded screenshots into WebP.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const WebPContentType = "image/webp"

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Sniff returns the detected content type of data.
func Sniff(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

func IsImage(data []byte) bool {
	return strings.HasPrefix(Sniff(data), "image/")
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	ct := Sniff(data)
	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(data))
	}
	return nil, ErrUnsupportedFormat
}

// Downscale keeps the aspect ratio and never upscales.
func Downscale(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || w <= maxW {
		return src
	}
	scale := float64(maxW) / float64(w)
	nh := int(math.Max(1, math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, maxW, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ToWebP decodes a jpeg, png or webp image, shrinks it to maxW and re-encodes it lossy.
func ToWebP(data []byte, maxW int, quality float32) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	if quality <= 0 {
		quality = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, Downscale(img, maxW), &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
