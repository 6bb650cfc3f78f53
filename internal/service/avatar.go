package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const avatarMaxEdge = 512

// normalizeAvatar decodes the upload, scales it down so the longest edge is
// at most maxEdge and re-encodes it as JPEG. Unsupported or corrupt input
// fails the decode.
func normalizeAvatar(r io.Reader, maxEdge int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("decode avatar: empty image")
	}

	targetWidth, targetHeight := width, height
	if width > maxEdge || height > maxEdge {
		if width >= height {
			targetWidth = maxEdge
			targetHeight = height * maxEdge / width
		} else {
			targetHeight = maxEdge
			targetWidth = width * maxEdge / height
		}
		if targetWidth < 1 {
			targetWidth = 1
		}
		if targetHeight < 1 {
			targetHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
