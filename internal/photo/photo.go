// Package photo compresses style photos into the bounded form stored
// inside drafts and records: decoded, scaled down to a maximum
// dimension, and re-encoded as JPEG.
package photo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

// Compress decodes a photo, scales its longest side down to
// maxDimensionPx, and encodes it as JPEG at the given quality.
// Smaller images are never upscaled. JPEG, PNG, and GIF sources are
// accepted.
func Compress(raw []byte, maxDimensionPx, quality int) (*costing.PhotoRef, error) {
	if len(raw) == 0 {
		return nil, errors.NewInvalidRequest("photo data is empty")
	}
	if maxDimensionPx <= 0 {
		return nil, errors.NewInvalidRequest("photo max dimension must be positive")
	}
	if quality <= 0 || quality > 100 {
		return nil, errors.NewInvalidRequest("photo quality must be in 1-100")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("photo is not a decodable image: %v", err))
	}

	scaled := scaleDown(src, maxDimensionPx)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to encode photo: %w", err))
	}

	bounds := scaled.Bounds()
	return &costing.PhotoRef{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: "image/jpeg",
		Data:     buf.Bytes(),
	}, nil
}

// scaleDown scales the image so its longest side is at most maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged.
func scaleDown(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = h * maxDim / w
	} else {
		newH = maxDim
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
