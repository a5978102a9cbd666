package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"vecinu/internal/models"

	"github.com/chai2010/webp"
	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MaxUploadBytes = 5 * 1024 * 1024
	MaxDimension   = 2048
	WebPQuality    = 80
	// ContentTypeWebP is the content type of every normalised image.
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// NormalizedImage is an upload re-encoded as WebP.
type NormalizedImage struct {
	Data   []byte
	Width  int
	Height int
}

// NormalizeImage checks the upload's magic bytes, decodes it, scales it down
// to fit MaxDimension and re-encodes it as WebP. Metadata is not carried over.
func NormalizeImage(data []byte) (*NormalizedImage, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(data) > MaxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxUploadBytes/(1024*1024)))
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !allowedImageTypes[kind.MIME.Value] {
		return nil, models.NewValidationError("Unsupported image type, use JPEG, PNG, WebP or GIF")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	scaled := resizeToFit(decoded, MaxDimension, MaxDimension)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, scaled, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("encode webp: %w", err))
	}

	b := scaled.Bounds()
	return &NormalizedImage{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
