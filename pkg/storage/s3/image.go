package s3

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
)

// ErrUnsupportedImage is returned when the upload is not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// PreparedImage is an upload ready for the bucket.
type PreparedImage struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// PrepareImage decodes data, downscales it to fit maxWidth x maxHeight while
// keeping the aspect ratio, and re-encodes it. PNG stays PNG to keep
// transparency; everything else becomes JPEG at the given quality.
func PrepareImage(data []byte, maxWidth, maxHeight, quality int) (PreparedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return PreparedImage{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && maxHeight > 0 && (bounds.Dx() > maxWidth || bounds.Dy() > maxHeight) {
		img = resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)
	}

	var out bytes.Buffer
	prepared := PreparedImage{
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if format == "png" {
		if err := png.Encode(&out, img); err != nil {
			return PreparedImage{}, fmt.Errorf("encoding png: %w", err)
		}
		prepared.ContentType = "image/png"
		prepared.Ext = "png"
	} else {
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
			return PreparedImage{}, fmt.Errorf("encoding jpeg: %w", err)
		}
		prepared.ContentType = "image/jpeg"
		prepared.Ext = "jpg"
	}
	prepared.Data = out.Bytes()
	return prepared, nil
}
