package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailSize = 150
	MediumBound   = 800
	LargeBound    = 1920

	standardQuality = 85
	largeQuality    = 90
)

// Renditions carries the three encoded derivatives of one original.
type Renditions struct {
	Thumbnail []byte
	Medium    []byte
	Large     []byte
}

// ContentType is the MIME type of every encoded rendition.
const ContentType = "image/jpeg"

// Decode reads any supported source format (jpeg, png, gif, webp) and
// reports the detected format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Generate produces all three renditions from a decoded original. The
// source is flattened onto a white background first so transparent
// inputs come out identical across formats.
func Generate(src image.Image, watermarkText string) (Renditions, error) {
	flat := flatten(src)

	thumb, err := encodeJPEG(centerCropSquare(flat, ThumbnailSize), standardQuality)
	if err != nil {
		return Renditions{}, fmt.Errorf("thumbnail: %w", err)
	}

	medium, err := encodeJPEG(resizeBound(flat, MediumBound), standardQuality)
	if err != nil {
		return Renditions{}, fmt.Errorf("medium: %w", err)
	}

	large := resizeBound(flat, LargeBound)
	if watermarkText != "" {
		if err := drawWatermark(large, watermarkText); err != nil {
			return Renditions{}, fmt.Errorf("watermark: %w", err)
		}
	}
	largeData, err := encodeJPEG(large, largeQuality)
	if err != nil {
		return Renditions{}, fmt.Errorf("large: %w", err)
	}

	return Renditions{
		Thumbnail: thumb,
		Medium:    medium,
		Large:     largeData,
	}, nil
}

// flatten composites the source over white and normalizes the bounds
// to the origin.
func flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

// centerCropSquare scales the largest centered square of the source
// into a size x size output.
func centerCropSquare(src *image.RGBA, size int) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	side := w
	if h < side {
		side = h
	}
	x0 := (w - side) / 2
	y0 := (h - side) / 2

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+side, y0+side), xdraw.Src, nil)
	return dst
}

// resizeBound shrinks the source so neither dimension exceeds bound,
// preserving aspect ratio. Images already inside the bound are returned
// untouched; there is no upscaling.
func resizeBound(src *image.RGBA, bound int) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= bound && h <= bound {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = bound
		nh = h * bound / w
	} else {
		nh = bound
		nw = w * bound / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
