package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	watermarkFontSize = 24.0
	watermarkMargin   = 12
	shadowOffset      = 2
)

var watermarkFont *truetype.Font

func init() {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse embedded font: %v", err))
	}
	watermarkFont = f
}

// drawWatermark writes text into the bottom-right corner: white fill
// over a black shadow offset by 2px, so it stays legible on any
// background.
func drawWatermark(dst *image.RGBA, text string) error {
	bounds := dst.Bounds()

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(watermarkFont)
	c.SetFontSize(watermarkFontSize)
	c.SetClip(bounds)
	c.SetDst(dst)
	c.SetHinting(font.HintingFull)

	textWidth := int(float64(len(text)) * watermarkFontSize * 0.6)
	x := bounds.Dx() - textWidth - watermarkMargin
	if x < watermarkMargin {
		x = watermarkMargin
	}
	y := bounds.Dy() - watermarkMargin

	c.SetSrc(image.NewUniform(color.RGBA{0, 0, 0, 200}))
	if _, err := c.DrawString(text, freetype.Pt(x+shadowOffset, y+shadowOffset)); err != nil {
		return fmt.Errorf("draw shadow: %w", err)
	}

	c.SetSrc(image.NewUniform(color.RGBA{255, 255, 255, 255}))
	if _, err := c.DrawString(text, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("draw text: %w", err)
	}

	return nil
}
