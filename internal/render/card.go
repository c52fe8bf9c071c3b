package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

// Share card geometry. The card is a fixed 600x800 portrait raster:
// photo thumbnail on top, style and price lines below.
const (
	cardWidth   = 600
	cardHeight  = 800
	cardMargin  = 24
	photoMaxDim = 420
	lineHeight  = 26
)

var (
	cardBackground = color.RGBA{R: 250, G: 250, B: 248, A: 255}
	cardInk        = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	cardAccent     = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// ShareCard renders a record as a 600x800 PNG: the style photo, name,
// gauge and composition, and the FOB and final per-piece prices.
func ShareCard(r *costing.CostingRecord) ([]byte, error) {
	if r == nil {
		return nil, errors.NewInvalidRequest("record is required")
	}

	card := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(card, card.Bounds(), image.NewUniform(cardBackground), image.Point{}, draw.Src)

	y := cardMargin
	if r.Photo != nil {
		if thumb, err := decodePhoto(r.Photo); err == nil {
			y = drawThumbnail(card, thumb, y)
		}
	}
	y += lineHeight

	cur := r.Style.Currency
	drawLine(card, y, cardInk, r.Style.Name)
	y += lineHeight
	drawLine(card, y, cardAccent, fmt.Sprintf("%sgg  %s", r.Style.Gauge, r.Style.Composition))
	y += lineHeight
	drawLine(card, y, cardAccent, r.Style.Description)
	y += 2 * lineHeight

	drawLine(card, y, cardInk, fmt.Sprintf("FOB per piece    %s", money(cur, r.Snapshot.FOBPerPiece)))
	y += lineHeight
	drawLine(card, y, cardInk, fmt.Sprintf("Final per piece  %s", money(cur, r.Snapshot.FinalPerPiece)))

	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to encode share card: %w", err))
	}
	return buf.Bytes(), nil
}

// decodePhoto decodes the stored photo bytes back into an image.
func decodePhoto(p *costing.PhotoRef) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	return img, err
}

// drawThumbnail scales the photo into the top area of the card,
// centered horizontally, and returns the y coordinate below it.
func drawThumbnail(card *image.RGBA, photo image.Image, top int) int {
	bounds := photo.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return top
	}

	scale := 1.0
	if w > photoMaxDim || h > photoMaxDim {
		sw := float64(photoMaxDim) / float64(w)
		sh := float64(photoMaxDim) / float64(h)
		scale = min(sw, sh)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)

	x0 := (cardWidth - tw) / 2
	target := image.Rect(x0, top, x0+tw, top+th)
	draw.CatmullRom.Scale(card, target, photo, bounds, draw.Over, nil)
	return top + th
}

// drawLine draws one line of text at the left margin.
func drawLine(card *image.RGBA, y int, ink color.Color, text string) {
	if text == "" {
		return
	}
	d := font.Drawer{
		Dst:  card,
		Src:  image.NewUniform(ink),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(cardMargin, y),
	}
	d.DrawString(text)
}
