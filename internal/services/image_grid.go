package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	"postpilot/internal/models"
)

// SplitComposite slices one composite image into a rows×cols grid of
// equal sub-images in row-major order (panel index = row*cols + col).
// The partition is purely geometric: pixel dimensions divided by rows
// and cols, no content-aware segmentation.
func SplitComposite(data []byte, grid models.GridShape) ([]models.GeneratedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode composite image: %w", err)
	}

	rows, cols := grid.Rows(), grid.Cols()
	bounds := src.Bounds()
	panelW := bounds.Dx() / cols
	panelH := bounds.Dy() / rows
	if panelW == 0 || panelH == 0 {
		return nil, fmt.Errorf("composite %dx%d too small for a %s grid", bounds.Dx(), bounds.Dy(), grid)
	}

	panels := make([]models.GeneratedImage, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			panel := image.NewRGBA(image.Rect(0, 0, panelW, panelH))
			origin := image.Pt(bounds.Min.X+col*panelW, bounds.Min.Y+row*panelH)
			draw.Draw(panel, panel.Bounds(), src, origin, draw.Src)

			var buf bytes.Buffer
			if err := png.Encode(&buf, panel); err != nil {
				return nil, fmt.Errorf("failed to encode panel %d: %w", row*cols+col, err)
			}
			panels = append(panels, models.GeneratedImage{
				Data:     buf.Bytes(),
				MIMEType: "image/png",
			})
		}
	}
	return panels, nil
}

// placeholderPalette gives each placeholder panel a distinct muted tone.
var placeholderPalette = []color.RGBA{
	{R: 0x9a, G: 0xa7, B: 0xb8, A: 0xff},
	{R: 0xb8, G: 0x9a, B: 0xa7, A: 0xff},
	{R: 0xa7, G: 0xb8, B: 0x9a, A: 0xff},
	{R: 0xb8, G: 0xb0, B: 0x9a, A: 0xff},
}

const placeholderSize = 512

// PlaceholderPanels synthesizes rows×cols solid-tone panels so the
// pipeline can complete with visibly degraded output instead of halting.
func PlaceholderPanels(grid models.GridShape) []models.GeneratedImage {
	count := grid.Panels()
	panels := make([]models.GeneratedImage, 0, count)
	for i := 0; i < count; i++ {
		img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
		tone := placeholderPalette[i%len(placeholderPalette)]
		draw.Draw(img, img.Bounds(), image.NewUniform(tone), image.Point{}, draw.Src)
		// A darker band marks the panel index so degraded output is
		// recognizable at a glance.
		band := image.Rect(0, (placeholderSize/count)*i, placeholderSize, (placeholderSize/count)*i+8)
		dark := color.RGBA{R: tone.R / 2, G: tone.G / 2, B: tone.B / 2, A: 0xff}
		draw.Draw(img, band, image.NewUniform(dark), image.Point{}, draw.Src)

		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		panels = append(panels, models.GeneratedImage{
			Data:        buf.Bytes(),
			MIMEType:    "image/png",
			Placeholder: true,
		})
	}
	return panels
}
