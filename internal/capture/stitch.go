package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"wplacesnap/internal/slippy"
)

// Stitch composes one canvas from the grid's tile results. The whole
// canvas is filled with bg before any tile is pasted, so Missing cells
// stay background-colored and translucent tiles composite over bg rather
// than over undefined pixels. Tiles decoded at a size other than
// tileSize are resampled to the cell with nearest-neighbor (the canvas
// is pixel art; interpolation would smear it). Results that fail to
// decode here are warned about and treated like Missing.
//
// The returned image is fully opaque: residual alpha is dropped so the
// encoded PNG never carries transparency.
func Stitch(grid slippy.Grid, results []TileResult, bg color.NRGBA, tileSize int, logger zerolog.Logger) *image.NRGBA {
	side := grid.Size * tileSize
	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, cell := range grid.Cells {
		if i >= len(results) || results[i].Missing {
			continue
		}

		tile, _, err := image.Decode(bytes.NewReader(results[i].Data))
		if err != nil {
			logger.Warn().Err(err).Str("tile", cell.Tile.String()).Msg("tile bytes did not decode, leaving background")
			continue
		}

		dst := image.Rect(cell.Col*tileSize, cell.Row*tileSize, (cell.Col+1)*tileSize, (cell.Row+1)*tileSize)
		b := tile.Bounds()
		if b.Dx() == tileSize && b.Dy() == tileSize {
			draw.Draw(canvas, dst, tile, b.Min, draw.Over)
		} else {
			xdraw.NearestNeighbor.Scale(canvas, dst, tile, b, xdraw.Over, nil)
		}
	}

	// Flatten: NRGBA is non-premultiplied, so forcing alpha keeps colors.
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xff
	}
	return canvas
}
