package slippy

// Cell is one position in a capture grid. Tile holds the wrapped/clamped
// index to fetch; Col and Row are the zero-based canvas position.
type Cell struct {
	Tile Tile
	Col  int
	Row  int
}

// Grid is a square arrangement of tiles centered on one tile, enumerated
// row-major, top-to-bottom then left-to-right, matching canvas layout.
type Grid struct {
	Center Tile
	Size   int
	Cells  []Cell
}

// BuildGrid enumerates the Size x Size grid of tiles around center.
//
// Offsets from the center tile run [-h, h] on both axes for odd Size
// (center tile at the exact middle) and [-h, h-1] for even Size: the
// center point then lies on the shared corner of the middle four tiles,
// and the center tile is the one whose top-left corner is nearest, at
// grid position (h, h). Indices past the world edge are wrapped in X and
// clamped in Y, so edge rows may repeat tiles.
func BuildGrid(center Tile, size int) Grid {
	h := size / 2
	lo, hi := -h, h
	if size%2 == 0 {
		hi = h - 1
	}

	cells := make([]Cell, 0, size*size)
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			x, y := WrapClamp(center.X+dx, center.Y+dy, center.Zoom)
			cells = append(cells, Cell{
				Tile: Tile{Zoom: center.Zoom, X: x, Y: y},
				Col:  dx + h,
				Row:  dy + h,
			})
		}
	}
	return Grid{Center: center, Size: size, Cells: cells}
}
