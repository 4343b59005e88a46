package models

// GridShape is the panel layout of a generated image grid.
type GridShape string

const (
	Grid2x2 GridShape = "2x2"
	Grid3x3 GridShape = "3x3"
)

func (g GridShape) Rows() int {
	if g == Grid3x3 {
		return 3
	}
	return 2
}

func (g GridShape) Cols() int {
	return g.Rows()
}

// Panels is rows×cols: 4 for 2x2, 9 for 3x3. Unknown shapes fall back
// to 2x2.
func (g GridShape) Panels() int {
	return g.Rows() * g.Cols()
}

func (g GridShape) Valid() bool {
	return g == Grid2x2 || g == Grid3x3
}
