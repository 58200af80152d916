package heatmap

// BuildGrid returns the cell centres covering the canvas in row-major order.
// Partial rows and columns at the right and bottom edges are dropped, so a
// grid size larger than either dimension yields an empty grid.
func BuildGrid(c Canvas) ([]GridCell, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rows, cols := c.Rows(), c.Cols()
	g := float64(c.GridSize)
	half := g / 2

	cells := make([]GridCell, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cells = append(cells, GridCell{
				CX: float64(j)*g + half,
				CY: float64(i)*g + half,
			})
		}
	}
	return cells, nil
}
