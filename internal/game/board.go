package game

// BoardSize is the edge length of the cube.
const BoardSize = 5

// WinLength is the number of consecutive marks required for a win.
const WinLength = 4

// Mark is the occupant of a single cell.
// 0 indicates an unoccupied space.
// 1 indicates white has played.
// 2 indicates black has played.
type Mark uint8

const (
	Empty Mark = 0
	White Mark = 1
	Black Mark = 2
)

// Board is the 5x5x5 grid. It has value semantics: assigning a Board
// copies every cell, which is what makes the registry's snapshot/rollback
// discipline a plain struct copy.
type Board [BoardSize][BoardSize][BoardSize]Mark

// lineDirections are the 13 distinct unit direction classes through the
// cube: 3 axes, 6 face diagonals (two orientations per plane) and 4 space
// diagonals. Opposite vectors describe the same line, so scanning from
// every starting cell with this set covers all lines exactly.
var lineDirections = [13][3]int{
	// axes
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	// face diagonals
	{1, 1, 0},
	{1, -1, 0},
	{1, 0, 1},
	{1, 0, -1},
	{0, 1, 1},
	{0, 1, -1},
	// space diagonals
	{1, 1, 1},
	{1, 1, -1},
	{1, -1, 1},
	{1, -1, -1},
}

// checkLine reports whether WinLength consecutive cells starting at
// (x, y, z) and stepping by (dx, dy, dz) are all in bounds and hold mark.
func checkLine(board *Board, mark Mark, x, y, z, dx, dy, dz int) bool {
	for i := 0; i < WinLength; i++ {
		nx := x + i*dx
		ny := y + i*dy
		nz := z + i*dz
		if nx < 0 || nx >= BoardSize || ny < 0 || ny >= BoardSize || nz < 0 || nz >= BoardSize {
			return false
		}
		if board[nx][ny][nz] != mark {
			return false
		}
	}
	return true
}

// HasLine reports whether any straight line of four consecutive cells in
// the cube all hold mark. Pure and allocation free.
func HasLine(board *Board, mark Mark) bool {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			for z := 0; z < BoardSize; z++ {
				if board[x][y][z] != mark {
					continue
				}
				for _, d := range lineDirections {
					if checkLine(board, mark, x, y, z, d[0], d[1], d[2]) {
						return true
					}
				}
			}
		}
	}
	return false
}

// InBounds reports whether (x, y, z) addresses a cell of the cube.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize && z >= 0 && z < BoardSize
}
