// Package world holds the in-memory tile grid that mod overlays are applied
// to. Vanilla file parsing lives elsewhere; this package only models the
// cells the overlay attaches to.
package world

import "fmt"

// Tile is a single grid cell.
type Tile struct {
	IsActive  bool
	Type      uint16
	Wall      uint16
	TileColor uint8
	WallColor uint8
	// U and V are the sprite-sheet frame coordinates of the tile.
	U, V int16
	// ModTile is the "{Mod}:{Name}" of a mod tile occupying the cell, or "".
	ModTile string
	// ModWall is the "{Mod}:{Name}" of a mod wall occupying the cell, or "".
	ModWall string
}

// HasMod reports whether the cell carries any mod overlay data.
func (t *Tile) HasMod() bool {
	return t.ModTile != "" || t.ModWall != ""
}

// Grid is a column-major TilesWide x TilesHigh array of tiles.
type Grid struct {
	TilesWide int
	TilesHigh int
	cells     []Tile
}

// NewGrid allocates an empty grid.
//
// Precondition: wide and high must be positive.
// Postcondition: Returns a grid with wide*high zero tiles or a non-nil error.
func NewGrid(wide, high int) (*Grid, error) {
	if wide <= 0 || high <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", wide, high)
	}
	return &Grid{
		TilesWide: wide,
		TilesHigh: high,
		cells:     make([]Tile, wide*high),
	}, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (wide, high int) {
	return g.TilesWide, g.TilesHigh
}

// TileAt returns the cell at (x, y), or nil when out of bounds.
func (g *Grid) TileAt(x, y int) *Tile {
	if x < 0 || y < 0 || x >= g.TilesWide || y >= g.TilesHigh {
		return nil
	}
	return &g.cells[x*g.TilesHigh+y]
}

// CountMod returns the number of cells carrying a mod tile and a mod wall.
func (g *Grid) CountMod() (tiles, walls int) {
	for i := range g.cells {
		if g.cells[i].ModTile != "" {
			tiles++
		}
		if g.cells[i].ModWall != "" {
			walls++
		}
	}
	return tiles, walls
}
