package twld

import (
	"strings"

	"github.com/cory-johannsen/twld/internal/world"
)

// World is the tile grid an overlay attaches to.
type World interface {
	Size() (wide, high int)
	TileAt(x, y int) *world.Tile
}

// ApplyToWorld writes every decoded override onto its world cell: the
// registry-resolved mod name, the paint colour and, for FrameImportant
// tiles, the frame coordinates.
//
// Postcondition: nil d or nil w is a no-op; cells outside w are skipped.
func ApplyToWorld(d *Data, w World) {
	if d == nil || w == nil {
		return
	}
	_, high := w.Size()
	if high <= 0 {
		return
	}
	for pos, td := range d.Tiles {
		entry, ok := d.TileEntry(td)
		if !ok {
			continue
		}
		x, y := Coords(pos, high)
		t := w.TileAt(x, y)
		if t == nil {
			continue
		}
		t.IsActive = true
		t.ModTile = entry.FullName()
		t.TileColor = td.Color
		if entry.FrameImportant {
			t.U, t.V = td.FrameX, td.FrameY
		}
	}
	for pos, wd := range d.Walls {
		entry, ok := d.WallEntry(wd)
		if !ok {
			continue
		}
		x, y := Coords(pos, high)
		t := w.TileAt(x, y)
		if t == nil {
			continue
		}
		t.ModWall = entry.FullName()
		t.WallColor = wd.Color
	}
}

// StripFromWorld clears every overridden cell so the grid holds only vanilla
// content, for example before writing the vanilla world file.
//
// Postcondition: nil d or nil w is a no-op.
func StripFromWorld(d *Data, w World) {
	if d == nil || w == nil {
		return
	}
	_, high := w.Size()
	if high <= 0 {
		return
	}
	for pos := range d.Tiles {
		x, y := Coords(pos, high)
		if t := w.TileAt(x, y); t != nil && t.ModTile != "" {
			t.IsActive = false
			t.ModTile = ""
			t.TileColor = 0
			t.U, t.V = 0, 0
		}
	}
	for pos := range d.Walls {
		x, y := Coords(pos, high)
		if t := w.TileAt(x, y); t != nil && t.ModWall != "" {
			t.ModWall = ""
			t.WallColor = 0
		}
	}
}

// HarvestFromWorld rebuilds the sparse maps from the mod names on the world's
// cells, so edits made after ApplyToWorld are saved. Names missing from the
// registries are appended; existing entries never move.
//
// Postcondition: nil d or nil w is a no-op; on return the dimensions of d
// match w.
func HarvestFromWorld(d *Data, w World) {
	if d == nil || w == nil {
		return
	}
	wide, high := w.Size()
	d.SetSize(wide, high)
	d.Tiles = make(map[int]ModTileData)
	d.Walls = make(map[int]ModWallData)

	tileIdx := make(map[string]uint16, len(d.TileMap))
	for i, e := range d.TileMap {
		tileIdx[e.FullName()] = uint16(i)
	}
	wallIdx := make(map[string]uint16, len(d.WallMap))
	for i, e := range d.WallMap {
		wallIdx[e.FullName()] = uint16(i)
	}

	for x := 0; x < wide; x++ {
		for y := 0; y < high; y++ {
			t := w.TileAt(x, y)
			if t == nil || !t.HasMod() {
				continue
			}
			pos := Linear(x, y, high)
			if t.ModTile != "" {
				idx, ok := tileIdx[t.ModTile]
				if !ok {
					mod, name := splitFullName(t.ModTile)
					idx = uint16(len(d.TileMap))
					d.TileMap = append(d.TileMap, ModTileEntry{SaveType: idx, ModName: mod, Name: name, FrameImportant: t.U != 0 || t.V != 0})
					tileIdx[t.ModTile] = idx
					d.addUsedMod(mod)
				}
				td := ModTileData{Type: idx, Color: t.TileColor}
				if d.TileMap[idx].FrameImportant {
					td.FrameX, td.FrameY = t.U, t.V
				}
				d.Tiles[pos] = td
			}
			if t.ModWall != "" {
				idx, ok := wallIdx[t.ModWall]
				if !ok {
					mod, name := splitFullName(t.ModWall)
					idx = uint16(len(d.WallMap))
					d.WallMap = append(d.WallMap, ModWallEntry{SaveType: idx, ModName: mod, Name: name})
					wallIdx[t.ModWall] = idx
					d.addUsedMod(mod)
				}
				d.Walls[pos] = ModWallData{Type: idx, Color: t.WallColor}
			}
		}
	}
}

func splitFullName(full string) (mod, name string) {
	mod, name, ok := strings.Cut(full, ":")
	if !ok {
		return "", full
	}
	return mod, name
}

func (d *Data) addUsedMod(mod string) {
	if mod == "" {
		return
	}
	for _, m := range d.UsedMods {
		if m == mod {
			return
		}
	}
	d.UsedMods = append(d.UsedMods, mod)
}
