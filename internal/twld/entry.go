package twld

import (
	"github.com/cory-johannsen/twld/internal/tag"
)

// ModTileEntry identifies one mod-contributed tile type.
type ModTileEntry struct {
	// SaveType is the entry's index in the tile registry; grid records
	// reference the entry by this value.
	SaveType uint16
	ModName  string
	Name     string
	// FrameImportant reports whether per-cell frame coordinates are stored.
	FrameImportant bool
}

// FullName returns "{ModName}:{Name}".
func (e ModTileEntry) FullName() string {
	return e.ModName + ":" + e.Name
}

// ModTileEntryFromTag reads a registry entry stored at index.
//
// Postcondition: missing keys yield empty names and FrameImportant false.
func ModTileEntryFromTag(index int, c *tag.Compound) ModTileEntry {
	return ModTileEntry{
		SaveType:       uint16(index),
		ModName:        c.GetString("mod"),
		Name:           c.GetString("name"),
		FrameImportant: c.GetBool("framed"),
	}
}

// ToTag writes the entry as {value, mod, name, framed}.
func (e ModTileEntry) ToTag() *tag.Compound {
	c := tag.NewCompound()
	c.Set("value", tag.Short(int16(e.SaveType)))
	c.Set("mod", tag.String(e.ModName))
	c.Set("name", tag.String(e.Name))
	c.Set("framed", tag.Bool(e.FrameImportant))
	return c
}

// ModWallEntry identifies one mod-contributed wall type.
type ModWallEntry struct {
	SaveType uint16
	ModName  string
	Name     string
}

// FullName returns "{ModName}:{Name}".
func (e ModWallEntry) FullName() string {
	return e.ModName + ":" + e.Name
}

// ModWallEntryFromTag reads a registry entry stored at index.
func ModWallEntryFromTag(index int, c *tag.Compound) ModWallEntry {
	return ModWallEntry{
		SaveType: uint16(index),
		ModName:  c.GetString("mod"),
		Name:     c.GetString("name"),
	}
}

// ToTag writes the entry as {value, mod, name}.
func (e ModWallEntry) ToTag() *tag.Compound {
	c := tag.NewCompound()
	c.Set("value", tag.Short(int16(e.SaveType)))
	c.Set("mod", tag.String(e.ModName))
	c.Set("name", tag.String(e.Name))
	return c
}

func readTileMap(l *tag.List) []ModTileEntry {
	entries := l.Compounds()
	out := make([]ModTileEntry, 0, len(entries))
	for i, c := range entries {
		out = append(out, ModTileEntryFromTag(i, c))
	}
	return out
}

func readWallMap(l *tag.List) []ModWallEntry {
	entries := l.Compounds()
	out := make([]ModWallEntry, 0, len(entries))
	for i, c := range entries {
		out = append(out, ModWallEntryFromTag(i, c))
	}
	return out
}

func tileMapTag(entries []ModTileEntry) *tag.List {
	l := tag.NewList(tag.KindCompound)
	for _, e := range entries {
		l.Items = append(l.Items, e.ToTag())
	}
	return l
}

func wallMapTag(entries []ModWallEntry) *tag.List {
	l := tag.NewList(tag.KindCompound)
	for _, e := range entries {
		l.Items = append(l.Items, e.ToTag())
	}
	return l
}
