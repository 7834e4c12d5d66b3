package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/twld/internal/modcolor"
	"github.com/cory-johannsen/twld/internal/twld"
	"github.com/cory-johannsen/twld/internal/world"
)

// printSummary writes the registries with their display colours, followed
// by how many overrides landed on the grid.
func printSummary(w io.Writer, d *twld.Data, grid *world.Grid, colors *modcolor.Table) {
	fmt.Fprintf(w, "format: %s\n", d.Format)
	fmt.Fprintf(w, "mods: %s\n", strings.Join(d.UsedMods, ", "))

	fmt.Fprintf(w, "tile types: %d\n", len(d.TileMap))
	for i, e := range d.TileMap {
		name := e.FullName()
		framed := ""
		if e.FrameImportant {
			framed = " framed"
		}
		fmt.Fprintf(w, "  %4d %s %s%s%s\n", i, modcolor.Hex(colors.TileColor(name)), name, displayName(colors, name), framed)
	}

	fmt.Fprintf(w, "wall types: %d\n", len(d.WallMap))
	for i, e := range d.WallMap {
		name := e.FullName()
		fmt.Fprintf(w, "  %4d %s %s%s\n", i, modcolor.Hex(colors.WallColor(name)), name, displayName(colors, name))
	}

	tiles, walls := grid.CountMod()
	fmt.Fprintf(w, "overrides: %d tiles, %d walls (%d tiles, %d walls placed)\n", len(d.Tiles), len(d.Walls), tiles, walls)
}

func displayName(colors *modcolor.Table, fullName string) string {
	if o, ok := colors.Lookup(fullName); ok && o.Name != "" {
		return fmt.Sprintf(" %q", o.Name)
	}
	return ""
}
