// Package modcolor resolves display colours for mod tile and wall types:
// an optional override table first, a deterministic hash-derived colour
// otherwise. Colours are for visualisation only.
package modcolor

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Generate returns the fallback colour for a "{Mod}:{Name}" type name.
//
// Postcondition: the result depends only on fullName and is fully opaque.
func Generate(fullName string) color.NRGBA {
	h := xxhash.Sum64String(fullName)
	hue := float64(h%3600) / 10
	sat := 0.55 + float64((h>>16)%40)/100
	val := 0.70 + float64((h>>32)%25)/100
	r, g, b := hsvToRGB(hue, sat, val)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return to8(r + m), to8(g + m), to8(b + m)
}

func to8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional.
func ParseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("colour %q must be #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as "#RRGGBBAA".
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Override is one entry of the override table.
type Override struct {
	Color color.NRGBA
	// Name is the display name; empty when the file gives none.
	Name string
}

// Table holds colour overrides keyed by "{Mod}:{Name}".
type Table struct {
	Tiles map[string]Override
	Walls map[string]Override
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{Tiles: make(map[string]Override), Walls: make(map[string]Override)}
}

// Len returns the number of overrides.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Tiles) + len(t.Walls)
}

// TileColor returns the override for a tile type, or its generated colour.
func (t *Table) TileColor(fullName string) color.NRGBA {
	if t != nil {
		if o, ok := t.Tiles[fullName]; ok {
			return o.Color
		}
	}
	return Generate(fullName)
}

// WallColor returns the override for a wall type, or its generated colour.
func (t *Table) WallColor(fullName string) color.NRGBA {
	if t != nil {
		if o, ok := t.Walls[fullName]; ok {
			return o.Color
		}
	}
	return Generate(fullName)
}

// Lookup returns the tile or wall override for fullName, tiles first.
func (t *Table) Lookup(fullName string) (Override, bool) {
	if t == nil {
		return Override{}, false
	}
	if o, ok := t.Tiles[fullName]; ok {
		return o, true
	}
	o, ok := t.Walls[fullName]
	return o, ok
}

type fileEntry struct {
	Color string `json:"color" yaml:"color"`
	Name  string `json:"name" yaml:"name"`
}

type fileMod struct {
	Tiles map[string]fileEntry `json:"tiles" yaml:"tiles"`
	Walls map[string]fileEntry `json:"walls" yaml:"walls"`
}

// Load reads an override file shaped
// {mod: {tiles: {name: {color, name}}, walls: {...}}}. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
//
// Postcondition: an empty path or a missing file yields an empty table and
// no error; invalid colours fail the load with every violation listed.
func Load(path string) (*Table, error) {
	t := NewTable()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("reading colour overrides %s: %w", path, err)
	}

	var mods map[string]fileMod
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &mods)
	default:
		err = json.Unmarshal(data, &mods)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing colour overrides %s: %w", path, err)
	}

	var errs []string
	flatten := func(dst map[string]Override, mod string, entries map[string]fileEntry) {
		for name, e := range entries {
			c, err := ParseHex(e.Color)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s:%s: %v", mod, name, err))
				continue
			}
			dst[mod+":"+name] = Override{Color: c, Name: e.Name}
		}
	}
	for mod, m := range mods {
		flatten(t.Tiles, mod, m.Tiles)
		flatten(t.Walls, mod, m.Walls)
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, fmt.Errorf("invalid colour overrides in %s: %s", path, strings.Join(errs, "; "))
	}
	return t, nil
}
