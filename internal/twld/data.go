// Package twld reads and writes the mod-overlay sidecar stored beside a
// world file: the registries of mod tile and wall types and the per-cell
// overrides that place them on the vanilla grid.
package twld

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/twld/internal/tag"
)

// Format names the wire sub-format of the grid buffers.
type Format int

const (
	// FormatNone means no grid buffer was present.
	FormatNone Format = iota
	// FormatLegacy is the sparse flag/RLE stream stored under "data".
	FormatLegacy
	// FormatDense is the per-cell pair of streams under "tileData"/"wallData".
	FormatDense
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatDense:
		return "dense"
	default:
		return "none"
	}
}

// ParseFormat maps "legacy" or "dense" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "legacy":
		return FormatLegacy, nil
	case "dense":
		return FormatDense, nil
	default:
		return FormatNone, fmt.Errorf("unknown grid format %q (supported: legacy, dense)", s)
	}
}

// Sidecar tree keys.
const (
	keyHeader   = "0header"
	keyUsedMods = "usedMods"
	keyTiles    = "tiles"
	keyTileMap  = "tileMap"
	keyWallMap  = "wallMap"
	keyData     = "data"
	keyTileData = "tileData"
	keyWallData = "wallData"
)

// ErrDimensionsUnknown reports an encode attempted before Decode or SetSize.
var ErrDimensionsUnknown = errors.New("twld: grid dimensions unknown")

// ModTileData is a mod tile placed on one cell.
type ModTileData struct {
	// Type is the index into Data.TileMap.
	Type  uint16
	Color uint8
	// FrameX and FrameY are meaningful only when the entry is FrameImportant.
	FrameX int16
	FrameY int16
}

// ModWallData is a mod wall placed on one cell.
type ModWallData struct {
	// Type is the index into Data.WallMap.
	Type  uint16
	Color uint8
}

// ParseStats summarises one grid decode.
type ParseStats struct {
	// Records is the number of records read from the stream.
	Records int
	// Tiles and Walls count the cells inserted into the sparse maps.
	Tiles int
	Walls int
	// Dropped counts cells discarded for an out-of-range index or position.
	Dropped int
	// Truncated is set when the stream ended inside a record.
	Truncated bool
	// WideFrames counts legacy records flagged with 0x02/0x04. Those bits
	// are read as single-byte frames; a nonzero count means the stream may
	// have been written with wider frame fields.
	WideFrames int
}

func (s *ParseStats) add(o ParseStats) {
	s.Records += o.Records
	s.Tiles += o.Tiles
	s.Walls += o.Walls
	s.Dropped += o.Dropped
	s.Truncated = s.Truncated || o.Truncated
	s.WideFrames += o.WideFrames
}

// Data is the decoded content of one sidecar file.
//
// A Data is built fresh for each load and is not shared across world
// sessions. TileMap and WallMap are append-only: the slice index of an entry
// is the value grid records use to reference it.
type Data struct {
	// Root is the whole sidecar tree. Keys this package does not manage are
	// written back unchanged.
	Root *tag.Compound

	UsedMods []string
	TileMap  []ModTileEntry
	WallMap  []ModWallEntry

	// Tiles and Walls map a linear position to its override.
	Tiles map[int]ModTileData
	Walls map[int]ModWallData

	Format     Format
	LegacyData []byte
	TileData   []byte
	WallData   []byte

	TilesWide int
	TilesHigh int
}

// New returns an empty Data with no grid buffers.
func New() *Data {
	return &Data{
		Root:  tag.NewCompound(),
		Tiles: make(map[int]ModTileData),
		Walls: make(map[int]ModWallData),
	}
}

// Linear returns the linear position of (x, y) in a grid high cells tall.
func Linear(x, y, high int) int {
	return x*high + y
}

// Coords splits a linear position into (x, y).
func Coords(pos, high int) (x, y int) {
	return pos / high, pos % high
}

// SetSize records the grid dimensions used to encode the sparse maps.
func (d *Data) SetSize(wide, high int) {
	d.TilesWide, d.TilesHigh = wide, high
}

func (d *Data) sizeKnown() bool {
	return d.TilesWide > 0 && d.TilesHigh > 0
}

// FromTag builds a Data from a sidecar tree without decoding the grid.
//
// Precondition: root must be non-nil.
// Postcondition: Format reflects which buffers were present; "data" wins
// when both layouts are somehow present.
func FromTag(root *tag.Compound) *Data {
	d := New()
	d.Root = root
	d.UsedMods = root.GetCompound(keyHeader).GetList(keyUsedMods).Strings()

	tiles := root.GetCompound(keyTiles)
	d.TileMap = readTileMap(tiles.GetList(keyTileMap))
	d.WallMap = readWallMap(tiles.GetList(keyWallMap))

	switch {
	case tiles.ContainsKey(keyData):
		d.Format = FormatLegacy
		d.LegacyData = tiles.GetByteArray(keyData)
	case tiles.ContainsKey(keyTileData) || tiles.ContainsKey(keyWallData):
		d.Format = FormatDense
		d.TileData = tiles.GetByteArray(keyTileData)
		d.WallData = tiles.GetByteArray(keyWallData)
	}
	return d
}

// Decode fills the sparse maps from whichever grid buffers are present.
//
// Precondition: wide and high are the world's dimensions in cells.
// Postcondition: Tiles and Walls hold only this decode's cells, with in-range
// registry indices and positions; anomalies are counted, never returned.
func (d *Data) Decode(wide, high int) ParseStats {
	d.SetSize(wide, high)
	d.Tiles = make(map[int]ModTileData)
	d.Walls = make(map[int]ModWallData)
	var stats ParseStats
	switch d.Format {
	case FormatLegacy:
		stats = d.ParseTileWallBinary(d.LegacyData, wide, high)
	case FormatDense:
		stats.add(d.ParseTileDataDense(d.TileData, wide, high))
		stats.add(d.ParseWallDataDense(d.WallData, wide, high))
	}
	return stats
}

// Encode rebuilds the grid buffers for the current Format from the sparse
// maps. A Data with FormatNone is encoded as legacy.
//
// Precondition: dimensions are known via Decode or SetSize.
// Postcondition: on error Format and every buffer are unchanged.
func (d *Data) Encode() error {
	f := d.Format
	if f != FormatDense {
		f = FormatLegacy
	}
	return d.encodeAs(f)
}

// Convert switches the wire sub-format and re-encodes the buffers.
//
// Postcondition: on error the Data keeps its previous format and buffers.
func (d *Data) Convert(f Format) error {
	if f != FormatLegacy && f != FormatDense {
		return fmt.Errorf("cannot convert to format %s", f)
	}
	return d.encodeAs(f)
}

// encodeAs builds the buffers for f and commits them with the format only
// once every buffer has been built.
func (d *Data) encodeAs(f Format) error {
	if !d.sizeKnown() {
		return ErrDimensionsUnknown
	}
	switch f {
	case FormatDense:
		tiles, err := d.BuildTileDataDense(d.TilesWide, d.TilesHigh)
		if err != nil {
			return err
		}
		walls := d.BuildWallDataDense(d.TilesWide, d.TilesHigh)
		d.Format = FormatDense
		d.TileData, d.WallData = tiles, walls
		d.LegacyData = nil
	default:
		data, err := d.BuildTileWallBinary(d.TilesWide, d.TilesHigh)
		if err != nil {
			return err
		}
		d.Format = FormatLegacy
		d.LegacyData = data
		d.TileData, d.WallData = nil, nil
	}
	return nil
}

// ToTag returns the sidecar tree: Root with the header and tiles sections
// replaced by the current registries and buffers.
//
// Postcondition: Root is not modified; unmanaged keys are carried over.
func (d *Data) ToTag() *tag.Compound {
	root := d.Root.Clone()

	header := root.GetCompound(keyHeader)
	header.Set(keyUsedMods, tag.StringList(d.UsedMods...))
	root.Set(keyHeader, header)

	tiles := root.GetCompound(keyTiles)
	tiles.Set(keyTileMap, tileMapTag(d.TileMap))
	tiles.Set(keyWallMap, wallMapTag(d.WallMap))
	tiles.Set(keyData, nil)
	tiles.Set(keyTileData, nil)
	tiles.Set(keyWallData, nil)
	switch d.Format {
	case FormatLegacy:
		tiles.Set(keyData, tag.ByteArray(d.LegacyData))
	case FormatDense:
		tiles.Set(keyTileData, tag.ByteArray(d.TileData))
		tiles.Set(keyWallData, tag.ByteArray(d.WallData))
	}
	root.Set(keyTiles, tiles)
	return root
}

// TileEntry returns the registry entry for a tile override.
func (d *Data) TileEntry(td ModTileData) (ModTileEntry, bool) {
	if int(td.Type) >= len(d.TileMap) {
		return ModTileEntry{}, false
	}
	return d.TileMap[td.Type], true
}

// WallEntry returns the registry entry for a wall override.
func (d *Data) WallEntry(wd ModWallData) (ModWallEntry, bool) {
	if int(wd.Type) >= len(d.WallMap) {
		return ModWallEntry{}, false
	}
	return d.WallMap[wd.Type], true
}

// InvalidEntries counts sparse-map entries whose registry index is out of
// range. A correctly decoded Data always reports zero.
func (d *Data) InvalidEntries() int {
	n := 0
	for _, td := range d.Tiles {
		if int(td.Type) >= len(d.TileMap) {
			n++
		}
	}
	for _, wd := range d.Walls {
		if int(wd.Type) >= len(d.WallMap) {
			n++
		}
	}
	return n
}
