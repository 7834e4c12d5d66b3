package twld

import (
	"encoding/binary"
	"fmt"
)

// Dense per-cell word layout. A zero word marks a cell without a mod type;
// otherwise the low bits hold the registry index plus one.
const (
	denseTileIndexMask uint16 = 0x3FFF
	denseTileFrame     uint16 = 0x4000
	denseTileColor     uint16 = 0x8000

	denseWallIndexMask uint16 = 0x7FFF
	denseWallColor     uint16 = 0x8000
)

// MaxDenseTileTypes and MaxDenseWallTypes are the registry sizes the dense
// words can address.
const (
	MaxDenseTileTypes = int(denseTileIndexMask) - 1
	MaxDenseWallTypes = int(denseWallIndexMask) - 1
)

// ParseTileDataDense decodes a dense tile stream: one record per linear
// position, in position order.
//
// Precondition: TileMap is populated.
// Postcondition: Tiles gains only in-range indices; a short stream keeps
// the cells decoded before the cut and sets Truncated.
func (d *Data) ParseTileDataDense(data []byte, wide, high int) ParseStats {
	var stats ParseStats
	d.ensureMaps()
	if wide <= 0 || high <= 0 {
		return stats
	}
	total := wide * high
	c := &cursor{buf: data}
	for p := 0; p < total; p++ {
		word, ok := c.u16()
		if !ok {
			stats.Truncated = true
			break
		}
		stats.Records++
		if word == 0 {
			continue
		}
		td := ModTileData{}
		if word&denseTileFrame != 0 {
			fx, ok1 := c.u16()
			fy, ok2 := c.u16()
			if !ok1 || !ok2 {
				stats.Truncated = true
				break
			}
			td.FrameX, td.FrameY = int16(fx), int16(fy)
		}
		if word&denseTileColor != 0 {
			if td.Color, ok = c.u8(); !ok {
				stats.Truncated = true
				break
			}
		}
		idx := int(word&denseTileIndexMask) - 1
		if idx < 0 || idx >= len(d.TileMap) {
			stats.Dropped++
			continue
		}
		td.Type = uint16(idx)
		d.Tiles[p] = td
		stats.Tiles++
	}
	return stats
}

// ParseWallDataDense decodes a dense wall stream.
//
// Precondition: WallMap is populated.
// Postcondition: Walls gains only in-range indices.
func (d *Data) ParseWallDataDense(data []byte, wide, high int) ParseStats {
	var stats ParseStats
	d.ensureMaps()
	if wide <= 0 || high <= 0 {
		return stats
	}
	total := wide * high
	c := &cursor{buf: data}
	for p := 0; p < total; p++ {
		word, ok := c.u16()
		if !ok {
			stats.Truncated = true
			break
		}
		stats.Records++
		if word == 0 {
			continue
		}
		wd := ModWallData{}
		if word&denseWallColor != 0 {
			if wd.Color, ok = c.u8(); !ok {
				stats.Truncated = true
				break
			}
		}
		idx := int(word&denseWallIndexMask) - 1
		if idx < 0 || idx >= len(d.WallMap) {
			stats.Dropped++
			continue
		}
		wd.Type = uint16(idx)
		d.Walls[p] = wd
		stats.Walls++
	}
	return stats
}

// BuildTileDataDense encodes Tiles as a dense stream covering every cell.
// Frames are written only for FrameImportant entries.
//
// Postcondition: the result holds at least 2*wide*high bytes.
func (d *Data) BuildTileDataDense(wide, high int) ([]byte, error) {
	if len(d.TileMap) > MaxDenseTileTypes {
		return nil, fmt.Errorf("tile registry holds %d types, dense format addresses %d", len(d.TileMap), MaxDenseTileTypes)
	}
	total := wide * high
	if wide <= 0 || high <= 0 {
		total = 0
	}
	out := make([]byte, 0, 2*total)
	for p := 0; p < total; p++ {
		td, ok := d.Tiles[p]
		if !ok || int(td.Type) >= len(d.TileMap) {
			out = append(out, 0, 0)
			continue
		}
		word := td.Type + 1
		framed := d.TileMap[td.Type].FrameImportant
		if framed {
			word |= denseTileFrame
		}
		if td.Color != 0 {
			word |= denseTileColor
		}
		out = binary.LittleEndian.AppendUint16(out, word)
		if framed {
			out = binary.LittleEndian.AppendUint16(out, uint16(td.FrameX))
			out = binary.LittleEndian.AppendUint16(out, uint16(td.FrameY))
		}
		if td.Color != 0 {
			out = append(out, td.Color)
		}
	}
	return out, nil
}

// BuildWallDataDense encodes Walls as a dense stream covering every cell.
//
// Postcondition: the result holds at least 2*wide*high bytes.
func (d *Data) BuildWallDataDense(wide, high int) []byte {
	total := wide * high
	if wide <= 0 || high <= 0 {
		total = 0
	}
	out := make([]byte, 0, 2*total)
	for p := 0; p < total; p++ {
		wd, ok := d.Walls[p]
		if !ok || int(wd.Type) >= len(d.WallMap) || int(wd.Type) >= MaxDenseWallTypes {
			out = append(out, 0, 0)
			continue
		}
		word := wd.Type + 1
		if wd.Color != 0 {
			word |= denseWallColor
		}
		out = binary.LittleEndian.AppendUint16(out, word)
		if wd.Color != 0 {
			out = append(out, wd.Color)
		}
	}
	return out
}
