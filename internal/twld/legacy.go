package twld

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// Legacy record flag bits.
const (
	flagTile      byte = 0x01
	flagWideX     byte = 0x02
	flagWideY     byte = 0x04
	flagTileColor byte = 0x08
	flagWall      byte = 0x10
	flagWallColor byte = 0x20
	flagSameCount byte = 0x40
	flagNextIsMod byte = 0x80
)

// maxRun is the longest run one same-count byte can describe.
const maxRun = 256

// ErrFrameOverflow reports a frame coordinate the legacy format cannot hold.
var ErrFrameOverflow = errors.New("twld: frame coordinate does not fit in a byte")

// cursor walks a legacy stream. pos is the linear position the next record
// lands on once its skip, if any, has been applied.
type cursor struct {
	buf []byte
	off int
	pos int
}

func (c *cursor) done() bool {
	return c.off >= len(c.buf)
}

func (c *cursor) u8() (byte, bool) {
	if c.off >= len(c.buf) {
		return 0, false
	}
	b := c.buf[c.off]
	c.off++
	return b, true
}

func (c *cursor) u16() (uint16, bool) {
	if len(c.buf)-c.off < 2 {
		c.off = len(c.buf)
		return 0, false
	}
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, true
}

// legacyRecord is one decoded record before placement.
type legacyRecord struct {
	flags   byte
	hasTile bool
	tile    ModTileData
	hasWall bool
	wall    ModWallData
	// run is the number of cells the record covers, at least 1.
	run int
}

// readSkip reads a skip chain: 255 adds 255 and continues, any other value
// adds itself and ends the chain.
func readSkip(c *cursor) (int, bool) {
	skip := 0
	for {
		b, ok := c.u8()
		if !ok {
			return skip, false
		}
		skip += int(b)
		if b != 255 {
			return skip, true
		}
	}
}

// readRecord reads the flags byte and payload of one record. Frame bytes are
// expected only when the tile index resolves to a FrameImportant entry.
func readRecord(c *cursor, tileMap []ModTileEntry) (legacyRecord, bool) {
	rec := legacyRecord{run: 1}
	flags, ok := c.u8()
	if !ok {
		return rec, false
	}
	rec.flags = flags

	if flags&flagTile != 0 {
		idx, ok := c.u16()
		if !ok {
			return rec, false
		}
		rec.hasTile = true
		rec.tile.Type = idx
		if int(idx) < len(tileMap) && tileMap[idx].FrameImportant {
			fx, ok1 := c.u8()
			fy, ok2 := c.u8()
			if !ok1 || !ok2 {
				return rec, false
			}
			rec.tile.FrameX, rec.tile.FrameY = int16(fx), int16(fy)
		}
		if flags&flagTileColor != 0 {
			if rec.tile.Color, ok = c.u8(); !ok {
				return rec, false
			}
		}
	}

	if flags&flagWall != 0 {
		idx, ok := c.u16()
		if !ok {
			return rec, false
		}
		rec.hasWall = true
		rec.wall.Type = idx
		if flags&flagWallColor != 0 {
			if rec.wall.Color, ok = c.u8(); !ok {
				return rec, false
			}
		}
	}

	if flags&flagSameCount != 0 {
		n, ok := c.u8()
		if !ok {
			return rec, false
		}
		rec.run = int(n) + 1
	}
	return rec, true
}

// place stores rec at pos and the run of cells after it, dropping cells
// outside the grid and indices outside the registries.
func (d *Data) place(rec legacyRecord, pos, total int, stats *ParseStats) {
	for i := 0; i < rec.run; i++ {
		p := pos + i
		inGrid := p >= 0 && p < total
		if rec.hasTile {
			if inGrid && int(rec.tile.Type) < len(d.TileMap) {
				d.Tiles[p] = rec.tile
				stats.Tiles++
			} else {
				stats.Dropped++
			}
		}
		if rec.hasWall {
			if inGrid && int(rec.wall.Type) < len(d.WallMap) {
				d.Walls[p] = rec.wall
				stats.Walls++
			} else {
				stats.Dropped++
			}
		}
	}
}

// ParseTileWallBinary decodes a legacy flag/RLE stream into the sparse maps.
//
// Precondition: TileMap and WallMap are populated; wide and high are the
// world's dimensions.
// Postcondition: never panics on malformed input; decoding stops at the
// first incomplete record and keeps everything before it.
func (d *Data) ParseTileWallBinary(data []byte, wide, high int) ParseStats {
	var stats ParseStats
	d.ensureMaps()
	total := wide * high
	if wide <= 0 || high <= 0 {
		total = 0
	}

	c := &cursor{buf: data}
	nextIsMod := false
	for !c.done() {
		if !nextIsMod {
			skip, ok := readSkip(c)
			if !ok {
				stats.Truncated = true
				break
			}
			c.pos += skip
		}
		rec, ok := readRecord(c, d.TileMap)
		if !ok {
			stats.Truncated = true
			break
		}
		stats.Records++
		if rec.flags&(flagWideX|flagWideY) != 0 {
			stats.WideFrames++
		}
		d.place(rec, c.pos, total, &stats)
		c.pos += rec.run
		nextIsMod = rec.flags&flagNextIsMod != 0
	}
	return stats
}

// cell is the combined tile and wall override at one position.
type cell struct {
	hasTile bool
	tile    ModTileData
	hasWall bool
	wall    ModWallData
}

type span struct {
	pos  int
	run  int
	cell cell
}

// spans groups the sparse maps into runs of identical consecutive cells,
// ordered by position. Entries outside the grid or registries are skipped.
func (d *Data) spans(total int) []span {
	positions := make([]int, 0, len(d.Tiles)+len(d.Walls))
	seen := make(map[int]struct{}, len(d.Tiles)+len(d.Walls))
	for p, td := range d.Tiles {
		if p >= 0 && p < total && int(td.Type) < len(d.TileMap) {
			positions = append(positions, p)
			seen[p] = struct{}{}
		}
	}
	for p, wd := range d.Walls {
		if _, dup := seen[p]; dup {
			continue
		}
		if p >= 0 && p < total && int(wd.Type) < len(d.WallMap) {
			positions = append(positions, p)
		}
	}
	sort.Ints(positions)

	var out []span
	for _, p := range positions {
		ce := d.cellAt(p)
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.pos+last.run == p && last.run < maxRun && last.cell == ce {
				last.run++
				continue
			}
		}
		out = append(out, span{pos: p, run: 1, cell: ce})
	}
	return out
}

func (d *Data) cellAt(p int) cell {
	var ce cell
	if td, ok := d.Tiles[p]; ok && int(td.Type) < len(d.TileMap) {
		ce.hasTile, ce.tile = true, td
	}
	if wd, ok := d.Walls[p]; ok && int(wd.Type) < len(d.WallMap) {
		ce.hasWall, ce.wall = true, wd
	}
	return ce
}

func appendSkip(out []byte, skip int) []byte {
	for skip >= 255 {
		out = append(out, 255)
		skip -= 255
	}
	return append(out, byte(skip))
}

// BuildTileWallBinary encodes the sparse maps as a legacy flag/RLE stream.
//
// Precondition: every FrameImportant tile override has frames in 0..255.
// Postcondition: ParseTileWallBinary of the result with the same registries
// and dimensions reproduces the in-range entries of Tiles and Walls.
func (d *Data) BuildTileWallBinary(wide, high int) ([]byte, error) {
	total := wide * high
	if wide <= 0 || high <= 0 {
		total = 0
	}
	spans := d.spans(total)

	var out []byte
	next := 0
	for i, s := range spans {
		if i == 0 || spans[i-1].pos+spans[i-1].run != s.pos {
			out = appendSkip(out, s.pos-next)
		}

		var flags byte
		if s.cell.hasTile {
			flags |= flagTile
			if s.cell.tile.Color != 0 {
				flags |= flagTileColor
			}
		}
		if s.cell.hasWall {
			flags |= flagWall
			if s.cell.wall.Color != 0 {
				flags |= flagWallColor
			}
		}
		if s.run > 1 {
			flags |= flagSameCount
		}
		if i+1 < len(spans) && spans[i+1].pos == s.pos+s.run {
			flags |= flagNextIsMod
		}
		out = append(out, flags)

		if s.cell.hasTile {
			td := s.cell.tile
			out = binary.LittleEndian.AppendUint16(out, td.Type)
			if d.TileMap[td.Type].FrameImportant {
				if td.FrameX < 0 || td.FrameX > 255 || td.FrameY < 0 || td.FrameY > 255 {
					x, y := Coords(s.pos, high)
					return nil, fmt.Errorf("%w: (%d,%d) at cell (%d,%d)", ErrFrameOverflow, td.FrameX, td.FrameY, x, y)
				}
				out = append(out, byte(td.FrameX), byte(td.FrameY))
			}
			if flags&flagTileColor != 0 {
				out = append(out, td.Color)
			}
		}
		if s.cell.hasWall {
			out = binary.LittleEndian.AppendUint16(out, s.cell.wall.Type)
			if flags&flagWallColor != 0 {
				out = append(out, s.cell.wall.Color)
			}
		}
		if s.run > 1 {
			out = append(out, byte(s.run-1))
		}
		next = s.pos + s.run
	}
	return out, nil
}

func (d *Data) ensureMaps() {
	if d.Tiles == nil {
		d.Tiles = make(map[int]ModTileData)
	}
	if d.Walls == nil {
		d.Walls = make(map[int]ModWallData)
	}
}
