package twld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestData(framed ...bool) *Data {
	d := New()
	for i, f := range framed {
		d.TileMap = append(d.TileMap, ModTileEntry{SaveType: uint16(i), ModName: "TestMod", Name: "Tile" + string(rune('A'+i)), FrameImportant: f})
	}
	d.WallMap = []ModWallEntry{{SaveType: 0, ModName: "TestMod", Name: "WallA"}}
	return d
}

func TestReadSkip(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want int
		ok   bool
	}{
		{"zero", []byte{0}, 0, true},
		{"single", []byte{7}, 7, true},
		{"continued", []byte{255, 245}, 500, true},
		{"exact 255", []byte{255, 0}, 255, true},
		{"chain of three", []byte{255, 255, 1}, 511, true},
		{"truncated chain", []byte{255}, 255, false},
		{"empty", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &cursor{buf: tc.data}
			got, ok := readSkip(c)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadRecord_Shapes(t *testing.T) {
	tileMap := []ModTileEntry{{SaveType: 0, FrameImportant: true}, {SaveType: 1}}
	cases := []struct {
		name string
		data []byte
		want legacyRecord
	}{
		{"plain tile", []byte{0x01, 1, 0}, legacyRecord{flags: 0x01, hasTile: true, tile: ModTileData{Type: 1}, run: 1}},
		{"framed coloured tile", []byte{0x09, 0, 0, 10, 20, 5}, legacyRecord{flags: 0x09, hasTile: true, tile: ModTileData{Type: 0, Color: 5, FrameX: 10, FrameY: 20}, run: 1}},
		{"coloured wall", []byte{0x30, 2, 1, 3}, legacyRecord{flags: 0x30, hasWall: true, wall: ModWallData{Type: 0x0102, Color: 3}, run: 1}},
		{"run", []byte{0x41, 1, 0, 4}, legacyRecord{flags: 0x41, hasTile: true, tile: ModTileData{Type: 1}, run: 5}},
		{"unknown index has no frame bytes", []byte{0x09, 9, 0, 7}, legacyRecord{flags: 0x09, hasTile: true, tile: ModTileData{Type: 9, Color: 7}, run: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &cursor{buf: tc.data}
			rec, ok := readRecord(c, tileMap)
			require.True(t, ok)
			assert.Equal(t, tc.want, rec)
			assert.True(t, c.done(), "record must consume the whole buffer")
		})
	}
}

func TestReadRecord_Truncated(t *testing.T) {
	tileMap := []ModTileEntry{{FrameImportant: true}}
	for _, data := range [][]byte{{}, {0x01}, {0x01, 0}, {0x01, 0, 0, 10}, {0x09, 0, 0, 1, 2}, {0x30, 0, 0}, {0x41, 0, 0, 1, 1}} {
		c := &cursor{buf: data}
		_, ok := readRecord(c, tileMap)
		assert.False(t, ok, "data %v", data)
	}
}

func TestParseTileWallBinary_SingleTile(t *testing.T) {
	d := newTestData(false)
	stats := d.ParseTileWallBinary([]byte{0, 0x01, 0, 0}, 10, 10)

	require.Len(t, d.Tiles, 1)
	assert.Equal(t, ModTileData{Type: 0}, d.Tiles[Linear(0, 0, 10)])
	assert.Equal(t, ParseStats{Records: 1, Tiles: 1}, stats)
}

func TestParseTileWallBinary_FrameAndColour(t *testing.T) {
	d := newTestData(true)
	d.ParseTileWallBinary([]byte{0, 0x09, 0, 0, 10, 20, 5}, 10, 10)

	td, ok := d.Tiles[Linear(0, 0, 10)]
	require.True(t, ok)
	assert.Equal(t, int16(10), td.FrameX)
	assert.Equal(t, int16(20), td.FrameY)
	assert.Equal(t, uint8(5), td.Color)
}

func TestParseTileWallBinary_WallColour(t *testing.T) {
	d := newTestData(false)
	d.ParseTileWallBinary([]byte{0, 0x30, 0, 0, 3}, 10, 10)

	assert.Empty(t, d.Tiles)
	wd, ok := d.Walls[Linear(0, 0, 10)]
	require.True(t, ok)
	assert.Equal(t, ModWallData{Type: 0, Color: 3}, wd)
}

func TestParseTileWallBinary_SameCount(t *testing.T) {
	d := newTestData(false)
	d.ParseTileWallBinary([]byte{0, 0x41, 0, 0, 4}, 10, 10)

	require.Len(t, d.Tiles, 5)
	for y := 0; y <= 4; y++ {
		td, ok := d.Tiles[Linear(0, y, 10)]
		assert.True(t, ok, "cell (0,%d)", y)
		assert.Equal(t, uint16(0), td.Type)
	}
	_, ok := d.Tiles[Linear(0, 5, 10)]
	assert.False(t, ok)
}

func TestParseTileWallBinary_SkipAfterRecord(t *testing.T) {
	d := newTestData(false)
	d.ParseTileWallBinary([]byte{0, 0x01, 0, 0, 5, 0x01, 0, 0}, 10, 10)

	require.Len(t, d.Tiles, 2)
	assert.Contains(t, d.Tiles, Linear(0, 0, 10))
	assert.Contains(t, d.Tiles, Linear(0, 6, 10))
}

func TestParseTileWallBinary_NextIsMod(t *testing.T) {
	d := newTestData(false)
	d.ParseTileWallBinary([]byte{0, 0x81, 0, 0, 0x01, 0, 0}, 10, 10)

	require.Len(t, d.Tiles, 2)
	assert.Contains(t, d.Tiles, Linear(0, 0, 10))
	assert.Contains(t, d.Tiles, Linear(0, 1, 10))
}

func TestParseTileWallBinary_ContinuedSkip(t *testing.T) {
	d := newTestData(false)
	d.ParseTileWallBinary([]byte{255, 245, 0x01, 0, 0}, 100, 100)

	require.Len(t, d.Tiles, 1)
	assert.Contains(t, d.Tiles, Linear(5, 0, 100))
}

func TestParseTileWallBinary_RunThenSkip(t *testing.T) {
	d := newTestData(false)
	// Run of 3 at 0..2, then skip 2 lands on 5, then next-is-mod lands on 6.
	d.ParseTileWallBinary([]byte{0, 0x41, 0, 0, 2, 2, 0x81, 0, 0, 0x10, 0, 0}, 10, 10)

	assert.Len(t, d.Tiles, 4)
	for _, p := range []int{0, 1, 2, 5} {
		assert.Contains(t, d.Tiles, p)
	}
	assert.Contains(t, d.Walls, 6)
}

func TestParseTileWallBinary_OutOfRangeIndexDropped(t *testing.T) {
	d := newTestData(false)
	var stats ParseStats
	assert.NotPanics(t, func() {
		stats = d.ParseTileWallBinary([]byte{0, 0x11, 5, 0, 7, 0}, 10, 10)
	})

	assert.Empty(t, d.Tiles)
	assert.Empty(t, d.Walls)
	assert.Equal(t, 0, d.InvalidEntries())
	assert.Equal(t, 2, stats.Dropped)
}

func TestParseTileWallBinary_PastGridDropped(t *testing.T) {
	d := newTestData(false)
	// Run of 4 starting at 98 in a 10x10 grid: only 98 and 99 fit.
	stats := d.ParseTileWallBinary([]byte{98, 0x41, 0, 0, 3}, 10, 10)

	assert.Len(t, d.Tiles, 2)
	assert.Equal(t, 2, stats.Dropped)
}

func TestParseTileWallBinary_TruncatedKeepsPrefix(t *testing.T) {
	d := newTestData(false)
	stats := d.ParseTileWallBinary([]byte{0, 0x81, 0, 0, 0x01, 0}, 10, 10)

	assert.True(t, stats.Truncated)
	assert.Len(t, d.Tiles, 1)
	assert.Contains(t, d.Tiles, 0)
}

func TestParseTileWallBinary_GarbageNeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 256).Draw(rt, "data")
		d := newTestData(true, false)
		assert.NotPanics(rt, func() { d.ParseTileWallBinary(data, 20, 20) })
		assert.Equal(rt, 0, d.InvalidEntries())
		for p := range d.Tiles {
			assert.Less(rt, p, 400)
		}
		for p := range d.Walls {
			assert.Less(rt, p, 400)
		}
	})
}

func TestParseTileWallBinary_CountsWideFrameFlags(t *testing.T) {
	d := newTestData(false)
	stats := d.ParseTileWallBinary([]byte{0, 0x83, 0, 0, 0x05, 0, 0, 0, 0x01, 0, 0}, 10, 10)

	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 2, stats.WideFrames)
	assert.Len(t, d.Tiles, 3)
}

func TestBuildTileWallBinary_NeverSetsWideFrameFlags(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := drawRegistries(rt)
		drawOverlay(rt, d, 16, 16, 255)
		data, err := d.BuildTileWallBinary(16, 16)
		require.NoError(rt, err)

		back := New()
		back.TileMap, back.WallMap = d.TileMap, d.WallMap
		assert.Zero(rt, back.ParseTileWallBinary(data, 16, 16).WideFrames)
	})
}

func TestBuildTileWallBinary_KnownBytes(t *testing.T) {
	d := newTestData(false)
	d.Tiles[0] = ModTileData{Type: 0}
	d.Tiles[1] = ModTileData{Type: 0}
	d.Tiles[3] = ModTileData{Type: 0, Color: 2}
	d.Walls[3] = ModWallData{Type: 0}

	data, err := d.BuildTileWallBinary(10, 10)
	require.NoError(t, err)

	want := []byte{
		0, 0x41, 0, 0, 1, // run of two at 0
		1, 0x19, 0, 0, 2, 0, 0, // skip 1 to 3: tile with colour plus wall
	}
	assert.Equal(t, want, data)
}

func TestBuildTileWallBinary_LongSkipAndRun(t *testing.T) {
	d := newTestData(false)
	for p := 255; p < 255+300; p++ {
		d.Tiles[p] = ModTileData{Type: 0}
	}
	data, err := d.BuildTileWallBinary(100, 100)
	require.NoError(t, err)

	assert.Equal(t, []byte{255, 0}, data[:2], "skip of 255 needs a terminating zero")

	back := newTestData(false)
	back.ParseTileWallBinary(data, 100, 100)
	assert.Equal(t, d.Tiles, back.Tiles)
}

func TestBuildTileWallBinary_FrameOverflow(t *testing.T) {
	d := newTestData(true)
	d.Tiles[0] = ModTileData{Type: 0, FrameX: 256}
	_, err := d.BuildTileWallBinary(10, 10)
	assert.ErrorIs(t, err, ErrFrameOverflow)
}

func TestBuildTileWallBinary_Empty(t *testing.T) {
	d := newTestData(false)
	data, err := d.BuildTileWallBinary(10, 10)
	require.NoError(t, err)
	assert.Empty(t, data)
}

// drawOverlay fills d with a random sparse overlay, including runs of
// identical cells, for a wide x high grid.
func drawOverlay(rt *rapid.T, d *Data, wide, high int, frameMax int) {
	total := wide * high
	for n := rapid.IntRange(0, 40).Draw(rt, "cells"); n > 0; n-- {
		pos := rapid.IntRange(0, total-1).Draw(rt, "pos")
		run := rapid.IntRange(1, 4).Draw(rt, "run")
		var td *ModTileData
		if rapid.Bool().Draw(rt, "hasTile") {
			idx := rapid.IntRange(0, len(d.TileMap)-1).Draw(rt, "tile")
			v := ModTileData{Type: uint16(idx), Color: rapid.Uint8().Draw(rt, "tileColor")}
			if d.TileMap[idx].FrameImportant {
				v.FrameX = int16(rapid.IntRange(0, frameMax).Draw(rt, "frameX"))
				v.FrameY = int16(rapid.IntRange(0, frameMax).Draw(rt, "frameY"))
			}
			td = &v
		}
		var wd *ModWallData
		if td == nil || rapid.Bool().Draw(rt, "hasWall") {
			v := ModWallData{Type: uint16(rapid.IntRange(0, len(d.WallMap)-1).Draw(rt, "wall")), Color: rapid.Uint8().Draw(rt, "wallColor")}
			wd = &v
		}
		for p := pos; p < pos+run && p < total; p++ {
			if td != nil {
				d.Tiles[p] = *td
			}
			if wd != nil {
				d.Walls[p] = *wd
			}
		}
	}
}

func drawRegistries(rt *rapid.T) *Data {
	d := New()
	for i, n := 0, rapid.IntRange(1, 5).Draw(rt, "tileTypes"); i < n; i++ {
		d.TileMap = append(d.TileMap, ModTileEntry{SaveType: uint16(i), ModName: "M", Name: "T", FrameImportant: rapid.Bool().Draw(rt, "framed")})
	}
	for i, n := 0, rapid.IntRange(1, 3).Draw(rt, "wallTypes"); i < n; i++ {
		d.WallMap = append(d.WallMap, ModWallEntry{SaveType: uint16(i), ModName: "M", Name: "W"})
	}
	return d
}

func TestLegacy_RoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		wide := rapid.IntRange(1, 40).Draw(rt, "wide")
		high := rapid.IntRange(1, 40).Draw(rt, "high")
		d := drawRegistries(rt)
		drawOverlay(rt, d, wide, high, 255)

		data, err := d.BuildTileWallBinary(wide, high)
		require.NoError(rt, err)

		back := New()
		back.TileMap, back.WallMap = d.TileMap, d.WallMap
		stats := back.ParseTileWallBinary(data, wide, high)

		assert.False(rt, stats.Truncated)
		assert.Equal(rt, 0, stats.Dropped)
		assert.Equal(rt, d.Tiles, back.Tiles)
		assert.Equal(rt, d.Walls, back.Walls)
	})
}
