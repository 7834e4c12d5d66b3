package twld

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/twld/internal/config"
	"github.com/cory-johannsen/twld/internal/tag"
)

// DefaultExtension is the sidecar file extension.
const DefaultExtension = ".twld"

// TwldPath returns the sidecar path for a world file: same directory and
// base name with the extension replaced by DefaultExtension.
func TwldPath(worldPath string) string {
	return replaceExt(worldPath, DefaultExtension)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Store locates, loads and saves sidecar files.
type Store struct {
	ext        string
	compressed bool
	logger     *zap.Logger
}

// NewStore constructs a Store from sidecar configuration.
//
// Precondition: cfg.Extension starts with "."; a nil logger disables logging.
// Postcondition: returns a non-nil Store.
func NewStore(cfg config.SidecarConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return &Store{ext: ext, compressed: cfg.Compressed, logger: logger.Named("store")}
}

// Path returns the sidecar path for worldPath.
func (s *Store) Path(worldPath string) string {
	return replaceExt(worldPath, s.ext)
}

// Load reads the sidecar beside worldPath without decoding the grid.
//
// Postcondition: returns (nil, nil) when no sidecar exists; a non-nil error
// means the sidecar exists but its envelope could not be read.
func (s *Store) Load(worldPath string) (*Data, error) {
	path := s.Path(worldPath)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no sidecar", zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("checking sidecar %s: %w", path, err)
	}

	root, err := tag.FromFile(path, s.compressed)
	if err != nil {
		s.logger.Warn("sidecar unreadable", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("loading sidecar: %w", err)
	}
	d := FromTag(root)
	s.logger.Info("sidecar loaded",
		zap.String("path", path),
		zap.Stringer("format", d.Format),
		zap.Int("tile_types", len(d.TileMap)),
		zap.Int("wall_types", len(d.WallMap)),
		zap.Strings("used_mods", d.UsedMods),
	)
	return d, nil
}

// LoadDecoded loads the sidecar beside worldPath and decodes its grid.
//
// Postcondition: returns (nil, nil) when no sidecar exists.
func (s *Store) LoadDecoded(worldPath string, wide, high int) (*Data, error) {
	d, err := s.Load(worldPath)
	if err != nil || d == nil {
		return d, err
	}
	stats := d.Decode(wide, high)
	fields := []zap.Field{
		zap.Int("records", stats.Records),
		zap.Int("tiles", stats.Tiles),
		zap.Int("walls", stats.Walls),
	}
	if stats.Dropped > 0 || stats.Truncated || stats.WideFrames > 0 {
		s.logger.Warn("sidecar grid anomalies",
			append(fields,
				zap.Int("dropped", stats.Dropped),
				zap.Bool("truncated", stats.Truncated),
				zap.Int("wide_frames", stats.WideFrames),
			)...)
	} else {
		s.logger.Debug("sidecar grid decoded", fields...)
	}
	return d, nil
}

// Save writes d beside worldPath.
//
// Precondition: when the grid was decoded, the sparse maps are re-encoded
// first; otherwise the buffers are written as loaded.
// Postcondition: a nil d is a strict no-op: no file is written or removed.
func (s *Store) Save(worldPath string, d *Data) error {
	if d == nil {
		return nil
	}
	if d.sizeKnown() {
		if err := d.Encode(); err != nil {
			return fmt.Errorf("encoding sidecar grid: %w", err)
		}
	}
	path := s.Path(worldPath)
	if err := tag.ToFile(path, d.ToTag(), s.compressed); err != nil {
		return fmt.Errorf("saving sidecar: %w", err)
	}
	s.logger.Info("sidecar saved",
		zap.String("path", path),
		zap.Stringer("format", d.Format),
		zap.Int("tiles", len(d.Tiles)),
		zap.Int("walls", len(d.Walls)),
	)
	return nil
}
