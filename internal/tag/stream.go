package tag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// ToStream writes c to w, gzip-wrapped when compressed is true.
//
// Precondition: c must be non-nil.
// Postcondition: on success the stream holds a complete tree and any gzip
// trailer has been flushed; w itself is not closed.
func ToStream(w io.Writer, c *Compound, compressed bool) error {
	if !compressed {
		return Write(w, c)
	}
	zw := gzip.NewWriter(w)
	if err := Write(zw, c); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return nil
}

// FromStream reads a tree from r, expecting a gzip envelope when compressed
// is true.
//
// Postcondition: returns a non-nil Compound or a non-nil error.
func FromStream(r io.Reader, compressed bool) (*Compound, error) {
	if !compressed {
		return Read(r)
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()
	return Read(zr)
}

// Marshal returns the encoding of c.
func Marshal(c *Compound, compressed bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := ToStream(&buf, c, compressed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a tree from data.
func Unmarshal(data []byte, compressed bool) (*Compound, error) {
	if !compressed {
		return Decode(data)
	}
	return FromStream(bytes.NewReader(data), true)
}

// ToFile writes c to path, replacing any existing file.
//
// Postcondition: the tree is fully encoded before path is touched, and the
// new content is renamed into place; on any error an existing file at path
// is left as it was.
func ToFile(path string, c *Compound, compressed bool) error {
	data, err := Marshal(c, compressed)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// FromFile reads a tree from path.
//
// Postcondition: the file is closed on every path, including decode failure.
func FromFile(path string, compressed bool) (*Compound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	c, err := FromStream(f, compressed)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c, nil
}
