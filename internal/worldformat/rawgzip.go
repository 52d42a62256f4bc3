package worldformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/obsidian-net/classicd/internal/world"
)

// RawGzip is the simplest world format: a 6-byte sizeX/sizeY/sizeZ
// header followed by the raw map array, the whole file gzip-compressed.
// It carries no metadata — SupportsMetadata reports false, and any
// additionalMetadata on the world is silently dropped on save.
type RawGzip struct {
	CompressionLevel int
}

func (RawGzip) Name() string            { return "raw" }
func (RawGzip) Extension() string       { return ".gz" }
func (RawGzip) SupportsMetadata() bool  { return false }

func (f RawGzip) Load(path string) (*world.World, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("worldformat: rawgzip: %w", err)
	}
	defer gz.Close()

	body, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("worldformat: rawgzip: %w", err)
	}
	if len(body) < 6 {
		return nil, fmt.Errorf("worldformat: rawgzip: file too short for header")
	}

	sizeX := int16(binary.BigEndian.Uint16(body[0:2]))
	sizeY := int16(binary.BigEndian.Uint16(body[2:4]))
	sizeZ := int16(binary.BigEndian.Uint16(body[4:6]))
	mapArray := body[6:]

	name := stemName(path)
	w, err := world.New(name, uint16(sizeX), uint16(sizeY), uint16(sizeZ), mapArray)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (f RawGzip) Save(w *world.World, path string) error {
	var header [6]byte
	binary.BigEndian.PutUint16(header[0:2], w.SizeX)
	binary.BigEndian.PutUint16(header[2:4], w.SizeY)
	binary.BigEndian.PutUint16(header[4:6], w.SizeZ)

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, levelOrDefault(f.CompressionLevel))
	if err != nil {
		return err
	}
	if _, err := gz.Write(header[:]); err != nil {
		gz.Close()
		return err
	}
	if _, err := gz.Write(w.MapArraySnapshot()); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	return atomicWriteFile(path, buf.Bytes())
}

func levelOrDefault(level int) int {
	if level < 0 || level > 9 {
		return gzip.DefaultCompression
	}
	return level
}

func stemName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

// atomicWriteFile writes to a temp file in the same directory then
// renames over the target, so a crash mid-write never leaves a
// truncated world file in place (spec §6: "world save must be atomic at
// the file-replace boundary").
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
