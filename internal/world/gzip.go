package world

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/gzip"
)

// GzipMap compresses the map array at the given level (0-9; values
// outside that range fall back to gzip.DefaultCompression). When
// includeSizeHeader is true — used during level transfer — the
// compressed stream is prefixed by the uncompressed length as a
// big-endian int32, inside the gzip payload, matching the byte stream
// the client expects while downloading LevelDataChunks.
func (w *World) GzipMap(level int, includeSizeHeader bool) ([]byte, error) {
	w.mu.Lock()
	mapCopy := make([]byte, len(w.mapArray))
	copy(mapCopy, w.mapArray)
	w.mu.Unlock()

	if level < 0 || level > 9 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}

	if includeSizeHeader {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], uint32(len(mapCopy)))
		if _, err := gz.Write(header[:]); err != nil {
			gz.Close()
			return nil, err
		}
	}
	if _, err := gz.Write(mapCopy); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
