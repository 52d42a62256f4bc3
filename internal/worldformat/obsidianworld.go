package worldformat

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/obsidian-net/classicd/internal/world"
)

// ObsidianWorld is a ZIP-container world format with three kinds of
// members: "metadata" (JSON of the top-level world fields), "map" (gzip
// of the raw map array), and "extmetadata/<software>/<name>" (one JSON
// blob per contributed metadata record). Members this process does not
// recognize are kept as opaque bytes and written back unchanged.
type ObsidianWorld struct {
	CompressionLevel int
}

func (ObsidianWorld) Name() string           { return "obsidianworld" }
func (ObsidianWorld) Extension() string      { return ".obw" }
func (ObsidianWorld) SupportsMetadata() bool { return true }

// worldMetadataJSON is the "metadata" member's shape. version/name/X/Y/Z
// are critical: a load fails if any is absent.
type worldMetadataJSON struct {
	Version    *int    `json:"version"`
	Name       *string `json:"name"`
	X          *uint16 `json:"X"`
	Y          *uint16 `json:"Y"`
	Z          *uint16 `json:"Z"`
	Seed       int64   `json:"seed"`
	CanEdit    *bool   `json:"canEdit"`
	WorldUUID  string  `json:"worldUUID"`
	SpawnX     int32   `json:"spawnX"`
	SpawnY     int32   `json:"spawnY"`
	SpawnZ     int32   `json:"spawnZ"`
	SpawnYaw   uint8   `json:"spawnYaw"`
	SpawnPitch uint8   `json:"spawnPitch"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

const obsidianWorldFormatVersion = 1

func (f ObsidianWorld) Load(path string) (*world.World, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("worldformat: obsidianworld: %w", err)
	}
	defer zr.Close()

	var meta worldMetadataJSON
	var mapBytes []byte
	unknown := make(map[string][]byte)
	extmeta := make(map[world.MetadataKey]world.MetadataRecord)

	for _, zf := range zr.File {
		switch {
		case zf.Name == "metadata":
			b, err := readZipFile(zf)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(b, &meta); err != nil {
				return nil, fmt.Errorf("worldformat: obsidianworld: metadata: %w", err)
			}
		case zf.Name == "map":
			b, err := readZipFile(zf)
			if err != nil {
				return nil, err
			}
			mapBytes, err = gunzip(b)
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(zf.Name, "extmetadata/"):
			parts := strings.SplitN(strings.TrimPrefix(zf.Name, "extmetadata/"), "/", 2)
			if len(parts) != 2 {
				unknown[zf.Name], _ = readZipFile(zf)
				continue
			}
			b, err := readZipFile(zf)
			if err != nil {
				return nil, err
			}
			extmeta[world.MetadataKey{SoftwareTag: parts[0], Name: parts[1]}] = world.MetadataRecord{Raw: b}
		default:
			unknown[zf.Name], _ = readZipFile(zf)
		}
	}

	if meta.Version == nil || meta.Name == nil || meta.X == nil || meta.Y == nil || meta.Z == nil {
		return nil, fmt.Errorf("worldformat: obsidianworld: missing critical metadata key (version/name/X/Y/Z)")
	}

	w, err := world.New(*meta.Name, *meta.X, *meta.Y, *meta.Z, mapBytes)
	if err != nil {
		return nil, err
	}
	w.Seed = meta.Seed
	if meta.CanEdit != nil {
		w.CanEdit = *meta.CanEdit
	}
	if meta.WorldUUID != "" {
		if id, err := uuid.Parse(meta.WorldUUID); err == nil {
			w.WorldUUID = id
		}
	}
	if !meta.CreatedAt.IsZero() {
		w.CreatedAt = meta.CreatedAt
	}
	if !meta.ModifiedAt.IsZero() {
		w.ModifiedAt = meta.ModifiedAt
	}
	w.SetStoredSpawn(meta.SpawnX, meta.SpawnY, meta.SpawnZ, meta.SpawnYaw, meta.SpawnPitch)

	for k, v := range extmeta {
		w.AdditionalMetadata[k] = v
	}
	for name, b := range unknown {
		w.AdditionalMetadata[world.MetadataKey{SoftwareTag: "", Name: name}] = world.MetadataRecord{Raw: b}
	}

	return w, nil
}

func (f ObsidianWorld) Save(w *world.World, path string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	sizeX, sizeY, sizeZ := w.SizeX, w.SizeY, w.SizeZ
	meta := worldMetadataJSON{
		Version:    intPtr(obsidianWorldFormatVersion),
		Name:       &w.Name,
		X:          &sizeX,
		Y:          &sizeY,
		Z:          &sizeZ,
		Seed:       w.Seed,
		CanEdit:    &w.CanEdit,
		WorldUUID:  w.WorldUUID.String(),
		CreatedAt:  w.CreatedAt,
		ModifiedAt: w.ModifiedAt,
	}
	meta.SpawnX, meta.SpawnY, meta.SpawnZ, meta.SpawnYaw, meta.SpawnPitch = w.Spawn()

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := writeZipEntry(zw, "metadata", metaBytes); err != nil {
		return err
	}

	gzMap, err := gzipLevel(w.MapArraySnapshot(), levelOrDefault(f.CompressionLevel))
	if err != nil {
		return err
	}
	if err := writeZipEntry(zw, "map", gzMap); err != nil {
		return err
	}

	for k, rec := range w.AdditionalMetadata {
		name := "extmetadata/" + k.SoftwareTag + "/" + k.Name
		if k.SoftwareTag == "" {
			name = k.Name // round-tripped unknown top-level zip member
		}
		if err := writeZipEntry(zw, name, rec.Raw); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func gunzip(b []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

func gzipLevel(b []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(b); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func intPtr(v int) *int { return &v }
