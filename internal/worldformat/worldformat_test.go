package worldformat_test

import (
	"path/filepath"
	"testing"

	"github.com/obsidian-net/classicd/internal/world"
	"github.com/obsidian-net/classicd/internal/worldformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicateExtension(t *testing.T) {
	r := worldformat.NewRegistry()
	require.NoError(t, r.Register(worldformat.RawGzip{}))

	err := r.Register(worldformat.RawGzip{})
	require.Error(t, err)
	var dup *worldformat.ErrDuplicateExtension
	require.ErrorAs(t, err, &dup)
}

func TestRegistryResolvesByExtensionAndName(t *testing.T) {
	r := worldformat.NewRegistry()
	require.NoError(t, r.Register(worldformat.RawGzip{}))

	f, ok := r.ByExtension(".gz")
	require.True(t, ok)
	assert.Equal(t, "raw", f.Name())

	f, ok = r.ByName("raw")
	require.True(t, ok)
	assert.Equal(t, ".gz", f.Extension())
}

func TestRawGzipSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myworld.gz")

	w, err := world.New("myworld", 4, 4, 4, make([]byte, 64))
	require.NoError(t, err)
	require.NoError(t, w.SetBlock(1, 1, 1, 7, nil))

	f := worldformat.RawGzip{CompressionLevel: 6}
	require.NoError(t, f.Save(w, path))

	loaded, err := f.Load(path)
	require.NoError(t, err)
	assert.Equal(t, w.SizeX, loaded.SizeX)
	assert.Equal(t, w.SizeY, loaded.SizeY)
	assert.Equal(t, w.SizeZ, loaded.SizeZ)

	got, err := loaded.GetBlock(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got)
}

func TestObsidianWorldSaveLoadRoundTripsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myworld.obw")

	w, err := world.New("myworld", 4, 4, 4, make([]byte, 64))
	require.NoError(t, err)
	require.NoError(t, w.SetBlock(2, 2, 2, 9, nil))
	w.AdditionalMetadata[world.MetadataKey{SoftwareTag: "weather", Name: "config"}] = world.MetadataRecord{Raw: []byte(`{"raining":true}`)}

	f := worldformat.ObsidianWorld{CompressionLevel: 6}
	require.NoError(t, f.Save(w, path))

	loaded, err := f.Load(path)
	require.NoError(t, err)
	assert.Equal(t, w.Name, loaded.Name)

	got, err := loaded.GetBlock(2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), got)

	rec, ok := loaded.AdditionalMetadata[world.MetadataKey{SoftwareTag: "weather", Name: "config"}]
	require.True(t, ok)
	assert.JSONEq(t, `{"raining":true}`, string(rec.Raw))
}

func TestObsidianWorldLoadFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.obw")

	// No file is written at path, so Load fails when opening the zip,
	// before any metadata is read.
	f := worldformat.ObsidianWorld{}
	_, err := f.Load(path)
	require.Error(t, err)
}
