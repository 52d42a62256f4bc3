package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/internal/playermanager"
	"github.com/obsidian-net/classicd/internal/world"
	"github.com/obsidian-net/classicd/pkg/log"
)

// LoadOrCreateWorld makes name available for joins: if a save file
// already exists under config.Keys.WorldSaveLocation for the configured
// default format, it is loaded; otherwise a flat world of
// config.Keys.DefaultWorldSize is generated and registered as new. Either
// way the result is wired with its own WorldPlayerManager and tracked
// for SaveAll.
func (s *Server) LoadOrCreateWorld(name string) error {
	s.mu.Lock()
	if _, exists := s.worlds[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("server: world %q already loaded", name)
	}
	s.mu.Unlock()

	format, ok := s.formats.ByName(config.Keys.DefaultSaveFormat)
	if !ok {
		return fmt.Errorf("server: unknown default save format %q", config.Keys.DefaultSaveFormat)
	}
	path := filepath.Join(config.Keys.WorldSaveLocation, name+format.Extension())

	w, err := format.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("server: loading world %q: %w", name, err)
		}
		log.Infof("server: world %q has no save file, generating flat world", name)
		w, err = generateFlatWorld(name, config.Keys.DefaultWorldSize)
		if err != nil {
			return err
		}
	}

	wpm := playermanager.NewWorldPlayerManager(w, config.Keys.WorldMaxPlayers)

	s.mu.Lock()
	s.worlds[name] = &managedWorld{world: w, wpm: wpm, format: format, path: path}
	s.mu.Unlock()
	return nil
}

// DiscoverWorldNames scans config.Keys.WorldSaveLocation for save files
// owned by a registered format and returns the world names found there
// (extension stripped), skipping anything named in
// config.Keys.WorldBlacklist. config.Keys.DefaultWorld is always
// included even if no save file exists for it yet, so the caller can
// LoadOrCreateWorld it unconditionally. The original world manager this
// is grounded on left directory loading as a stub; this completes it.
func (s *Server) DiscoverWorldNames() ([]string, error) {
	seen := map[string]bool{config.Keys.DefaultWorld: true}
	names := []string{config.Keys.DefaultWorld}

	entries, err := os.ReadDir(config.Keys.WorldSaveLocation)
	if err != nil {
		if os.IsNotExist(err) {
			return names, nil
		}
		return nil, fmt.Errorf("server: scanning %q: %w", config.Keys.WorldSaveLocation, err)
	}

	blacklisted := make(map[string]bool, len(config.Keys.WorldBlacklist))
	for _, name := range config.Keys.WorldBlacklist {
		blacklisted[name] = true
	}

	for _, ext := range s.formats.Extensions() {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if name == "" || seen[name] || blacklisted[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// generateFlatWorld builds a ground-at-mid-height flat world: bedrock at
// y=0, dirt up to sz.Y/2-1, grass at sz.Y/2, air above. Grounded on
// spec §3's generic "generator" concept; this is the single
// DefaultGenerator config names ("flat").
func generateFlatWorld(name string, sz config.WorldSize) (*world.World, error) {
	mapArray := make([]byte, int(sz.X)*int(sz.Y)*int(sz.Z))
	groundLevel := int(sz.Y) / 2

	for y := 0; y < int(sz.Y); y++ {
		var id byte
		switch {
		case y == 0:
			id = 7 // Bedrock
		case y < groundLevel:
			id = 3 // Dirt
		case y == groundLevel:
			id = 2 // Grass
		default:
			id = 0 // Air
		}
		if id == 0 {
			continue
		}
		for z := 0; z < int(sz.Z); z++ {
			for x := 0; x < int(sz.X); x++ {
				mapArray[x+int(sz.X)*(z+int(sz.Z)*y)] = id
			}
		}
	}

	w, err := world.New(name, sz.X, sz.Y, sz.Z, mapArray)
	if err != nil {
		return nil, err
	}
	w.GenerateSpawnCoords(false)
	return w, nil
}

// WorldNames reports every currently loaded world, sorted for stable
// output (e.g. the admin API's world list).
func (s *Server) WorldNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.worlds))
	for name := range s.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorldSummary is the read-only view of a loaded world the admin API
// reports; it never exposes the *world.World itself so a handler can't
// reach in and mutate block data directly.
type WorldSummary struct {
	Name                        string
	SizeX, SizeY, SizeZ         uint16
	Persistent                  bool
	PlayerCount                 int
}

// Worlds reports one WorldSummary per loaded world, sorted by name.
func (s *Server) Worlds() []WorldSummary {
	names := s.WorldNames()
	out := make([]WorldSummary, 0, len(names))
	for _, name := range names {
		s.mu.RLock()
		mw := s.worlds[name]
		s.mu.RUnlock()
		if mw == nil {
			continue
		}
		sx, sy, sz := mw.world.Dimensions()
		out = append(out, WorldSummary{
			Name:         mw.world.Name,
			SizeX:        sx,
			SizeY:        sy,
			SizeZ:        sz,
			Persistent:   mw.world.Persistent,
			PlayerCount:  len(mw.wpm.Recipients()),
		})
	}
	return out
}

// SaveAll persists every loaded world through its registered format,
// stopping at the first error (the caller decides whether a partial
// save is acceptable to continue past).
func (s *Server) SaveAll() error {
	s.mu.RLock()
	worlds := make([]*managedWorld, 0, len(s.worlds))
	for _, mw := range s.worlds {
		worlds = append(worlds, mw)
	}
	s.mu.RUnlock()

	for _, mw := range worlds {
		if !mw.world.Persistent {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(mw.path), 0o755); err != nil {
			metrics.WorldSaves.WithLabelValues("error").Inc()
			return fmt.Errorf("server: preparing save directory for %q: %w", mw.world.Name, err)
		}
		if err := mw.format.Save(mw.world, mw.path); err != nil {
			metrics.WorldSaves.WithLabelValues("error").Inc()
			return fmt.Errorf("server: saving world %q: %w", mw.world.Name, err)
		}
		metrics.WorldSaves.WithLabelValues("ok").Inc()
		log.Infof("server: saved world %q to %s", mw.world.Name, mw.path)

		if s.Backup != nil {
			if err := s.uploadBackup(mw); err != nil {
				log.Errorf("server: backing up world %q: %v", mw.world.Name, err)
			}
		}
	}
	return nil
}

// uploadBackup re-reads the file SaveAll just wrote and mirrors it to
// the configured bucket. Re-reading rather than threading the save
// bytes through keeps worldformat.Format's interface untouched (Save
// writes to a path, it doesn't hand bytes back).
func (s *Server) uploadBackup(mw *managedWorld) error {
	data, err := os.ReadFile(mw.path)
	if err != nil {
		return fmt.Errorf("reading saved file: %w", err)
	}
	return s.Backup.Upload(context.Background(), mw.world.Name, mw.format.Extension(), data)
}
