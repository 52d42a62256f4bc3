// Package config loads and validates the server's JSON configuration
// file into a single package-level Keys value, the way every other
// package expects to read it.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/obsidian-net/classicd/pkg/log"
)

// WorldSize is the default dimension triple used when creating a world
// without an explicit size.
type WorldSize struct {
	X uint16 `json:"X"`
	Y uint16 `json:"Y"`
	Z uint16 `json:"Z"`
}

// Config is the full set of server-configurable fields (spec §6), plus
// the ambient fields (admin API, persistence, backup, rate limiting,
// scheduled tasks) this expansion adds.
type Config struct {
	Address string `json:"address"`
	Port    int    `json:"port"`

	ServerName string `json:"serverName"`
	MOTD       string `json:"motd"`
	DefaultMOTD string `json:"defaultMOTD"`

	WorldSaveLocation   string    `json:"worldSaveLocation"`
	DefaultWorld        string    `json:"defaultWorld"`
	ServerMaxPlayers    int       `json:"serverMaxPlayers"`
	WorldMaxPlayers     int       `json:"worldMaxPlayers"`
	DefaultGenerator    string    `json:"defaultGenerator"`
	DefaultWorldSize    WorldSize `json:"defaultWorldSize"`
	DefaultSaveFormat   string    `json:"defaultSaveFormat"`
	GzipCompressionLevel int      `json:"gzipCompressionLevel"`

	WorldBlacklist  []string `json:"worldBlacklist"`
	ModuleBlacklist []string `json:"moduleBlacklist"`

	OperatorsList  []string `json:"operatorsList"`
	BannedPlayers  []string `json:"bannedPlayers"`
	BannedIPs      []string `json:"bannedIps"`
	DisabledCommands []string `json:"disabledCommands"`
	DisabledBlocks   []int    `json:"disabledBlocks"`

	LiquidPlacementAllowed      bool `json:"allowLiquidPlacement"`
	PlayerColorAllowed          bool `json:"allowPlayerColor"`
	AsynchronousBlockUpdates    bool `json:"asynchronousBlockUpdates"`
	BlockUpdatesBeforeReload    int  `json:"blockUpdatesBeforeReload"`
	AutomaticallyDetermineSpawn bool `json:"automaticallyDetermineSpawn"`

	// Ambient fields (SPEC_FULL §3/§4): not in the original source's
	// config.json, but needed by the packages added around it.
	MaxPacketsPerSecond float64 `json:"maxPacketsPerSecond"`
	MaxPacketBurst      int     `json:"maxPacketBurst"`

	AdminAPIAddress string `json:"adminApiAddress"`
	AdminTokenTTL   string `json:"adminTokenTtl"`
	// AdminTokenSecret signs the admin API's bearer tokens. Like the
	// teacher's DB field, an "env:NAME" value is resolved from the
	// named environment variable instead of being stored in the file.
	AdminTokenSecret string `json:"adminTokenSecret"`

	DatabasePath string `json:"databasePath"`

	SaveIntervalSeconds int      `json:"saveIntervalSeconds"`
	Announcements       []string `json:"announcements"`
	AnnouncementIntervalSeconds int `json:"announcementIntervalSeconds"`
	NetInfoIntervalSeconds      int `json:"netInfoIntervalSeconds"`

	BackupBucket       string `json:"backupBucket"`
	BackupPrefix       string `json:"backupPrefix"`
	BackupRegion       string `json:"backupRegion"`
	BackupEndpoint     string `json:"backupEndpoint"`
	BackupUsePathStyle bool   `json:"backupUsePathStyle"`
}

// Keys is the process-wide configuration, populated once by Init.
// Every other package reads fields off this value instead of taking a
// config dependency of its own; admin commands that change config write
// new fields onto it in memory only. Those changes are not written back
// to the config file and are lost on restart.
var Keys = Config{
	Address:              "0.0.0.0",
	Port:                 25565,
	ServerName:           "A Classic Server",
	MOTD:                 "Running classicd",
	WorldSaveLocation:    "worlds",
	DefaultWorld:         "main",
	ServerMaxPlayers:     128,
	WorldMaxPlayers:      64,
	DefaultGenerator:     "flat",
	DefaultWorldSize:     WorldSize{X: 256, Y: 64, Z: 256},
	DefaultSaveFormat:    "obsidianworld",
	GzipCompressionLevel: 6,
	PlayerColorAllowed:   true,
	MaxPacketsPerSecond:  60,
	MaxPacketBurst:       20,
	AdminAPIAddress:      "127.0.0.1:8081",
	AdminTokenTTL:        "168h",
	AdminTokenSecret:     "change-me",
	DatabasePath:         "./var/classicd.db",
	SaveIntervalSeconds:  300,
}

// Init reads path as JSON, validates it against the compiled schema,
// and decodes it over Keys (rejecting unknown fields so config typos
// are caught at startup rather than silently ignored). A missing file
// is not an error: Keys keeps its defaults.
func Init(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("config: %s not found, using defaults", path)
			return
		}
		log.Fatal(err)
	}

	if err := Validate(raw); err != nil {
		log.Fatalf("config: schema validation failed: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		log.Fatalf("config: %v", err)
	}
}

// IsOperator implements player.Policy.
func (c *Config) IsOperator(username string) bool { return contains(c.OperatorsList, username) }

// IsBlockDisabled implements player.Policy.
func (c *Config) IsBlockDisabled(blockID uint8) bool {
	for _, id := range c.DisabledBlocks {
		if id == int(blockID) {
			return true
		}
	}
	return false
}

// AllowLiquidPlacement implements player.Policy.
func (c *Config) AllowLiquidPlacement() bool { return c.LiquidPlacementAllowed }

// AllowPlayerColor implements player.Policy.
func (c *Config) AllowPlayerColor() bool { return c.PlayerColorAllowed }

// IsCommandDisabled implements command.DisabledCommands.
func (c *Config) IsCommandDisabled(name string) bool { return contains(c.DisabledCommands, name) }

// IsBanned implements playermanager.BanPolicy.
func (c *Config) IsBanned(username string) bool { return contains(c.BannedPlayers, username) }

// IsIPBanned reports whether ip (a bare address, no port) is on the
// accept-time ban list.
func (c *Config) IsIPBanned(ip string) bool { return contains(c.BannedIPs, ip) }

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
