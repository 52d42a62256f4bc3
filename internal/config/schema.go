package config

import (
	"encoding/json"

	"github.com/obsidian-net/classicd/pkg/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"address": {"type": "string"},
		"port": {"type": "integer", "minimum": 1, "maximum": 65535},
		"serverName": {"type": "string"},
		"motd": {"type": "string"},
		"defaultMOTD": {"type": "string"},
		"worldSaveLocation": {"type": "string"},
		"defaultWorld": {"type": "string"},
		"serverMaxPlayers": {"type": "integer", "minimum": 1},
		"worldMaxPlayers": {"type": "integer", "minimum": 1},
		"defaultGenerator": {"type": "string"},
		"defaultWorldSize": {
			"type": "object",
			"properties": {
				"X": {"type": "integer", "minimum": 1},
				"Y": {"type": "integer", "minimum": 1},
				"Z": {"type": "integer", "minimum": 1}
			}
		},
		"defaultSaveFormat": {"type": "string"},
		"gzipCompressionLevel": {"type": "integer", "minimum": 0, "maximum": 9},
		"worldBlacklist": {"type": "array", "items": {"type": "string"}},
		"moduleBlacklist": {"type": "array", "items": {"type": "string"}},
		"operatorsList": {"type": "array", "items": {"type": "string"}},
		"bannedPlayers": {"type": "array", "items": {"type": "string"}},
		"bannedIps": {"type": "array", "items": {"type": "string"}},
		"disabledCommands": {"type": "array", "items": {"type": "string"}},
		"disabledBlocks": {"type": "array", "items": {"type": "integer"}},
		"allowLiquidPlacement": {"type": "boolean"},
		"allowPlayerColor": {"type": "boolean"},
		"asynchronousBlockUpdates": {"type": "boolean"},
		"blockUpdatesBeforeReload": {"type": "integer", "minimum": 0},
		"automaticallyDetermineSpawn": {"type": "boolean"},
		"maxPacketsPerSecond": {"type": "number", "exclusiveMinimum": 0},
		"maxPacketBurst": {"type": "integer", "minimum": 1},
		"adminApiAddress": {"type": "string"},
		"adminTokenTtl": {"type": "string"},
		"adminTokenSecret": {"type": "string"},
		"databasePath": {"type": "string"},
		"saveIntervalSeconds": {"type": "integer", "minimum": 1},
		"announcements": {"type": "array", "items": {"type": "string"}},
		"announcementIntervalSeconds": {"type": "integer", "minimum": 1},
		"netInfoIntervalSeconds": {"type": "integer", "minimum": 1},
		"backupBucket": {"type": "string"},
		"backupPrefix": {"type": "string"},
		"backupRegion": {"type": "string"},
		"backupEndpoint": {"type": "string"},
		"backupUsePathStyle": {"type": "boolean"}
	}
}`

// Validate checks raw config JSON against the compiled schema before it
// is ever decoded into Keys, so a malformed field is reported with a
// schema-level message instead of a confusing decode error.
func Validate(raw []byte) error {
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		log.Fatalf("config: invalid embedded schema: %v", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
