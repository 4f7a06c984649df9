package config

import (
	"encoding/json"
	"os"
)

const defaultVersion = "1.0.0"

// versionFile mirrors the version.json kept at the repository root.
type versionFile struct {
	Version string `json:"version"`
	Backend string `json:"backend"`
}

// Version resolves the application version: version.json in the working
// directory first, then the APP_VERSION environment variable, then a fixed
// default. Unreadable or malformed files fall through silently.
func Version() string {
	if data, err := os.ReadFile("version.json"); err == nil {
		var vf versionFile
		if err := json.Unmarshal(data, &vf); err == nil {
			if vf.Version != "" {
				return vf.Version
			}
			if vf.Backend != "" {
				return vf.Backend
			}
		}
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return defaultVersion
}
