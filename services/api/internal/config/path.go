package config

import "os"

// ConfigPath is the YAML file read at startup. SOUNDBOARD_CONFIG overrides the default.
var ConfigPath = defaultPath()

func defaultPath() string {
	if p := os.Getenv("SOUNDBOARD_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
