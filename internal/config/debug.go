package config

import (
	"os"
	"path/filepath"
)

func IsDebug() bool {
	return os.Getenv("CATER_DEBUG") == "1"
}

func GetRuntimePath() string {
	path := os.Getenv("CATER_RUNTIME_PATH")
	if path == "" {
		path = ".caterbot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
