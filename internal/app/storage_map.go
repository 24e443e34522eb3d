package app

import (
	"strings"
	"time"

	"randpost/internal/config"
	"randpost/internal/storage"
)

// mapStorageConfig resolves the storage block, applying defaults.
// statePath, when set, wins over storage.path.
func mapStorageConfig(cfg *config.Config, statePath string) (storage.Config, error) {
	sc := config.StorageConfig{}
	if cfg != nil && cfg.Storage != nil {
		sc = *cfg.Storage
	}
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" {
		driver = storage.DefaultDriver
	}
	path := strings.TrimSpace(sc.Path)
	if p := strings.TrimSpace(statePath); p != "" {
		path = p
	}

	switch driver {
	case "sqlite", "sqlite3":
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, err
		}
		return storage.Config{Driver: "sqlite", Path: path, BusyTimeout: busy}, nil
	default:
		if path == "" {
			path = storage.DefaultFilePath
		}
		return storage.Config{Driver: driver, Path: path}, nil
	}
}
