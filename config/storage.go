package config

import "fmt"

// StorageConfig locates the SQLite incident database.
type StorageConfig struct {
	Path      string `json:"path"`
	BatchSize int    `json:"batch_size"`
}

func (c *StorageConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "denver_crimes.db"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
}

func (c StorageConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
