package sysmedia

import (
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

type ControlsConfig struct {
	Enabled        bool
	PlayerName     string
	ShowThumbnails bool

	// InstanceID distinguishes concurrently running instances of the host
	// app on surfaces that require a unique registration (the MPRIS bus name).
	InstanceID uuid.UUID
}

type Config struct {
	Controls ControlsConfig
}

func DefaultConfig(playerName string) *Config {
	return &Config{
		Controls: ControlsConfig{
			Enabled:        true,
			PlayerName:     playerName,
			ShowThumbnails: true,
			InstanceID:     uuid.New(),
		},
	}
}

func ReadConfigFile(filepath, playerName string) (*Config, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := DefaultConfig(playerName)
	if err := toml.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}

	// Backfill fields absent from configs written by older versions
	if c.Controls.PlayerName == "" {
		c.Controls.PlayerName = playerName
	}
	if c.Controls.InstanceID == uuid.Nil {
		c.Controls.InstanceID = uuid.New()
	}

	return c, nil
}

var writeLock sync.Mutex

func (c *Config) WriteConfigFile(filepath string) error {
	if !writeLock.TryLock() {
		return nil // another write in progress
	}
	defer writeLock.Unlock()

	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, b, 0644)
}
