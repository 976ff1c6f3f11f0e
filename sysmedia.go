// Package sysmedia surfaces a host media player's playback on the
// OS-level now-playing widget (MPRIS on Linux/BSD, SMTC on Windows) and
// relays the widget's transport commands back to the player.
package sysmedia

import (
	"context"
	"log"
	"path/filepath"

	"github.com/20after4/configdir"
	"github.com/fsnotify/fsnotify"

	"github.com/quailaudio/sysmedia/controls"
	"github.com/quailaudio/sysmedia/player"
	"github.com/quailaudio/sysmedia/track"
)

const configFile = "sysmedia.toml"

// Integration owns the OS media-controls surface for a host application.
type Integration struct {
	Config  *Config
	Manager *controls.Manager

	configPath string
	cacheDir   string
	watcher    *fsnotify.Watcher
	cancel     context.CancelFunc
	enabled    bool // last applied Controls.Enabled
}

// Start reads (or creates) the integration config for appName, selects
// the surface for the current platform, and wires the controls manager.
// A surface that fails to initialize leaves the Integration inert; this
// is never fatal to the host.
//
// artwork and lock may be nil to disable thumbnails and lock handling.
func Start(appName string, parentWindow uintptr, pl player.Controller, artwork track.ArtworkSource, lock controls.LockState) (*Integration, error) {
	confDir := configdir.LocalConfig(appName)
	cacheDir := configdir.LocalCache(appName)
	configdir.MakePath(confDir)
	configdir.MakePath(cacheDir)

	cfgPath := filepath.Join(confDir, configFile)
	cfg, err := ReadConfigFile(cfgPath, appName)
	if err != nil {
		log.Printf("error reading media controls config file: %v", err)
		cfg = DefaultConfig(appName)
	}

	it := &Integration{
		Config:     cfg,
		configPath: cfgPath,
		cacheDir:   cacheDir,
		enabled:    cfg.Controls.Enabled,
	}

	if !cfg.Controls.ShowThumbnails {
		artwork = nil
	}

	surface := newPlatformSurface(cfg, cacheDir)
	it.Manager = controls.NewManager(parentWindow, surface, pl, artwork, lock)
	if !cfg.Controls.Enabled {
		it.Manager.Disable()
	}

	// persist backfilled defaults so the user can edit them
	if err := cfg.WriteConfigFile(cfgPath); err != nil {
		log.Printf("error writing media controls config file: %v", err)
	}

	if it.Manager.Initialized() {
		it.startConfigWatcher()
	}
	return it, nil
}

// The config file is watched so that flipping Controls.Enabled takes
// effect without restarting the host app.
func (it *Integration) startConfigWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("error watching media controls config: %v", err)
		return
	}
	// watch the directory: editors replace the file, dropping a file watch
	if err := watcher.Add(filepath.Dir(it.configPath)); err != nil {
		log.Printf("error watching media controls config: %v", err)
		watcher.Close()
		return
	}
	it.watcher = watcher

	ctx, cancel := context.WithCancel(context.Background())
	it.cancel = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if it.isConfigPath(ev.Name) && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					it.reloadConfig()
				}
			case <-watcher.Errors:
			}
		}
	}()
}

// fsnotify reports paths with native separators; normalize before
// comparing against the joined config path.
func (it *Integration) isConfigPath(name string) bool {
	return filepath.Clean(name) == it.configPath
}

func (it *Integration) reloadConfig() {
	cfg, err := ReadConfigFile(it.configPath, it.Config.Controls.PlayerName)
	if err != nil {
		return // mid-edit or malformed; keep current settings
	}
	it.Config = cfg
	if cfg.Controls.Enabled == it.enabled {
		return
	}
	it.enabled = cfg.Controls.Enabled
	if it.enabled {
		log.Println("system media controls enabled")
		it.Manager.Enable()
	} else {
		log.Println("system media controls disabled")
		it.Manager.Disable()
	}
}

func (it *Integration) Shutdown() {
	if it.cancel != nil {
		it.cancel()
	}
	if it.watcher != nil {
		it.watcher.Close()
	}
	it.Manager.Shutdown()
}
