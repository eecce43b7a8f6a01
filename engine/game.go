package engine

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/resources"
)

type ApplicationConfig struct {
	StartPosX   uint32     `toml:"start_pos_x"`
	StartPosY   uint32     `toml:"start_pos_y"`
	StartWidth  uint32     `toml:"start_width"`
	StartHeight uint32     `toml:"start_height"`
	Name        string     `toml:"name"`
	LogLevel    core.Level `toml:"log_level"`
	// AssetRoots are the search roots handed to the resource manager, lowest
	// priority first. Defaults to <cwd>/assets when empty.
	AssetRoots []string `toml:"asset_roots"`
	HotReload  bool     `toml:"hot_reload"`
}

// LoadApplicationConfig reads an ApplicationConfig from a TOML file.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &ApplicationConfig{}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Resources is set by engine.New before any game callback runs.
	Resources *resources.Manager
	State     interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
