package testbed

import (
	"os"

	"github.com/prismengine/prism/engine"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/resources"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	cube     *resources.Mesh
	material *resources.Material

	accumulated float64
}

const configPath = "testbed.toml"

func NewTestGame() (*TestGame, error) {
	config, err := engine.LoadApplicationConfig(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		config = &engine.ApplicationConfig{
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
			Name:        "Prism Testbed",
			LogLevel:    core.DebugLevel,
			HotReload:   true,
		}
	}

	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.State.(*gameState)

	cube, err := g.Resources.LoadMesh(resources.BuiltinMeshCube)
	if err != nil {
		return err
	}
	state.cube = cube
	core.LogInfo("loaded '%s' with %d vertices and %d indices",
		cube.Name, len(cube.Vertices), len(cube.Indices))

	// A material file may shadow the fallback; either way we end up with
	// something drawable.
	material, err := g.Resources.LoadMaterial("cube.toml")
	if err != nil {
		material = g.Resources.DefaultMaterial()
	}
	state.material = material
	core.LogInfo("using material '%s'", material.Name)

	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.accumulated += deltaTime
	if state.accumulated >= 5 {
		state.accumulated = 0
		fps, frameTime := core.MetricsFrame()
		core.LogDebug("fps: %.0f, avg frame time: %.3fms", fps, frameTime)
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}
