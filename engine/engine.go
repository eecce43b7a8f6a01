package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/platform"
	"github.com/prismengine/prism/engine/renderer"
	"github.com/prismengine/prism/engine/resources"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform        *platform.Platform
	device          renderer.Device
	resourceManager *resources.Manager
	objects         *core.ObjectRegistry
	autoDispose     *core.AutoDisposeRegistry

	width    uint32
	height   uint32
	clock    *core.Clock
	lastTime float64
}

func New(g *Game, device renderer.Device) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - game and its ApplicationConfig must not be nil")
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	objects := core.NewObjectRegistry()
	autoDispose := core.NewAutoDisposeRegistry()

	roots := g.ApplicationConfig.AssetRoots
	if len(roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		roots = []string{filepath.Join(wd, "assets")}
	}

	rm, err := resources.NewManager(&resources.ManagerConfig{
		SearchPaths: roots,
		HotReload:   g.ApplicationConfig.HotReload,
	}, device, objects, autoDispose)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.Resources = rm

	return &Engine{
		currentStage:    EngineStageUninitialized,
		gameInstance:    g,
		clock:           core.NewClock(),
		device:          device,
		resourceManager: rm,
		objects:         objects,
		autoDispose:     autoDispose,
		isRunning:       true,
		isSuspended:     false,
		width:           g.ApplicationConfig.StartWidth,
		height:          g.ApplicationConfig.StartHeight,
		lastTime:        0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	e.platform = platform.New()
	if err := e.platform.Startup(e.gameInstance.ApplicationConfig.Name,
		e.gameInstance.ApplicationConfig.StartPosX,
		e.gameInstance.ApplicationConfig.StartPosY,
		e.gameInstance.ApplicationConfig.StartWidth,
		e.gameInstance.ApplicationConfig.StartHeight); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning && !e.platform.ShouldClose() {
		e.platform.PumpMessages()

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		deltaTime := currentTime - e.lastTime

		// All loading, including hot reloads, happens on this thread.
		e.resourceManager.ProcessReloads()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(deltaTime); err != nil {
				core.LogError("game update failed: %s", err)
				break
			}
		}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(deltaTime); err != nil {
				core.LogError("game render failed: %s", err)
				break
			}
		}

		core.MetricsUpdate(deltaTime)
		e.lastTime = currentTime
	}
	e.isRunning = false

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}

	// Resource caches release their handles before the device goes away.
	if err := e.resourceManager.Dispose(); err != nil {
		core.LogError("resource manager dispose: %s", err)
	}
	if err := e.autoDispose.DisposeAll(); err != nil {
		core.LogError("auto-dispose registry: %s", err)
	}

	core.EventSystemShutdown()

	if e.platform != nil {
		return e.platform.Shutdown()
	}
	return nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, ctx core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, ctx core.EventContext) bool {
	width := ctx.U32[0]
	height := ctx.U32[1]
	if width == e.width && height == e.height {
		return false
	}

	e.width = width
	e.height = height
	e.isSuspended = width == 0 || height == 0
	if e.isSuspended {
		core.LogInfo("window minimized, suspending application")
		return false
	}

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	return false
}
