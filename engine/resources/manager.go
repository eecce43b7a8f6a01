package resources

import (
	"fmt"
	"path/filepath"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer"
)

type ManagerConfig struct {
	// SearchPaths are the initial search roots, lowest priority first.
	SearchPaths []string
	// HotReload starts a filesystem watcher over the search roots; changed
	// cached resources are force-reloaded by ProcessReloads.
	HotReload bool
}

// Manager owns one loader per resource kind over a single shared set of
// search roots. The device and the registries are injected; the manager's
// Dispose must run before the device is torn down.
type Manager struct {
	device      renderer.Device
	objects     ObjectRegistry
	autoDispose AutoDisposer

	paths *SearchPaths

	textures      *Loader[*Texture]
	meshes        *Loader[*Mesh]
	skinnedMeshes *Loader[*SkinnedMesh]
	materials     *Loader[*Material]
	fonts         *Loader[*Font]

	defaultMaterial *Material
	watcher         *Watcher
}

func NewManager(config *ManagerConfig, device renderer.Device, objects ObjectRegistry, autoDispose AutoDisposer) (*Manager, error) {
	if config == nil {
		err := fmt.Errorf("func NewManager - config must not be nil")
		core.LogError(err.Error())
		return nil, err
	}
	if device == nil {
		err := fmt.Errorf("func NewManager - device must not be nil")
		core.LogError(err.Error())
		return nil, err
	}
	if objects == nil || autoDispose == nil {
		err := fmt.Errorf("func NewManager - registries must not be nil")
		core.LogError(err.Error())
		return nil, err
	}

	m := &Manager{
		device:      device,
		objects:     objects,
		autoDispose: autoDispose,
		paths:       NewSearchPaths(config.SearchPaths...),
	}

	m.textures = NewLoader(m.paths, Strategy[*Texture]{
		Subfolder: SubfolderTexture,
		Load:      m.loadTexture,
		PostLoad:  m.trackTexture,
	})
	m.meshes = NewLoader(m.paths, Strategy[*Mesh]{
		Subfolder: SubfolderMesh,
		Load:      m.loadMesh,
		Synthetic: IsBuiltinMesh,
		PostLoad:  m.registerMesh,
		Evict:     m.unregisterMesh,
	})
	m.skinnedMeshes = NewLoader(m.paths, Strategy[*SkinnedMesh]{
		Subfolder: SubfolderSkinnedMesh,
		Load:      m.loadSkinnedMesh,
		PostLoad:  m.registerSkinnedMesh,
		Evict:     m.unregisterSkinnedMesh,
	})
	m.materials = NewLoader(m.paths, Strategy[*Material]{
		Subfolder: SubfolderMaterial,
		Load:      m.loadMaterial,
		PostLoad:  m.registerMaterial,
		Evict:     m.unregisterMaterial,
	})
	m.fonts = NewLoader(m.paths, Strategy[*Font]{
		Subfolder: SubfolderFont,
		Load:      m.loadFont,
	})

	m.defaultMaterial = newDefaultMaterial()
	m.objects.Register(m.defaultMaterial.ID, DefaultMaterialName, m.defaultMaterial)

	if config.HotReload {
		watcher, err := NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("start asset watcher: %w", err)
		}
		m.watcher = watcher
		for _, root := range m.paths.Roots() {
			if err := m.watcher.WatchRoot(root); err != nil {
				core.LogWarn("asset watcher: cannot watch root '%s': %s", root, err)
			}
		}
	}

	core.LogInfo("resource manager initialized with %d search root(s)", len(m.paths.Roots()))
	return m, nil
}

// AddSearchPath appends a root with the highest resolution priority.
func (m *Manager) AddSearchPath(root string) {
	m.paths.Add(root)
	if m.watcher != nil {
		if err := m.watcher.WatchRoot(root); err != nil {
			core.LogWarn("asset watcher: cannot watch root '%s': %s", root, err)
		}
	}
}

func (m *Manager) SearchRoots() []string {
	return m.paths.Roots()
}

// ResolvePath resolves a name under a subfolder without caching anything.
// Shader sources use this: they are resolved here but owned elsewhere.
func (m *Manager) ResolvePath(name, subfolder string) (string, error) {
	if path, ok := m.paths.Resolve(name, subfolder); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrNotFound, subfolder, name)
}

func (m *Manager) LoadTexture(name string, opts ...LoadOption) (*Texture, error) {
	return m.textures.Load(name, opts...)
}

func (m *Manager) LoadMesh(name string, opts ...LoadOption) (*Mesh, error) {
	return m.meshes.Load(name, opts...)
}

// LoadSkinnedMesh imports a skinned mesh, optionally restricted to the given
// animation clips. The clip specs travel in the loading context and are not
// part of the cache key: the first load of a name decides its clips.
func (m *Manager) LoadSkinnedMesh(name string, clips []ClipSpec, opts ...LoadOption) (*SkinnedMesh, error) {
	if clips != nil {
		opts = append(opts, WithParams(clips))
	}
	return m.skinnedMeshes.Load(name, opts...)
}

func (m *Manager) LoadMaterial(name string, opts ...LoadOption) (*Material, error) {
	return m.materials.Load(name, opts...)
}

func (m *Manager) LoadFont(name string, opts ...LoadOption) (*Font, error) {
	return m.fonts.Load(name, opts...)
}

func (m *Manager) DefaultMaterial() *Material {
	return m.defaultMaterial
}

// ProcessReloads drains the watcher queue and force-reloads every changed
// resource that is currently cached. Runs on the loop thread, so reloads go
// through the same single-threaded path as first loads.
func (m *Manager) ProcessReloads() {
	if m.watcher == nil {
		return
	}
	for _, path := range m.watcher.Drain() {
		name := filepath.Base(path)
		subfolder := filepath.Base(filepath.Dir(path))

		var err error
		reloaded := false
		switch subfolder {
		case SubfolderTexture:
			if m.textures.Cached(name) {
				_, err = m.textures.Load(name, WithForceReload())
				reloaded = true
			}
		case SubfolderMesh:
			if m.meshes.Cached(name) {
				_, err = m.meshes.Load(name, WithForceReload())
				reloaded = true
			}
		case SubfolderSkinnedMesh:
			if m.skinnedMeshes.Cached(name) {
				_, err = m.skinnedMeshes.Load(name, WithForceReload())
				reloaded = true
			}
		case SubfolderMaterial:
			if m.materials.Cached(name) {
				_, err = m.materials.Load(name, WithForceReload())
				reloaded = true
			}
		case SubfolderFont:
			if m.fonts.Cached(name) {
				_, err = m.fonts.Load(name, WithForceReload())
				reloaded = true
			}
		}
		if !reloaded {
			continue
		}
		if err != nil {
			core.LogWarn("hot reload of '%s' failed: %s", name, err)
			continue
		}
		core.LogInfo("hot reloaded '%s'", name)
		core.EventFire(core.EVENT_CODE_ASSET_RELOADED, m, core.EventContext{Str: name})
	}
}

// Dispose releases every cache. Order among the kinds does not matter (no
// cross-kind ownership: font atlases are owned by the texture cache), but
// this must complete before the device is destroyed.
func (m *Manager) Dispose() error {
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			core.LogWarn("closing asset watcher: %s", err)
		}
		m.watcher = nil
	}

	var firstErr error
	caches := []core.Disposable{m.fonts, m.materials, m.skinnedMeshes, m.meshes, m.textures}
	for _, cache := range caches {
		if err := cache.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if m.defaultMaterial != nil {
		m.objects.Unregister(m.defaultMaterial.ID)
		if err := m.defaultMaterial.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
