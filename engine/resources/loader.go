package resources

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/prismengine/prism/engine/core"
)

// LoadContext is the transient per-call state handed to a strategy's
// construction function. It is valid only for the duration of one load.
type LoadContext struct {
	// Name is the logical resource name being loaded.
	Name string
	// Params carries kind-specific extras, e.g. []ClipSpec for skinned
	// meshes. Nil for most kinds.
	Params interface{}
}

// Strategy supplies the kind-specific pieces of a Loader: where its files
// live, how a resolved path (or literal/synthetic name) becomes a handle, and
// what happens right after a successful load.
type Strategy[T core.Disposable] struct {
	// Subfolder is the fixed per-kind directory segment under every search
	// root.
	Subfolder string
	// Load constructs a handle from a resolved path, a literal file path, or
	// a synthetic identifier.
	Load func(ctx *LoadContext, path string) (T, error)
	// Synthetic reports names that are generated procedurally and must never
	// touch the filesystem. Optional.
	Synthetic func(name string) bool
	// PostLoad runs after a handle is stored in the cache. Optional.
	PostLoad func(name string, handle T)
	// Evict runs when a handle leaves the cache (forced reload or cache
	// disposal), before the handle is disposed. Counterpart of PostLoad for
	// undoing registrations. Optional.
	Evict func(name string, handle T)
}

// Loader memoizes loaded handles by logical name. At most one live handle
// exists per name; the cache is the sole owner and callers receive non-owning
// references. Not safe for concurrent use: loads are serialized by the loop
// thread that owns the engine.
type Loader[T core.Disposable] struct {
	strategy Strategy[T]
	paths    *SearchPaths
	cache    map[string]T
	disposed bool
}

func NewLoader[T core.Disposable](paths *SearchPaths, strategy Strategy[T]) *Loader[T] {
	return &Loader[T]{
		strategy: strategy,
		paths:    paths,
		cache:    make(map[string]T),
	}
}

type loadOptions struct {
	force  bool
	params interface{}
}

type LoadOption func(*loadOptions)

// WithForceReload discards any cached handle for the name and reconstructs it
// from disk.
func WithForceReload() LoadOption {
	return func(o *loadOptions) {
		o.force = true
	}
}

// WithParams attaches kind-specific extra arguments to the loading context.
// Params are per call and never part of the cache key.
func WithParams(params interface{}) LoadOption {
	return func(o *loadOptions) {
		o.params = params
	}
}

// Load returns the handle cached under name, loading it first if needed.
//
// Resolution order: synthetic identifiers are constructed directly; otherwise
// the name is resolved against the search paths under the loader's subfolder;
// if no root has it, the literal name is handed to the construction function
// as a direct file path. Construction failures are logged here and returned
// as errors, never propagated as panics.
//
// A forced reload unmaps and disposes the old handle before reconstruction,
// so a failed reload leaves the name mapped to nothing rather than pointing
// at a released handle. A subsequent successful Load is required to remap it.
func (l *Loader[T]) Load(name string, opts ...LoadOption) (T, error) {
	var zero T
	if l.disposed {
		return zero, fmt.Errorf("load '%s': %w", name, ErrDisposed)
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if cached, ok := l.cache[name]; ok {
		if !o.force {
			return cached, nil
		}
		delete(l.cache, name)
		l.evict(name, cached)
		if err := cached.Dispose(); err != nil {
			core.LogWarn("disposing '%s' for forced reload: %s", name, err)
		}
	}

	ctx := &LoadContext{Name: name, Params: o.params}

	if l.strategy.Synthetic != nil && l.strategy.Synthetic(name) {
		handle, err := l.construct(ctx, name)
		if err != nil {
			core.LogError("failed to construct synthetic %s resource '%s': %s", l.strategy.Subfolder, name, err)
			return zero, err
		}
		l.store(name, handle)
		return handle, nil
	}

	if path, ok := l.paths.Resolve(name, l.strategy.Subfolder); ok {
		handle, err := l.construct(ctx, path)
		if err != nil {
			core.LogError("failed to load %s resource '%s' from '%s': %s", l.strategy.Subfolder, name, path, err)
			return zero, err
		}
		l.store(name, handle)
		return handle, nil
	}

	// Not under any search root: treat the name as a literal file path.
	handle, err := l.construct(ctx, name)
	if err != nil {
		core.LogError("failed to load %s resource '%s': %s", l.strategy.Subfolder, name, err)
		return zero, err
	}
	l.store(name, handle)
	return handle, nil
}

// construct is the single error seam around the strategy: a panicking parser
// surfaces as a load failure like any other malformed file.
func (l *Loader[T]) construct(ctx *LoadContext, path string) (handle T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: '%s' panicked during construction: %v", ErrLoadFailed, ctx.Name, r)
		}
	}()
	handle, err = l.strategy.Load(ctx, path)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrLoadFailed, err)
	}
	return handle, err
}

func (l *Loader[T]) evict(name string, handle T) {
	if l.strategy.Evict != nil {
		l.strategy.Evict(name, handle)
	}
}

func (l *Loader[T]) store(name string, handle T) {
	l.cache[name] = handle
	if l.strategy.PostLoad != nil {
		l.strategy.PostLoad(name, handle)
	}
}

func (l *Loader[T]) Cached(name string) bool {
	_, ok := l.cache[name]
	return ok
}

func (l *Loader[T]) Names() []string {
	return maps.Keys(l.cache)
}

func (l *Loader[T]) Len() int {
	return len(l.cache)
}

// Dispose releases every cached handle and clears the cache. Must run before
// the underlying device is torn down. Further loads fail with ErrDisposed.
func (l *Loader[T]) Dispose() error {
	if l.disposed {
		return nil
	}
	l.disposed = true
	var firstErr error
	for name, handle := range l.cache {
		l.evict(name, handle)
		if err := handle.Dispose(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dispose '%s': %w", name, err)
		}
	}
	l.cache = nil
	return firstErr
}
