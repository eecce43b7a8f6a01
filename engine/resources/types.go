package resources

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer"
)

// Subfolder identities, one per resource kind, appended under every search
// root on disk.
const (
	SubfolderTexture     = "Texture2D"
	SubfolderMesh        = "Mesh"
	SubfolderSkinnedMesh = "SkinnedMesh"
	SubfolderMaterial    = "Material"
	SubfolderFont        = "Font"
	SubfolderShader      = "Shader"
)

// ObjectRegistry receives every loaded object so the owning application can
// track teardown order. The engine supplies core.ObjectRegistry; tests supply
// their own.
type ObjectRegistry interface {
	Register(id uuid.UUID, name string, obj interface{})
	Unregister(id uuid.UUID)
}

// AutoDisposer tracks disposables released together at application teardown.
type AutoDisposer interface {
	Track(d core.Disposable)
}

// Texture is a shader-sampleable image owned by its cache. Callers hold
// non-owning references.
type Texture struct {
	ID              uuid.UUID
	Name            string
	Width           uint32
	Height          uint32
	ChannelCount    uint8
	HasTransparency bool
	GPU             *renderer.TextureHandle

	release  func() error
	released bool
}

func (t *Texture) Dispose() error {
	if t.released || t.release == nil {
		return nil
	}
	t.released = true
	return t.release()
}

type Mesh struct {
	ID       uuid.UUID
	Name     string
	Vertices []renderer.Vertex
	Indices  []uint32
	GPU      *renderer.GeometryHandle

	release  func() error
	released bool
}

func (m *Mesh) Dispose() error {
	if m.released || m.release == nil {
		return nil
	}
	m.released = true
	return m.release()
}

// ClipSpec is an animation-clip extraction hint passed through the loading
// context of a skinned mesh. It selects a clip by its name in the source file
// and optionally renames it.
type ClipSpec struct {
	Name   string
	Rename string
}

type AnimationClip struct {
	Name         string
	Duration     float32
	ChannelCount int
}

type SkinnedMesh struct {
	ID         uuid.UUID
	Name       string
	Vertices   []renderer.SkinnedVertex
	Indices    []uint32
	JointNames []string
	Clips      []AnimationClip
	GPU        *renderer.GeometryHandle

	release  func() error
	released bool
}

func (m *SkinnedMesh) Dispose() error {
	if m.released || m.release == nil {
		return nil
	}
	m.released = true
	return m.release()
}

// MaterialPass references a shader file plus the named parameter values bound
// when the pass runs.
type MaterialPass struct {
	Shader        string             `toml:"shader"`
	DiffuseColour [4]float32         `toml:"diffuse_colour"`
	Shininess     float32            `toml:"shininess,omitempty"`
	Textures      map[string]string  `toml:"textures,omitempty"`
	Params        map[string]float32 `toml:"params,omitempty"`
}

type Material struct {
	ID     uuid.UUID
	Name   string
	Path   string // description file this material round-trips to; empty for in-memory materials
	Passes []MaterialPass

	released bool
}

// Materials hold no GPU state of their own; Dispose only marks the handle so
// a later Save on a released material can be rejected.
func (m *Material) Dispose() error {
	m.released = true
	return nil
}

// Diffuse returns the first pass' diffuse colour, white when unset.
func (m *Material) Diffuse() mgl32.Vec4 {
	if len(m.Passes) == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	c := m.Passes[0].DiffuseColour
	if c == ([4]float32{}) {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return mgl32.Vec4{c[0], c[1], c[2], c[3]}
}

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	First  rune
	Second rune
	Amount int16
}

// Font is a parsed bitmap font definition plus its backing glyph-atlas
// textures. The atlas pages are owned by the texture cache, not the font.
type Font struct {
	ID         uuid.UUID
	Name       string
	Face       string
	Size       int
	LineHeight int
	Baseline   int
	AtlasSizeX int
	AtlasSizeY int
	Glyphs     map[rune]FontGlyph
	Kernings   []FontKerning
	Pages      []*Texture
}

func (f *Font) Dispose() error {
	return nil
}
