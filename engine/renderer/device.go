package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Vertex is the interleaved layout geometry is uploaded with.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Texcoord mgl32.Vec2
	Colour   mgl32.Vec4
}

// SkinnedVertex extends Vertex with the joint bindings needed for skeletal
// animation.
type SkinnedVertex struct {
	Vertex
	Joints  [4]uint16
	Weights mgl32.Vec4
}

type TextureHandle struct {
	ID           uuid.UUID
	Name         string
	Width        uint32
	Height       uint32
	ChannelCount uint8
	// Internal is the backend's own object (image view, sampler, ...).
	Internal interface{}
}

type GeometryHandle struct {
	ID          uuid.UUID
	Name        string
	VertexCount uint32
	IndexCount  uint32
	Internal    interface{}
}

// Device constructs GPU objects from decoded file data. Creation is the only
// mutation the resource subsystem performs on a device; tearing the device
// itself down belongs to the owning application and must happen after every
// resource cache has been disposed.
type Device interface {
	CreateTexture(name string, pixels []uint8, width, height uint32, channelCount uint8) (*TextureHandle, error)
	DestroyTexture(handle *TextureHandle) error

	CreateGeometry(name string, vertices []Vertex, indices []uint32) (*GeometryHandle, error)
	CreateSkinnedGeometry(name string, vertices []SkinnedVertex, indices []uint32) (*GeometryHandle, error)
	DestroyGeometry(handle *GeometryHandle) error
}
