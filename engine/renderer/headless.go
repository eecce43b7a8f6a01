package renderer

import (
	"fmt"

	"github.com/google/uuid"
)

// HeadlessDevice implements Device without a GPU. It validates inputs and
// tracks live handles, which makes it the backend for asset tooling and for
// verifying disposal behaviour in tests.
type HeadlessDevice struct {
	textures   map[uuid.UUID]*TextureHandle
	geometries map[uuid.UUID]*GeometryHandle
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{
		textures:   make(map[uuid.UUID]*TextureHandle),
		geometries: make(map[uuid.UUID]*GeometryHandle),
	}
}

func (d *HeadlessDevice) CreateTexture(name string, pixels []uint8, width, height uint32, channelCount uint8) (*TextureHandle, error) {
	if expected := int(width) * int(height) * int(channelCount); len(pixels) != expected {
		return nil, fmt.Errorf("texture '%s': expected %d bytes of pixel data, got %d", name, expected, len(pixels))
	}
	handle := &TextureHandle{
		ID:           uuid.New(),
		Name:         name,
		Width:        width,
		Height:       height,
		ChannelCount: channelCount,
	}
	d.textures[handle.ID] = handle
	return handle, nil
}

func (d *HeadlessDevice) DestroyTexture(handle *TextureHandle) error {
	if handle == nil {
		return fmt.Errorf("destroy of nil texture handle")
	}
	if _, ok := d.textures[handle.ID]; !ok {
		return fmt.Errorf("destroy of unknown texture handle '%s'", handle.Name)
	}
	delete(d.textures, handle.ID)
	return nil
}

func (d *HeadlessDevice) CreateGeometry(name string, vertices []Vertex, indices []uint32) (*GeometryHandle, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("geometry '%s': no vertices", name)
	}
	for _, i := range indices {
		if i >= uint32(len(vertices)) {
			return nil, fmt.Errorf("geometry '%s': index %d out of range", name, i)
		}
	}
	handle := &GeometryHandle{
		ID:          uuid.New(),
		Name:        name,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}
	d.geometries[handle.ID] = handle
	return handle, nil
}

func (d *HeadlessDevice) CreateSkinnedGeometry(name string, vertices []SkinnedVertex, indices []uint32) (*GeometryHandle, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("skinned geometry '%s': no vertices", name)
	}
	for _, i := range indices {
		if i >= uint32(len(vertices)) {
			return nil, fmt.Errorf("skinned geometry '%s': index %d out of range", name, i)
		}
	}
	handle := &GeometryHandle{
		ID:          uuid.New(),
		Name:        name,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}
	d.geometries[handle.ID] = handle
	return handle, nil
}

func (d *HeadlessDevice) DestroyGeometry(handle *GeometryHandle) error {
	if handle == nil {
		return fmt.Errorf("destroy of nil geometry handle")
	}
	if _, ok := d.geometries[handle.ID]; !ok {
		return fmt.Errorf("destroy of unknown geometry handle '%s'", handle.Name)
	}
	delete(d.geometries, handle.ID)
	return nil
}

func (d *HeadlessDevice) LiveTextures() int {
	return len(d.textures)
}

func (d *HeadlessDevice) LiveGeometries() int {
	return len(d.geometries)
}
