package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessTextureLifecycle(t *testing.T) {
	d := NewHeadlessDevice()

	handle, err := d.CreateTexture("t", make([]uint8, 4*2*4), 4, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, d.LiveTextures())

	require.NoError(t, d.DestroyTexture(handle))
	assert.Zero(t, d.LiveTextures())

	assert.Error(t, d.DestroyTexture(handle), "a second destroy is a double free")
	assert.Error(t, d.DestroyTexture(nil))
}

func TestHeadlessTextureValidatesPixelSize(t *testing.T) {
	d := NewHeadlessDevice()
	_, err := d.CreateTexture("short", make([]uint8, 7), 4, 2, 4)
	assert.Error(t, err)
}

func TestHeadlessGeometryValidatesIndices(t *testing.T) {
	d := NewHeadlessDevice()
	vertices := []Vertex{{}, {}, {}}

	_, err := d.CreateGeometry("bad", vertices, []uint32{0, 1, 3})
	assert.Error(t, err)

	_, err = d.CreateGeometry("empty", nil, nil)
	assert.Error(t, err)

	handle, err := d.CreateGeometry("good", vertices, []uint32{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), handle.VertexCount)
	require.NoError(t, d.DestroyGeometry(handle))
	assert.Zero(t, d.LiveGeometries())
}

func TestHeadlessSkinnedGeometry(t *testing.T) {
	d := NewHeadlessDevice()
	vertices := []SkinnedVertex{{}, {}, {}}

	handle, err := d.CreateSkinnedGeometry("rig", vertices, []uint32{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), handle.IndexCount)

	_, err = d.CreateSkinnedGeometry("bad", vertices, []uint32{5})
	assert.Error(t, err)
}
