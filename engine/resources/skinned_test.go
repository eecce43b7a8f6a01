package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSkinnedFixture bakes a one-triangle rig with two joints and a single
// "wave" animation into a binary interchange file.
func writeSkinnedFixture(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uvs := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {0, 1, 0, 0}, {1, 0, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {0.5, 0.5, 0, 0}, {1, 0, 0, 0}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{
				gltf.POSITION:   positions,
				gltf.NORMAL:     normals,
				gltf.TEXCOORD_0: uvs,
				gltf.JOINTS_0:   joints,
				gltf.WEIGHTS_0:  weights,
			},
			Indices: gltf.Index(indices),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "root"}, {Name: "tip"}}
	doc.Skins = []*gltf.Skin{{Joints: []uint32{0, 1}}}

	timeAccessor := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorScalar,
		Count:         2,
		Max:           []float32{1.25},
	})
	doc.Animations = []*gltf.Animation{{
		Name:     "wave",
		Samplers: []*gltf.AnimationSampler{{Input: timeAccessor}},
	}}

	require.NoError(t, gltf.SaveBinary(doc, path))
}

func TestLoadSkinnedMeshImportsRig(t *testing.T) {
	root := t.TempDir()
	writeSkinnedFixture(t, filepath.Join(root, SubfolderSkinnedMesh, "rig.glb"))

	m, device, _, _ := newTestManager(t, &ManagerConfig{SearchPaths: []string{root}})

	mesh, err := m.LoadSkinnedMesh("rig.glb", nil)
	require.NoError(t, err)

	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, []string{"root", "tip"}, mesh.JointNames)

	v := mesh.Vertices[1]
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, v.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
	assert.Equal(t, [4]uint16{0, 1, 0, 0}, v.Joints)
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 0, 0}, v.Weights)

	require.Len(t, mesh.Clips, 1)
	assert.Equal(t, "wave", mesh.Clips[0].Name)
	assert.Equal(t, float32(1.25), mesh.Clips[0].Duration)

	assert.Equal(t, 1, device.LiveGeometries())
}

func TestLoadSkinnedMeshClipSelection(t *testing.T) {
	root := t.TempDir()
	writeSkinnedFixture(t, filepath.Join(root, SubfolderSkinnedMesh, "rig.glb"))

	m, _, _, _ := newTestManager(t, &ManagerConfig{SearchPaths: []string{root}})

	mesh, err := m.LoadSkinnedMesh("rig.glb", []ClipSpec{{Name: "wave", Rename: "greet"}})
	require.NoError(t, err)
	require.Len(t, mesh.Clips, 1)
	assert.Equal(t, "greet", mesh.Clips[0].Name)
	assert.Equal(t, float32(1.25), mesh.Clips[0].Duration)
}

func TestLoadSkinnedMeshUnknownClipFails(t *testing.T) {
	root := t.TempDir()
	writeSkinnedFixture(t, filepath.Join(root, SubfolderSkinnedMesh, "rig.glb"))

	m, _, _, _ := newTestManager(t, &ManagerConfig{SearchPaths: []string{root}})

	_, err := m.LoadSkinnedMesh("rig.glb", []ClipSpec{{Name: "run"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.False(t, m.skinnedMeshes.Cached("rig.glb"))
}

func TestImportClipsWithoutSpecsTakesEverything(t *testing.T) {
	doc := &gltf.Document{
		Accessors: []*gltf.Accessor{{Max: []float32{2.5}}},
		Animations: []*gltf.Animation{
			{Name: "idle", Samplers: []*gltf.AnimationSampler{{Input: 0}}},
			{Name: "walk"},
		},
	}

	clips, err := importClips(doc, nil)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "idle", clips[0].Name)
	assert.Equal(t, float32(2.5), clips[0].Duration)
	assert.Equal(t, "walk", clips[1].Name)
	assert.Zero(t, clips[1].Duration)
}

func TestLoadSkinnedMeshRejectsGarbage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, SubfolderSkinnedMesh, "junk.glb"), []byte("not a model"))

	m, _, _, _ := newTestManager(t, &ManagerConfig{SearchPaths: []string{root}})

	_, err := m.LoadSkinnedMesh("junk.glb", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
}
