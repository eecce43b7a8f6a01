package resources

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer"
)

func (m *Manager) loadSkinnedMesh(ctx *LoadContext, path string) (*SkinnedMesh, error) {
	var specs []ClipSpec
	if ctx.Params != nil {
		s, ok := ctx.Params.([]ClipSpec)
		if !ok {
			return nil, fmt.Errorf("skinned mesh params must be []ClipSpec, got %T", ctx.Params)
		}
		specs = s
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interchange file '%s': %w", path, err)
	}

	vertices, indices, err := importSkinnedGeometry(doc)
	if err != nil {
		return nil, fmt.Errorf("import '%s': %w", path, err)
	}
	clips, err := importClips(doc, specs)
	if err != nil {
		return nil, fmt.Errorf("import '%s': %w", path, err)
	}

	gpu, err := m.device.CreateSkinnedGeometry(ctx.Name, vertices, indices)
	if err != nil {
		return nil, err
	}

	mesh := &SkinnedMesh{
		ID:         core.NewID(),
		Name:       ctx.Name,
		Vertices:   vertices,
		Indices:    indices,
		JointNames: importJointNames(doc),
		Clips:      clips,
		GPU:        gpu,
	}
	mesh.release = func() error {
		return m.device.DestroyGeometry(gpu)
	}
	return mesh, nil
}

func (m *Manager) registerSkinnedMesh(name string, mesh *SkinnedMesh) {
	m.objects.Register(mesh.ID, name, mesh)
}

func (m *Manager) unregisterSkinnedMesh(name string, mesh *SkinnedMesh) {
	m.objects.Unregister(mesh.ID)
}

func importSkinnedGeometry(doc *gltf.Document) ([]renderer.SkinnedVertex, []uint32, error) {
	var vertices []renderer.SkinnedVertex
	var indices []uint32

	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			positionIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			base := uint32(len(vertices))

			positions, err := modeler.ReadPosition(doc, doc.Accessors[positionIdx], nil)
			if err != nil {
				return nil, nil, err
			}
			verts := make([]renderer.SkinnedVertex, len(positions))
			for i, p := range positions {
				verts[i].Position = mgl32.Vec3{p[0], p[1], p[2]}
				verts[i].Colour = mgl32.Vec4{1, 1, 1, 1}
			}

			if idx, ok := primitive.Attributes[gltf.NORMAL]; ok {
				normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, nil, err
				}
				for i := range verts {
					if i < len(normals) {
						verts[i].Normal = mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
					}
				}
			}
			if idx, ok := primitive.Attributes[gltf.TEXCOORD_0]; ok {
				texcoords, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, nil, err
				}
				for i := range verts {
					if i < len(texcoords) {
						verts[i].Texcoord = mgl32.Vec2{texcoords[i][0], texcoords[i][1]}
					}
				}
			}
			if idx, ok := primitive.Attributes[gltf.JOINTS_0]; ok {
				joints, err := modeler.ReadJoints(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, nil, err
				}
				for i := range verts {
					if i < len(joints) {
						verts[i].Joints = joints[i]
					}
				}
			}
			if idx, ok := primitive.Attributes[gltf.WEIGHTS_0]; ok {
				weights, err := modeler.ReadWeights(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, nil, err
				}
				for i := range verts {
					if i < len(weights) {
						w := weights[i]
						verts[i].Weights = mgl32.Vec4{w[0], w[1], w[2], w[3]}
					}
				}
			}
			vertices = append(vertices, verts...)

			if primitive.Indices != nil {
				primitiveIndices, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return nil, nil, err
				}
				for _, index := range primitiveIndices {
					indices = append(indices, base+index)
				}
			}
		}
	}

	if len(vertices) == 0 {
		return nil, nil, fmt.Errorf("no skinned geometry found")
	}
	return vertices, indices, nil
}

// importClips maps the document's animations to clips. With no specs, every
// animation becomes a clip under its own name; with specs, each spec must
// match an animation by name and may rename the resulting clip.
func importClips(doc *gltf.Document, specs []ClipSpec) ([]AnimationClip, error) {
	if len(specs) == 0 {
		clips := make([]AnimationClip, 0, len(doc.Animations))
		for _, animation := range doc.Animations {
			clips = append(clips, newClip(doc, animation, animation.Name))
		}
		return clips, nil
	}

	clips := make([]AnimationClip, 0, len(specs))
	for _, spec := range specs {
		found := false
		for _, animation := range doc.Animations {
			if animation.Name != spec.Name {
				continue
			}
			name := spec.Name
			if spec.Rename != "" {
				name = spec.Rename
			}
			clips = append(clips, newClip(doc, animation, name))
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("animation clip '%s' not present", spec.Name)
		}
	}
	return clips, nil
}

func newClip(doc *gltf.Document, animation *gltf.Animation, name string) AnimationClip {
	var duration float32
	for _, sampler := range animation.Samplers {
		input := doc.Accessors[sampler.Input]
		if len(input.Max) > 0 && float32(input.Max[0]) > duration {
			duration = float32(input.Max[0])
		}
	}
	return AnimationClip{
		Name:         name,
		Duration:     duration,
		ChannelCount: len(animation.Channels),
	}
}

func importJointNames(doc *gltf.Document) []string {
	var names []string
	for _, skin := range doc.Skins {
		for _, joint := range skin.Joints {
			if int(joint) < len(doc.Nodes) {
				names = append(names, doc.Nodes[joint].Name)
			}
		}
	}
	return names
}
