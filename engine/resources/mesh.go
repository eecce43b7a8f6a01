package resources

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pierrec/lz4/v4"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer"
)

// Built-in procedural mesh identifiers. These are generated in memory and
// never touch the filesystem.
const (
	BuiltinMeshQuad   = "__quad__"
	BuiltinMeshPlane  = "__plane__"
	BuiltinMeshCube   = "__cube__"
	BuiltinMeshSphere = "__sphere__"
	BuiltinMeshTeapot = "__teapot__"
)

func IsBuiltinMesh(name string) bool {
	switch name {
	case BuiltinMeshQuad, BuiltinMeshPlane, BuiltinMeshCube, BuiltinMeshSphere, BuiltinMeshTeapot:
		return true
	}
	return false
}

func (m *Manager) loadMesh(ctx *LoadContext, path string) (*Mesh, error) {
	var (
		vertices []renderer.Vertex
		indices  []uint32
		err      error
	)
	switch {
	case IsBuiltinMesh(path):
		vertices, indices, err = generateBuiltinMesh(path)
	case strings.EqualFold(filepath.Ext(path), ".obj"):
		vertices, indices, err = parseOBJ(path)
	default:
		vertices, indices, err = readBinaryMesh(path)
	}
	if err != nil {
		return nil, err
	}

	gpu, err := m.device.CreateGeometry(ctx.Name, vertices, indices)
	if err != nil {
		return nil, err
	}

	mesh := &Mesh{
		ID:       core.NewID(),
		Name:     ctx.Name,
		Vertices: vertices,
		Indices:  indices,
		GPU:      gpu,
	}
	mesh.release = func() error {
		return m.device.DestroyGeometry(gpu)
	}
	return mesh, nil
}

func (m *Manager) registerMesh(name string, mesh *Mesh) {
	m.objects.Register(mesh.ID, name, mesh)
}

func (m *Manager) unregisterMesh(name string, mesh *Mesh) {
	m.objects.Unregister(mesh.ID)
}

func generateBuiltinMesh(name string) ([]renderer.Vertex, []uint32, error) {
	switch name {
	case BuiltinMeshQuad:
		vertices, indices := generateQuad(1, 1)
		return vertices, indices, nil
	case BuiltinMeshPlane:
		return generatePlane(10, 10, 4, 4)
	case BuiltinMeshCube:
		return generateCube(1, 1, 1)
	case BuiltinMeshSphere:
		return generateSphere(0.5, 16, 24)
	case BuiltinMeshTeapot:
		return generateTeapot()
	}
	return nil, nil, fmt.Errorf("unknown builtin mesh '%s'", name)
}

// generateQuad builds a unit quad in the XY plane facing +Z.
func generateQuad(width, height float32) ([]renderer.Vertex, []uint32) {
	hw, hh := width*0.5, height*0.5
	vertices := []renderer.Vertex{
		newVertex(mgl32.Vec3{-hw, -hh, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{0, 0}),
		newVertex(mgl32.Vec3{hw, hh, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{1, 1}),
		newVertex(mgl32.Vec3{-hw, hh, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{0, 1}),
		newVertex(mgl32.Vec3{hw, -hh, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{1, 0}),
	}
	indices := []uint32{0, 1, 2, 0, 3, 1}
	return vertices, indices
}

// generatePlane builds a segmented plane in the XZ plane facing +Y.
// This generates extra vertices per segment; deduplication can come later.
func generatePlane(width, depth float32, xSegments, zSegments uint32) ([]renderer.Vertex, []uint32, error) {
	if width <= 0 || depth <= 0 {
		return nil, nil, fmt.Errorf("plane dimensions must be positive")
	}
	xSegments = core.Clamp(xSegments, 1, 128)
	zSegments = core.Clamp(zSegments, 1, 128)

	segWidth := width / float32(xSegments)
	segDepth := depth / float32(zSegments)
	halfWidth := width * 0.5
	halfDepth := depth * 0.5

	vertices := make([]renderer.Vertex, 0, xSegments*zSegments*4)
	indices := make([]uint32, 0, xSegments*zSegments*6)
	up := mgl32.Vec3{0, 1, 0}

	for z := uint32(0); z < zSegments; z++ {
		for x := uint32(0); x < xSegments; x++ {
			minX := float32(x)*segWidth - halfWidth
			minZ := float32(z)*segDepth - halfDepth
			maxX := minX + segWidth
			maxZ := minZ + segDepth
			minU := float32(x) / float32(xSegments)
			minV := float32(z) / float32(zSegments)
			maxU := float32(x+1) / float32(xSegments)
			maxV := float32(z+1) / float32(zSegments)

			base := uint32(len(vertices))
			vertices = append(vertices,
				newVertex(mgl32.Vec3{minX, 0, minZ}, up, mgl32.Vec2{minU, minV}),
				newVertex(mgl32.Vec3{maxX, 0, maxZ}, up, mgl32.Vec2{maxU, maxV}),
				newVertex(mgl32.Vec3{minX, 0, maxZ}, up, mgl32.Vec2{minU, maxV}),
				newVertex(mgl32.Vec3{maxX, 0, minZ}, up, mgl32.Vec2{maxU, minV}),
			)
			indices = append(indices, base+0, base+1, base+2, base+0, base+3, base+1)
		}
	}
	return vertices, indices, nil
}

// generateCube builds an axis-aligned box centred on the origin, four unique
// vertices per face.
func generateCube(width, height, depth float32) ([]renderer.Vertex, []uint32, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, nil, fmt.Errorf("cube dimensions must be positive")
	}
	hw, hh, hd := width*0.5, height*0.5, depth*0.5

	type face struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]renderer.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, corner := range f.corners {
			vertices = append(vertices, newVertex(corner, f.normal, uvs[i]))
		}
		indices = append(indices, base+0, base+1, base+2, base+0, base+2, base+3)
	}
	return vertices, indices, nil
}

// generateSphere builds a UV sphere with the given ring and segment counts.
func generateSphere(radius float32, rings, segments uint32) ([]renderer.Vertex, []uint32, error) {
	if radius <= 0 {
		return nil, nil, fmt.Errorf("sphere radius must be positive")
	}
	rings = core.Clamp(rings, 3, 256)
	segments = core.Clamp(segments, 3, 256)

	var vertices []renderer.Vertex
	var indices []uint32

	for r := uint32(0); r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := uint32(0); s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			normal := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			uv := mgl32.Vec2{
				float32(s) / float32(segments),
				float32(r) / float32(rings),
			}
			vertices = append(vertices, newVertex(normal.Mul(radius), normal, uv))
		}
	}

	stride := segments + 1
	for r := uint32(0); r < rings; r++ {
		for s := uint32(0); s < segments; s++ {
			i0 := r*stride + s
			i1 := i0 + stride
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}
	return vertices, indices, nil
}

// teapotProfile is a coarse body/lid silhouette (radius, height pairs) that
// generateTeapot lathes around the Y axis.
var teapotProfile = [][2]float32{
	{0.00, 0.00},
	{0.70, 0.00},
	{0.95, 0.20},
	{1.00, 0.55},
	{0.90, 0.95},
	{0.65, 1.15},
	{0.30, 1.20},
	{0.35, 1.30},
	{0.15, 1.42},
	{0.00, 1.50},
}

func generateTeapot() ([]renderer.Vertex, []uint32, error) {
	const segments = 24
	var vertices []renderer.Vertex
	var indices []uint32

	profileLen := len(teapotProfile)
	for p, rp := range teapotProfile {
		radius, height := rp[0], rp[1]
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			position := mgl32.Vec3{radius * cos, height, radius * sin}
			normal := mgl32.Vec3{cos, 0.35, sin}.Normalize()
			if radius == 0 {
				if p == 0 {
					normal = mgl32.Vec3{0, -1, 0}
				} else {
					normal = mgl32.Vec3{0, 1, 0}
				}
			}
			uv := mgl32.Vec2{
				float32(s) / float32(segments),
				float32(p) / float32(profileLen-1),
			}
			vertices = append(vertices, newVertex(position, normal, uv))
		}
	}

	stride := uint32(segments + 1)
	for p := uint32(0); p < uint32(profileLen-1); p++ {
		for s := uint32(0); s < segments; s++ {
			i0 := p*stride + s
			i1 := i0 + stride
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}
	return vertices, indices, nil
}

func newVertex(position, normal mgl32.Vec3, texcoord mgl32.Vec2) renderer.Vertex {
	return renderer.Vertex{
		Position: position,
		Normal:   normal,
		Texcoord: texcoord,
		Colour:   mgl32.Vec4{1, 1, 1, 1},
	}
}

// parseOBJ reads the plain-text geometry format: v/vt/vn statements and
// triangulated (or fan-triangulatable) f statements. Material libraries and
// groups are ignored.
func parseOBJ(path string) ([]renderer.Vertex, []uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var (
		positions []mgl32.Vec3
		texcoords []mgl32.Vec2
		normals   []mgl32.Vec3
		vertices  []renderer.Vertex
		indices   []uint32
	)
	lookup := make(map[string]uint32)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			values, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			positions = append(positions, mgl32.Vec3{values[0], values[1], values[2]})
		case "vt":
			values, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			texcoords = append(texcoords, mgl32.Vec2{values[0], values[1]})
		case "vn":
			values, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			normals = append(normals, mgl32.Vec3{values[0], values[1], values[2]})
		case "f":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("%s:%d: face with fewer than 3 vertices", path, lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				index, ok := lookup[ref]
				if !ok {
					vertex, err := objVertex(ref, positions, texcoords, normals)
					if err != nil {
						return nil, nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
					}
					index = uint32(len(vertices))
					vertices = append(vertices, vertex)
					lookup[ref] = index
				}
				face = append(face, index)
			}
			for i := 2; i < len(face); i++ {
				indices = append(indices, face[0], face[i-1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(vertices) == 0 {
		return nil, nil, fmt.Errorf("no geometry in '%s'", path)
	}
	return vertices, indices, nil
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d components, got %d", want, len(fields))
	}
	values := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s'", fields[i])
		}
		values[i] = float32(v)
	}
	return values, nil
}

// objVertex resolves one face corner reference of the form
// "pos", "pos/uv", "pos//normal" or "pos/uv/normal". Indices are 1-based;
// negative indices count back from the end.
func objVertex(ref string, positions []mgl32.Vec3, texcoords []mgl32.Vec2, normals []mgl32.Vec3) (renderer.Vertex, error) {
	vertex := renderer.Vertex{Colour: mgl32.Vec4{1, 1, 1, 1}}

	parts := strings.Split(ref, "/")
	resolve := func(raw string, length int) (int, error) {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid index '%s'", raw)
		}
		if index < 0 {
			index = length + index + 1
		}
		if index < 1 || index > length {
			return 0, fmt.Errorf("index %s out of range", raw)
		}
		return index - 1, nil
	}

	index, err := resolve(parts[0], len(positions))
	if err != nil {
		return vertex, err
	}
	vertex.Position = positions[index]

	if len(parts) > 1 && parts[1] != "" {
		index, err := resolve(parts[1], len(texcoords))
		if err != nil {
			return vertex, err
		}
		vertex.Texcoord = texcoords[index]
	}
	if len(parts) > 2 && parts[2] != "" {
		index, err := resolve(parts[2], len(normals))
		if err != nil {
			return vertex, err
		}
		vertex.Normal = normals[index]
	}
	return vertex, nil
}

// Prism binary mesh format: an uncompressed header (magic, version, counts)
// followed by an lz4-framed little-endian payload of interleaved vertices and
// indices.
var binaryMeshMagic = [4]byte{'P', 'M', 'S', 'H'}

const binaryMeshVersion uint32 = 1

type binaryMeshHeader struct {
	Magic       [4]byte
	Version     uint32
	VertexCount uint32
	IndexCount  uint32
}

func readBinaryMesh(path string) ([]renderer.Vertex, []uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var header binaryMeshHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("read mesh header of '%s': %w", path, err)
	}
	if header.Magic != binaryMeshMagic {
		return nil, nil, fmt.Errorf("'%s' is not a binary mesh file", path)
	}
	if header.Version != binaryMeshVersion {
		return nil, nil, fmt.Errorf("unsupported binary mesh version %d in '%s'", header.Version, path)
	}
	if header.VertexCount == 0 {
		return nil, nil, fmt.Errorf("binary mesh '%s' has no vertices", path)
	}

	payload := lz4.NewReader(file)
	vertices := make([]renderer.Vertex, header.VertexCount)
	if err := binary.Read(payload, binary.LittleEndian, vertices); err != nil {
		return nil, nil, fmt.Errorf("read vertices of '%s': %w", path, err)
	}
	indices := make([]uint32, header.IndexCount)
	if err := binary.Read(payload, binary.LittleEndian, indices); err != nil {
		return nil, nil, fmt.Errorf("read indices of '%s': %w", path, err)
	}
	return vertices, indices, nil
}

// WriteBinaryMesh serializes geometry to the Prism binary mesh format. Used
// by asset tooling to bake text formats into the fast path.
func WriteBinaryMesh(path string, vertices []renderer.Vertex, indices []uint32) error {
	if len(vertices) == 0 {
		return fmt.Errorf("refusing to write empty mesh '%s'", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	header := binaryMeshHeader{
		Magic:       binaryMeshMagic,
		Version:     binaryMeshVersion,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}
	if err := binary.Write(file, binary.LittleEndian, &header); err != nil {
		return err
	}

	payload := lz4.NewWriter(file)
	if err := binary.Write(payload, binary.LittleEndian, vertices); err != nil {
		return err
	}
	if err := binary.Write(payload, binary.LittleEndian, indices); err != nil {
		return err
	}
	return payload.Close()
}
