package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/prismengine/prism/engine/core"
)

const DefaultMaterialName = "default"

// materialFile is the on-disk shape of a material description: a name plus an
// ordered list of rendering passes. Load and Save round-trip through it.
type materialFile struct {
	Name   string         `toml:"name"`
	Passes []MaterialPass `toml:"passes"`
}

func (m *Manager) loadMaterial(ctx *LoadContext, path string) (*Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file materialFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse material '%s': %w", path, err)
	}
	if err := validateMaterial(&file); err != nil {
		return nil, fmt.Errorf("material '%s': %w", path, err)
	}

	name := file.Name
	if name == "" {
		name = ctx.Name
	}
	return &Material{
		ID:     core.NewID(),
		Name:   name,
		Path:   path,
		Passes: file.Passes,
	}, nil
}

func (m *Manager) registerMaterial(name string, material *Material) {
	m.objects.Register(material.ID, name, material)
}

func (m *Manager) unregisterMaterial(name string, material *Material) {
	m.objects.Unregister(material.ID)
}

func validateMaterial(file *materialFile) error {
	if len(file.Passes) == 0 {
		return fmt.Errorf("at least one pass is required")
	}
	for i, pass := range file.Passes {
		if pass.Shader == "" {
			return fmt.Errorf("pass %d has no shader", i)
		}
		for _, c := range pass.DiffuseColour {
			if c < 0 || c > 1 {
				return fmt.Errorf("pass %d diffuse_colour values must be between 0.0 and 1.0", i)
			}
		}
		if pass.Shininess < 0 {
			return fmt.Errorf("pass %d shininess must be non-negative", i)
		}
	}
	return nil
}

// SaveMaterial serializes the material back to its description file. An
// in-memory material with no file yet is written into the most recently added
// search root's Material folder.
func (m *Manager) SaveMaterial(material *Material) error {
	if material == nil {
		return fmt.Errorf("save of nil material")
	}
	if material.released {
		return fmt.Errorf("save of disposed material '%s'", material.Name)
	}

	path := material.Path
	if path == "" {
		roots := m.paths.Roots()
		if len(roots) == 0 {
			return fmt.Errorf("no search root to save material '%s' into", material.Name)
		}
		dir := filepath.Join(roots[len(roots)-1], SubfolderMaterial)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		filename := material.Name
		if filepath.Ext(filename) == "" {
			filename += ".toml"
		}
		path = filepath.Join(dir, filename)
	}

	data, err := toml.Marshal(&materialFile{
		Name:   material.Name,
		Passes: material.Passes,
	})
	if err != nil {
		return fmt.Errorf("serialize material '%s': %w", material.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	material.Path = path
	return nil
}

// The fallback material exists from manager construction on, so a missing or
// broken material file never blocks a draw.
func newDefaultMaterial() *Material {
	return &Material{
		ID:   core.NewID(),
		Name: DefaultMaterialName,
		Passes: []MaterialPass{
			{
				Shader:        "Builtin.World",
				DiffuseColour: [4]float32{1, 1, 1, 1},
				Shininess:     8,
			},
		},
	}
}
