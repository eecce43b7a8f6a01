package resources

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"

	"github.com/prismengine/prism/engine/core"
)

func (m *Manager) loadFont(ctx *LoadContext, path string) (*Font, error) {
	descriptor, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("parse font '%s': %w", path, err)
	}

	font := &Font{
		ID:         core.NewID(),
		Name:       ctx.Name,
		Face:       descriptor.Info.Face,
		Size:       descriptor.Info.Size,
		LineHeight: descriptor.Common.LineHeight,
		Baseline:   descriptor.Common.Base,
		AtlasSizeX: descriptor.Common.ScaleW,
		AtlasSizeY: descriptor.Common.ScaleH,
		Glyphs:     make(map[rune]FontGlyph, len(descriptor.Chars)),
	}

	for r, c := range descriptor.Chars {
		font.Glyphs[r] = FontGlyph{
			Codepoint: r,
			X:         uint16(c.X),
			Y:         uint16(c.Y),
			Width:     uint16(c.Width),
			Height:    uint16(c.Height),
			XOffset:   int16(c.XOffset),
			YOffset:   int16(c.YOffset),
			XAdvance:  int16(c.XAdvance),
			PageID:    uint8(c.Page),
		}
	}
	for pair, kerning := range descriptor.Kerning {
		font.Kernings = append(font.Kernings, FontKerning{
			First:  pair.First,
			Second: pair.Second,
			Amount: int16(kerning.Amount),
		})
	}

	// The backing glyph atlases go through the texture cache like any other
	// texture. Page files sit next to the descriptor, so their full paths hit
	// the literal-path branch of the texture loader.
	for id := 0; id < len(descriptor.Pages); id++ {
		page, ok := descriptor.Pages[id]
		if !ok {
			return nil, fmt.Errorf("font '%s': page %d missing from descriptor", ctx.Name, id)
		}
		atlas, err := m.textures.Load(filepath.Join(filepath.Dir(path), page.File))
		if err != nil {
			return nil, fmt.Errorf("font '%s' atlas page '%s': %w", ctx.Name, page.File, err)
		}
		font.Pages = append(font.Pages, atlas)
	}

	return font, nil
}
