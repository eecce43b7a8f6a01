package resources

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	// Decoders for the supported texture formats. Registration only; files
	// go through image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/prismengine/prism/engine/core"
)

const textureChannelCount uint8 = 4 // everything is expanded to RGBA

func (m *Manager) loadTexture(ctx *LoadContext, path string) (*Texture, error) {
	pixels, width, height, err := decodeImage(path)
	if err != nil {
		return nil, err
	}

	gpu, err := m.device.CreateTexture(ctx.Name, pixels, width, height, textureChannelCount)
	if err != nil {
		return nil, err
	}

	texture := &Texture{
		ID:              core.NewID(),
		Name:            ctx.Name,
		Width:           width,
		Height:          height,
		ChannelCount:    textureChannelCount,
		HasTransparency: hasTransparency(pixels),
		GPU:             gpu,
	}
	texture.release = func() error {
		return m.device.DestroyTexture(gpu)
	}
	return texture, nil
}

func (m *Manager) trackTexture(name string, texture *Texture) {
	m.autoDispose.Track(texture)
}

func decodeImage(path string) ([]uint8, uint32, uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image '%s': %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), nil
}

func hasTransparency(pixels []uint8) bool {
	for i := 3; i < len(pixels); i += int(textureChannelCount) {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}
