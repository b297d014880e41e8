package atlas

import (
	"fmt"

	"github.com/gogpu/glade"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required byte alignment of BytesPerRow for
// texture uploads.
const copyPitchAlignment = 256

// AlignRowBytes rounds a byte stride up to the copy pitch alignment.
func AlignRowBytes(n int) int {
	return (n + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// GPUTexture owns the backing texture of one atlas and implements
// Uploader over the HAL queue. Created once per device; destroyed when
// the owning render context is torn down.
type GPUTexture struct {
	device hal.Device
	queue  hal.Queue

	texture hal.Texture
	view    hal.TextureView
	size    int
}

// NewGPUTexture creates a size x size RGBA8 atlas texture.
func NewGPUTexture(device hal.Device, queue hal.Queue, size int, label string) (*GPUTexture, error) {
	if size <= 0 {
		size = DefaultSize
	}
	dim := uint32(size)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("atlas: create texture view %q: %w", label, err)
	}

	return &GPUTexture{
		device:  device,
		queue:   queue,
		texture: tex,
		view:    view,
		size:    size,
	}, nil
}

// Upload writes pixel data into the given region of the atlas texture.
func (t *GPUTexture) Upload(tile glade.AtlasTile, data []byte, bytesPerRow int) {
	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(tile.X), Y: uint32(tile.Y)},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(bytesPerRow),
			RowsPerImage: uint32(tile.Height),
		},
		&hal.Extent3D{
			Width:              uint32(tile.Width),
			Height:             uint32(tile.Height),
			DepthOrArrayLayers: 1,
		},
	)
}

// View returns the texture view for pipeline binding.
func (t *GPUTexture) View() hal.TextureView { return t.view }

// Size returns the texture dimension in texels.
func (t *GPUTexture) Size() int { return t.size }

// Destroy releases the texture and its view. Safe to call twice.
func (t *GPUTexture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
