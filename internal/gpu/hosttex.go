package gpu

import (
	"fmt"

	"github.com/gogpu/glade"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// hostBindGroupCache caches one bind group per distinct external
// texture view, keyed by the view's native handle. Reusing the group
// across frames avoids bind-group churn when the same embedded surface
// is drawn every frame. A recreated texture produces a new handle and
// naturally misses; views the host destroys must be evicted explicitly
// or validation errors surface on the stale dimensions.
type hostBindGroupCache struct {
	device hal.Device
	groups map[uintptr]hal.BindGroup
}

func newHostBindGroupCache(device hal.Device) *hostBindGroupCache {
	return &hostBindGroupCache{
		device: device,
		groups: make(map[uintptr]hal.BindGroup),
	}
}

// groupFor returns the cached bind group for source, creating one on
// first sight. globalsBuf and sampler fill bindings 0 and 2; the
// external view fills binding 1.
func (c *hostBindGroupCache) groupFor(
	source glade.HostTextureSource,
	layout hal.BindGroupLayout,
	globalsBuf hal.Buffer,
	globalsSize uint64,
	sampler hal.Sampler,
) (hal.BindGroup, error) {
	handle := source.NativeHandle()
	if bg, ok := c.groups[handle]; ok {
		return bg, nil
	}

	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("host_texture_bind_%x", handle),
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: globalsBuf.NativeHandle(), Offset: 0, Size: globalsSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: handle,
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create host texture bind group: %w", err)
	}
	c.groups[handle] = bg
	return bg, nil
}

// Remove evicts the bind group of one view handle. Call when the host
// destroys or resizes a texture whose handle may be reused.
func (c *hostBindGroupCache) Remove(handle uintptr) {
	if bg, ok := c.groups[handle]; ok {
		c.device.DestroyBindGroup(bg)
		delete(c.groups, handle)
	}
}

// Clear evicts every cached bind group. Call when the globals buffer or
// sampler they reference is recreated.
func (c *hostBindGroupCache) Clear() {
	for handle, bg := range c.groups {
		c.device.DestroyBindGroup(bg)
		delete(c.groups, handle)
	}
}

// Len returns the number of cached bind groups.
func (c *hostBindGroupCache) Len() int { return len(c.groups) }
