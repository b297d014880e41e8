package atlas

import "github.com/gogpu/glade"

// Uploader copies pixel data into a rectangular region of an atlas's
// backing texture. Production atlases use the GPU uploader in this
// package; tests inject a recording implementation.
type Uploader interface {
	// Upload writes data into tile. bytesPerRow is the source row
	// stride in bytes; it may exceed tile.Width*4 when rows are padded
	// for copy alignment.
	Upload(tile glade.AtlasTile, data []byte, bytesPerRow int)
}

// OverflowPolicy selects what an atlas does when the allocator runs out
// of space. The two policies differ in what they invalidate:
//
//   - OverflowDropLog drops the new entry and keeps every existing tile
//     valid. Used by the glyph atlas, whose tiles may already be
//     referenced by instance data queued for the current frame.
//   - OverflowClearRetry clears the whole atlas and retries once. Every
//     previously returned tile becomes invalid. Safe for the image
//     atlas because callers re-fetch tiles every frame.
//
// The asymmetry between the two atlases is deliberate; either atlas can
// be configured with either policy.
type OverflowPolicy uint8

const (
	// OverflowDropLog drops the entry and logs a warning.
	OverflowDropLog OverflowPolicy = iota

	// OverflowClearRetry clears the atlas and retries the allocation
	// once.
	OverflowClearRetry
)

// String returns a human-readable name for the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDropLog:
		return "DropLog"
	case OverflowClearRetry:
		return "ClearRetry"
	default:
		return "Unknown"
	}
}
