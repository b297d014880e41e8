// Package codec decodes compressed image assets into the RGBA buffers
// the image atlas uploads. Format detection is by magic bytes; the
// actual decoding lives in the png and jpeg subpackages.
package codec

import (
	"bytes"
	"errors"
	"hash/fnv"

	"github.com/gogpu/glade"
	"github.com/gogpu/glade/cache"
	"github.com/gogpu/glade/codec/jpeg"
	"github.com/gogpu/glade/codec/png"
)

// ErrUnknownFormat is returned when the data matches no supported
// image format.
var ErrUnknownFormat = errors.New("codec: unrecognized image format")

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	jpegMagic = []byte{0xFF, 0xD8}
)

// Decode sniffs the format and decodes the image. The result is
// premultiplied RGBA regardless of source format.
func Decode(data []byte) (*glade.DecodedImage, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return png.Decode(data)
	case bytes.HasPrefix(data, jpegMagic):
		return jpeg.Decode(data)
	default:
		return nil, ErrUnknownFormat
	}
}

// ImageID derives a stable content-addressed identifier from encoded
// image bytes. Equal assets share an ID, so atlas tiles and cached
// decodes deduplicate across call sites.
func ImageID(data []byte) glade.ImageID {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return glade.ImageID(h.Sum64())
}

// Library decodes image assets at most once, fronting the decoders
// with a sharded LRU keyed by content hash. It is safe for concurrent
// use.
type Library struct {
	decoded *cache.Sharded[glade.ImageID, *glade.DecodedImage]
}

// NewLibrary creates a library caching up to capacity decoded images
// per cache shard. capacity <= 0 selects the cache default.
func NewLibrary(capacity int) *Library {
	return &Library{
		decoded: cache.NewSharded[glade.ImageID, *glade.DecodedImage](
			capacity,
			func(id glade.ImageID) uint64 { return uint64(id) },
		),
	}
}

// Load decodes data, or returns the cached decode for identical bytes.
// The returned image is shared; callers must not mutate its pixels.
func (l *Library) Load(data []byte) (glade.ImageID, *glade.DecodedImage, error) {
	id := ImageID(data)
	if img, ok := l.decoded.Get(id); ok {
		return id, img, nil
	}
	img, err := Decode(data)
	if err != nil {
		return 0, nil, err
	}
	l.decoded.Set(id, img)
	return id, img, nil
}

// Get returns a previously loaded image by ID.
func (l *Library) Get(id glade.ImageID) (*glade.DecodedImage, bool) {
	return l.decoded.Get(id)
}

// Stats exposes the decode cache counters.
func (l *Library) Stats() cache.Stats {
	return l.decoded.Stats()
}

// Clear drops all cached decodes.
func (l *Library) Clear() {
	l.decoded.Clear()
}
