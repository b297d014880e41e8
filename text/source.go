// Package text supplies the default implementations of the rendering
// core's text contracts: a font store that parses TTF/OTF data, a
// HarfBuzz shaper built on go-text/typesetting, and an outline glyph
// rasterizer producing coverage masks for the glyph atlas.
//
// The rendering core itself never shapes or rasterizes text; it only
// consumes this package through the glade.GlyphRasterizer and shaped
// glyph types, so hosts with their own text stack can bypass it
// entirely.
package text

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glade"
)

var (
	// ErrBadFont is returned when font data cannot be parsed.
	ErrBadFont = errors.New("text: cannot parse font data")

	// ErrUnknownFont is returned for a FontID that was never registered.
	ErrUnknownFont = errors.New("text: unknown font id")
)

// Metrics holds vertical font metrics at a specific size, in pixels.
// Descent is positive, measured downward from the baseline.
type Metrics struct {
	Ascent  float32
	Descent float32
	LineGap float32
}

// LineHeight returns the default baseline-to-baseline distance.
func (m Metrics) LineHeight() float32 {
	return m.Ascent + m.Descent + m.LineGap
}

// Font is a registered font. The sfnt parse serves outline extraction
// and metrics; the go-text parse serves shaping. Both are read-only
// after registration and safe for concurrent use.
type Font struct {
	id      glade.FontID
	sfnt    *sfnt.Font
	typeset *gtfont.Font
}

// ID returns the identifier assigned at registration.
func (f *Font) ID() glade.FontID { return f.id }

// FontStore registers font binaries and hands out FontIDs used across
// shaping, rasterization, and the glyph atlas. It is safe for
// concurrent use.
type FontStore struct {
	mu     sync.RWMutex
	fonts  map[glade.FontID]*Font
	nextID uint32
}

// NewFontStore creates an empty font store.
func NewFontStore() *FontStore {
	return &FontStore{fonts: make(map[glade.FontID]*Font), nextID: 1}
}

// Register parses TTF or OTF data and assigns it a FontID. The data is
// parsed twice, once for each consumer: outlines need the sfnt tables,
// shaping needs the go-text ones. IDs start at 1; zero is never a
// valid FontID.
func (s *FontStore) Register(data []byte) (glade.FontID, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFont, err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFont, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := glade.FontID(s.nextID)
	s.nextID++
	s.fonts[id] = &Font{id: id, sfnt: sf, typeset: face.Font}
	return id, nil
}

// Font returns the registered font for id.
func (s *FontStore) Font(id glade.FontID) (*Font, error) {
	s.mu.RLock()
	f, ok := s.fonts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	return f, nil
}

// Len returns the number of registered fonts.
func (s *FontStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fonts)
}

// Metrics returns the vertical metrics of a font at the given pixel
// size.
func (s *FontStore) Metrics(id glade.FontID, size float32) (Metrics, error) {
	f, err := s.Font(id)
	if err != nil {
		return Metrics{}, err
	}

	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)
	m, err := f.sfnt.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("text: font metrics: %w", err)
	}
	return Metrics{
		Ascent:  fixedToFloat32(m.Ascent),
		Descent: fixedToFloat32(m.Descent),
		LineGap: fixedToFloat32(m.Height - m.Ascent - m.Descent),
	}, nil
}

func fixedToFloat32(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
