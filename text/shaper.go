package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	gtlang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	"github.com/gogpu/glade"
)

// Direction is the primary text direction of a shaping run.
type Direction uint8

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

// ShapingRequest describes one run of text to shape. Runs are
// single-direction and single-font; callers segment mixed text before
// shaping.
type ShapingRequest struct {
	Text      string
	FontID    glade.FontID
	FontSize  float32
	Direction Direction

	// Language selects language-specific OpenType features. The zero
	// tag falls back to English.
	Language language.Tag
}

// Shaper converts text runs into positioned glyphs using HarfBuzz
// shaping, with ligatures, kerning, and complex-script support.
//
// Shaper is safe for concurrent use. HarfbuzzShaper instances carry
// mutable buffers, so they are pooled rather than shared; go-text
// font.Face values are likewise not concurrent-safe and are created
// per call around the store's thread-safe *font.Font.
type Shaper struct {
	store *FontStore
	pool  sync.Pool
}

// NewShaper creates a shaper resolving FontIDs through store.
func NewShaper(store *FontStore) *Shaper {
	return &Shaper{
		store: store,
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// Shape shapes one run and returns glyphs positioned relative to the
// run origin, pen on the baseline. An empty run shapes to nil.
func (s *Shaper) Shape(req ShapingRequest) ([]glade.ShapedGlyph, error) {
	if req.Text == "" {
		return nil, nil
	}
	f, err := s.store.Font(req.FontID)
	if err != nil {
		return nil, err
	}

	runes := []rune(req.Text)
	dir := di.DirectionLTR
	if req.Direction == DirectionRTL {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      gtfont.NewFace(f.typeset),
		Size:      fixed.Int26_6(req.FontSize * 64),
		Script:    detectScript(runes),
		Language:  mapLanguage(req.Language),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	glyphs := make([]glade.ShapedGlyph, len(output.Glyphs))
	var x float32
	for i, g := range output.Glyphs {
		adv := fixedToFloat32(g.Advance)
		glyphs[i] = glade.ShapedGlyph{
			FontID:  req.FontID,
			GlyphID: glade.GlyphID(g.GlyphID),
			Position: glade.Point{
				X: x + fixedToFloat32(g.XOffset),
				Y: -fixedToFloat32(g.YOffset),
			},
			Advance: adv,
		}
		x += adv
	}
	return glyphs, nil
}

// mapLanguage converts a BCP 47 tag to the go-text language value.
func mapLanguage(tag language.Tag) gtlang.Language {
	if tag.IsRoot() {
		return gtlang.NewLanguage("en")
	}
	return gtlang.NewLanguage(tag.String())
}

// detectScript returns the script of the first non-space rune. Mixed
// scripts should be segmented by the caller before shaping.
func detectScript(runes []rune) gtlang.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return gtlang.LookupScript(r)
	}
	return gtlang.Latin
}
