// Package scene accumulates draw primitives for one frame.
//
// A Scene is a retained ordering of layers, each holding per-kind
// primitive buckets. Clip masks and transforms are applied at insertion
// time: every Add method culls against the active clip, stamps the
// composed transform, and assigns a stable draw order. The renderer
// consumes the finished layer list; the scene itself never talks to the
// GPU.
//
// A Scene is owned by a single frame and is not safe for concurrent
// use, matching the cooperative single-threaded frame model.
package scene

import (
	"github.com/gogpu/glade"
)

// unboundedExtent is the half-extent of the base content mask. With no
// mask pushed, nothing is culled.
const unboundedExtent = 1 << 20

// Scene collects primitives for one frame.
type Scene struct {
	layers []*Layer

	// layerStack indexes into layers; the top entry is the insertion
	// target. The bottom entry (the base layer) is never popped.
	layerStack []int

	// maskStack and transformStack hold the composed clip and transform
	// state. Each keeps its base entry; entries above it are scoped by
	// Push/Pop pairs.
	maskStack      []glade.ContentMask
	transformStack []glade.TransformationMatrix
}

// New creates an empty scene with one base layer, an unbounded clip,
// and an identity transform.
func New() *Scene {
	s := &Scene{}
	s.init()
	return s
}

func (s *Scene) init() {
	s.layers = append(s.layers, newLayer())
	s.layerStack = append(s.layerStack, 0)
	s.maskStack = append(s.maskStack, glade.ContentMask{
		Bounds: glade.NewBounds(-unboundedExtent, -unboundedExtent,
			2*unboundedExtent, 2*unboundedExtent),
	})
	s.transformStack = append(s.transformStack, glade.Identity())
}

// Reset clears the scene for reuse without deallocating layer storage.
// Unbalanced stacks from the previous frame are discarded.
func (s *Scene) Reset() {
	for _, l := range s.layers {
		l.reset()
	}
	s.layers = s.layers[:1]
	s.layerStack = s.layerStack[:1]
	s.layerStack[0] = 0
	s.maskStack = s.maskStack[:1]
	s.transformStack = s.transformStack[:1]
	s.transformStack[0] = glade.Identity()
}

// Finish validates stack balance at the end of a frame. Unmatched
// pushes corrupt clip and transform state for everything inserted after
// them, so an imbalance is logged and the stacks are repaired to their
// base state. Returns true if the stacks were balanced.
func (s *Scene) Finish() bool {
	balanced := len(s.maskStack) == 1 && len(s.transformStack) == 1 && len(s.layerStack) == 1
	if !balanced {
		glade.Logger().Warn("scene: unbalanced push/pop at end of frame",
			"masks", len(s.maskStack)-1,
			"transforms", len(s.transformStack)-1,
			"layers", len(s.layerStack)-1)
		s.maskStack = s.maskStack[:1]
		s.transformStack = s.transformStack[:1]
		s.layerStack = s.layerStack[:1]
	}
	return balanced
}

// Layers returns the ordered layer list for rendering. The slice is a
// copy; the layers themselves must not be mutated by the caller.
func (s *Scene) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// --- Layer stack ---

// PushLayer opens a new z-context. Primitives inserted until the
// matching PopLayer composite over everything in earlier layers,
// regardless of widget-tree order. Used for popovers, menus, tooltips.
func (s *Scene) PushLayer() {
	s.layers = append(s.layers, newLayer())
	s.layerStack = append(s.layerStack, len(s.layers)-1)
}

// PopLayer returns insertion to the previous z-context. Popping the
// base layer is a bug in the caller; it is logged and ignored.
func (s *Scene) PopLayer() {
	if len(s.layerStack) == 1 {
		glade.Logger().Warn("scene: PopLayer without matching PushLayer")
		return
	}
	s.layerStack = s.layerStack[:len(s.layerStack)-1]
}

// --- Content mask stack ---

// PushContentMask narrows the active clip to the intersection of the
// current mask and mask. The mask bounds are interpreted in the space
// of the current transform.
func (s *Scene) PushContentMask(mask glade.ContentMask) {
	cur := s.currentMask()
	if t := s.currentTransform(); !t.IsIdentity() {
		mask.Bounds = t.TransformBounds(mask.Bounds)
	}
	s.maskStack = append(s.maskStack, cur.Intersect(mask))
}

// PopContentMask restores the clip active before the matching push.
func (s *Scene) PopContentMask() {
	if len(s.maskStack) == 1 {
		glade.Logger().Warn("scene: PopContentMask without matching PushContentMask")
		return
	}
	s.maskStack = s.maskStack[:len(s.maskStack)-1]
}

// --- Transform stack ---

// PushTransform composes t into the current transform. The new
// transform applies in the space established by the current one
// (right-multiply), matching nested 2D scene-graph semantics.
func (s *Scene) PushTransform(t glade.TransformationMatrix) {
	s.transformStack = append(s.transformStack, s.currentTransform().Multiply(t))
}

// PopTransform restores the transform active before the matching push.
func (s *Scene) PopTransform() {
	if len(s.transformStack) == 1 {
		glade.Logger().Warn("scene: PopTransform without matching PushTransform")
		return
	}
	s.transformStack = s.transformStack[:len(s.transformStack)-1]
}

func (s *Scene) currentMask() glade.ContentMask {
	return s.maskStack[len(s.maskStack)-1]
}

func (s *Scene) currentTransform() glade.TransformationMatrix {
	return s.transformStack[len(s.transformStack)-1]
}

func (s *Scene) currentLayer() *Layer {
	return s.layers[s.layerStack[len(s.layerStack)-1]]
}

// place computes the Placement for a primitive with the given bounds.
// Returns false when the primitive lies entirely outside the active
// clip and must be dropped (the cull check).
func (s *Scene) place(bounds glade.Bounds) (Placement, bool) {
	t := s.currentTransform()
	cullBounds := bounds
	var transform *glade.TransformationMatrix
	if !t.IsIdentity() {
		cullBounds = t.TransformBounds(bounds)
		copied := t
		transform = &copied
	}

	mask := s.currentMask()
	if !mask.Bounds.Intersects(cullBounds) {
		return Placement{}, false
	}

	return Placement{
		Clip:      mask,
		Transform: transform,
		Order:     glade.DrawOrder(s.currentLayer().takeOrder()),
	}, true
}

// --- Insertion ---

// AddRect inserts a rectangle primitive. The primitive's Placement is
// overwritten by the scene; callers populate geometry and paint fields
// only. The same holds for every Add method.
func (s *Scene) AddRect(r Rect) {
	p, ok := s.place(r.bounds())
	if !ok {
		return
	}
	r.Placement = p
	l := s.currentLayer()
	l.Rects = append(l.Rects, r)
}

// AddShadow inserts a drop-shadow primitive. Culling accounts for the
// blur radius extending past the casting bounds.
func (s *Scene) AddShadow(sh Shadow) {
	p, ok := s.place(sh.bounds())
	if !ok {
		return
	}
	sh.Placement = p
	l := s.currentLayer()
	l.Shadows = append(l.Shadows, sh)
}

// AddGlyph inserts a glyph quad. The tile must already be resident in
// the glyph atlas; invalid tiles are dropped.
func (s *Scene) AddGlyph(g Glyph) {
	if !g.Tile.IsValid() {
		return
	}
	p, ok := s.place(g.bounds())
	if !ok {
		return
	}
	g.Placement = p
	l := s.currentLayer()
	l.Glyphs = append(l.Glyphs, g)
}

// AddImage inserts an image quad backed by the image atlas.
func (s *Scene) AddImage(img Image) {
	if !img.Tile.IsValid() {
		return
	}
	p, ok := s.place(img.bounds())
	if !ok {
		return
	}
	img.Placement = p
	l := s.currentLayer()
	l.Images = append(l.Images, img)
}

// AddPath inserts a filled path given as a screen-space triangle list.
func (s *Scene) AddPath(path Path) {
	if len(path.Vertices) < 3 {
		return
	}
	p, ok := s.place(path.bounds())
	if !ok {
		return
	}
	path.Placement = p
	l := s.currentLayer()
	l.Paths = append(l.Paths, path)
}

// AddUnderline inserts an underline decoration.
func (s *Scene) AddUnderline(u Underline) {
	p, ok := s.place(u.bounds())
	if !ok {
		return
	}
	u.Placement = p
	l := s.currentLayer()
	l.Underlines = append(l.Underlines, u)
}

// AddHostTexture inserts an externally rendered texture quad.
func (s *Scene) AddHostTexture(h HostTexture) {
	if h.Source == nil {
		return
	}
	p, ok := s.place(h.bounds())
	if !ok {
		return
	}
	h.Placement = p
	l := s.currentLayer()
	l.HostTextures = append(l.HostTextures, h)
}
