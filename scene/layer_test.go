package scene

import (
	"testing"

	"github.com/gogpu/glade"
)

func TestLayerCounts(t *testing.T) {
	s := New()
	s.AddRect(Rect{Bounds: glade.NewBounds(0, 0, 10, 10)})
	s.AddRect(Rect{Bounds: glade.NewBounds(0, 0, 10, 10)})
	s.AddShadow(Shadow{Bounds: glade.NewBounds(0, 0, 10, 10)})

	l := s.Layers()[0]
	tests := []struct {
		kind PrimitiveKind
		want int
	}{
		{KindShadow, 1},
		{KindRect, 2},
		{KindGlyph, 0},
		{KindImage, 0},
		{KindPath, 0},
		{KindUnderline, 0},
		{KindHostTexture, 0},
	}
	for _, tt := range tests {
		if got := l.Count(tt.kind); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if l.PrimitiveCount() != 3 {
		t.Errorf("PrimitiveCount = %d, want 3", l.PrimitiveCount())
	}
}

func TestKindString(t *testing.T) {
	for k := PrimitiveKind(0); k < KindCount; k++ {
		if k.String() == "Unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if PrimitiveKind(250).String() != "Unknown" {
		t.Error("out-of-range kind should stringify as Unknown")
	}
}

func TestLayerResetKeepsCapacity(t *testing.T) {
	l := newLayer()
	l.Rects = append(l.Rects, Rect{}, Rect{})
	l.nextOrder = 7

	l.reset()

	if len(l.Rects) != 0 || l.nextOrder != 0 {
		t.Errorf("reset left state: rects=%d nextOrder=%d", len(l.Rects), l.nextOrder)
	}
	if cap(l.Rects) < 2 {
		t.Error("reset dropped bucket capacity")
	}
}
