package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"
)

// encodeStd round-trips an image through the standard library encoder.
func encodeStd(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// buildPNG assembles a file by hand. Chunk CRCs are zero; the decoder
// does not verify them.
func buildPNG(chunks ...[]byte) []byte {
	out := append([]byte{}, pngSignature[:]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func chunk(typ string, data []byte) []byte {
	out := make([]byte, 8+len(data)+4)
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	copy(out[4:], typ)
	copy(out[8:], data)
	return out
}

func ihdr(w, h int, depth, colorType, interlace byte) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data, uint32(w))
	binary.BigEndian.PutUint32(data[4:], uint32(h))
	data[8] = depth
	data[9] = colorType
	data[12] = interlace
	return chunk("IHDR", data)
}

func idat(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("zlib: %v", err)
	}
	zw.Close()
	return chunk("IDAT", buf.Bytes())
}

func iend() []byte { return chunk("IEND", nil) }

func TestDecodeRGBACheckerboard(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	img.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 128})

	got, err := Decode(encodeStd(t, img))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 2 || got.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", got.Width, got.Height)
	}
	want := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 128, 128, 128, 128, // premultiplied by 128/255
	}
	if !bytes.Equal(got.Data, want) {
		t.Fatalf("pixels = %v, want %v", got.Data, want)
	}
}

func TestDecodeGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{0})
	img.SetGray(1, 0, color.Gray{128})
	img.SetGray(2, 0, color.Gray{255})

	got, err := Decode(encodeStd(t, img))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{0, 0, 0, 255, 128, 128, 128, 255, 255, 255, 255, 255}
	if !bytes.Equal(got.Data, want) {
		t.Fatalf("pixels = %v, want %v", got.Data, want)
	}
}

func TestDecodePaletted(t *testing.T) {
	// More than 16 palette entries forces the encoder to 8-bit depth.
	pal := make(color.Palette, 20)
	for i := range pal {
		pal[i] = color.NRGBA{byte(i * 10), 0, 0, 255}
	}
	img := image.NewPaletted(image.Rect(0, 0, 4, 1), pal)
	for x := 0; x < 4; x++ {
		img.SetColorIndex(x, 0, uint8(x+10))
	}

	got, err := Decode(encodeStd(t, img))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for x := 0; x < 4; x++ {
		if r := got.Data[x*4]; r != byte((x+10)*10) {
			t.Errorf("pixel %d red = %d, want %d", x, r, (x+10)*10)
		}
		if a := got.Data[x*4+3]; a != 255 {
			t.Errorf("pixel %d alpha = %d, want 255", x, a)
		}
	}
}

func TestDecodeIndexedTRNS(t *testing.T) {
	// Hand-built indexed image: palette entry 0 transparent via tRNS,
	// entry 1 opaque by omission.
	raw := []byte{0, 0, 1} // filter None, indices 0 and 1
	data := buildPNG(
		ihdr(2, 1, 8, colorIndexed, 0),
		chunk("PLTE", []byte{200, 10, 20, 30, 40, 50}),
		chunk("tRNS", []byte{0}),
		idat(t, raw),
		iend(),
	)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{0, 0, 0, 0, 30, 40, 50, 255}
	if !bytes.Equal(got.Data, want) {
		t.Fatalf("pixels = %v, want %v", got.Data, want)
	}
}

func TestDecodeMatchesStdlib(t *testing.T) {
	// Gradient with varying alpha, round-tripped through the stdlib
	// encoder; our premultiplied output must match stdlib's RGBA
	// (premultiplied) reading within rounding.
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{byte(x * 16), byte(y * 16), byte(x * y), byte(255 - x*8)})
		}
	}
	got, err := Decode(encodeStd(t, img))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			wantPix := [4]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8), byte(a >> 8)}
			i := (y*16 + x) * 4
			for c := 0; c < 4; c++ {
				diff := int(got.Data[i+c]) - int(wantPix[c])
				if diff < -1 || diff > 1 {
					t.Fatalf("pixel (%d,%d) channel %d = %d, want %d±1",
						x, y, c, got.Data[i+c], wantPix[c])
				}
			}
		}
	}
}

func TestPaethPredictor(t *testing.T) {
	tests := []struct {
		a, b, c, want byte
	}{
		{0, 0, 0, 0},
		{10, 20, 10, 20},  // p=20, closest to b
		{20, 10, 10, 20},  // p=20, closest to a
		{100, 100, 1, 100}, // tie between a and b picks a
		{50, 60, 70, 50},  // p=40, pa=10 pb=20 pc=30
		{255, 255, 0, 255},
		{1, 2, 3, 1}, // p=0, pa=1 pb=2 pc=3
	}
	for _, tt := range tests {
		if got := paethPredictor(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("paethPredictor(%d, %d, %d) = %d, want %d",
				tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

func TestDecodeAllFilters(t *testing.T) {
	// One scanline per filter type over RGB data; reversing must
	// reproduce the original pixels.
	const w, h = 3, 5
	orig := make([]byte, w*h*3)
	for i := range orig {
		orig[i] = byte(i*37 + 11)
	}

	stride := w * 3
	raw := make([]byte, (stride+1)*h)
	for y := 0; y < h; y++ {
		raw[y*(stride+1)] = byte(y) // filters 0..4
		line := raw[y*(stride+1)+1 : (y+1)*(stride+1)]
		src := orig[y*stride : (y+1)*stride]
		var prev []byte
		if y > 0 {
			prev = orig[(y-1)*stride : y*stride]
		}
		for i := 0; i < stride; i++ {
			var a, b, c byte
			if i >= 3 {
				a = src[i-3]
			}
			if prev != nil {
				b = prev[i]
				if i >= 3 {
					c = prev[i-3]
				}
			}
			switch y {
			case 0:
				line[i] = src[i]
			case 1:
				line[i] = src[i] - a
			case 2:
				line[i] = src[i] - b
			case 3:
				line[i] = src[i] - byte((int(a)+int(b))/2)
			case 4:
				line[i] = src[i] - paethPredictor(a, b, c)
			}
		}
	}

	data := buildPNG(ihdr(w, h, 8, colorRGB, 0), idat(t, raw), iend())
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			j := (y*w + x) * 3
			if got.Data[i] != orig[j] || got.Data[i+1] != orig[j+1] || got.Data[i+2] != orig[j+2] {
				t.Fatalf("filter %d pixel (%d,%d) = %v, want %v",
					y, x, y, got.Data[i:i+3], orig[j:j+3])
			}
		}
	}
}

func TestDecodeBadSignature(t *testing.T) {
	if _, err := Decode([]byte("not a png file")); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestDecodeRejectsInterlaced(t *testing.T) {
	data := buildPNG(ihdr(2, 2, 8, colorRGBA, 1), iend())
	if _, err := Decode(data); !errors.Is(err, ErrInterlaced) {
		t.Fatalf("err = %v, want ErrInterlaced", err)
	}
}

func TestDecodeRejects16Bit(t *testing.T) {
	data := buildPNG(ihdr(2, 2, 16, colorRGBA, 0), iend())
	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedDepth) {
		t.Fatalf("err = %v, want ErrUnsupportedDepth", err)
	}
}

func TestDecodeMissingPalette(t *testing.T) {
	raw := []byte{0, 0}
	data := buildPNG(ihdr(1, 1, 8, colorIndexed, 0), idat(t, raw), iend())
	if _, err := Decode(data); !errors.Is(err, ErrMissingPalette) {
		t.Fatalf("err = %v, want ErrMissingPalette", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	full := encodeStd(t, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if _, err := Decode(full[:20]); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	raw := []byte{0, 1, 2, 3} // too short for 2x2 RGBA
	data := buildPNG(ihdr(2, 2, 8, colorRGBA, 0), idat(t, raw), iend())
	if _, err := Decode(data); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("err = %v, want ErrSizeMismatch", err)
	}
}
