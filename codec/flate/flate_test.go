package flate

import (
	"bytes"
	stdflate "compress/flate"
	"compress/zlib"
	"math/rand"
	"sync"
	"testing"
)

// deflateStd compresses data with the standard library at the given
// level, producing a raw DEFLATE stream for decoder tests.
func deflateStd(t *testing.T, data []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := stdflate.NewWriter(&buf, level)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestInflateStoredBlock(t *testing.T) {
	// Hand-built stream: BFINAL=1, BTYPE=00 (stored), then LEN/NLEN and
	// the literal bytes.
	payload := []byte("hello stored")
	stream := []byte{0x01} // final bit set, stored type, padding zeros
	n := len(payload)
	stream = append(stream, byte(n), byte(n>>8), byte(^n), byte(^n>>8))
	stream = append(stream, payload...)

	got, err := Inflate(stream)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Inflate = %q, want %q", got, payload)
	}
}

func TestInflateStoredLengthMismatch(t *testing.T) {
	stream := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'}
	if _, err := Inflate(stream); err == nil {
		t.Error("corrupt NLEN accepted")
	}
}

func TestInflateFixedHuffman(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	// Level 1 with short input produces fixed-Huffman blocks.
	stream := deflateStd(t, data, 1)

	got, err := Inflate(stream)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Inflate = %q, want %q", got, data)
	}
}

func TestInflateFixedHuffmanConcurrent(t *testing.T) {
	// The fixed trees are shared package state; concurrent decoders must
	// be able to hit them simultaneously (the image library inflates
	// from multiple goroutines without a lock).
	data := []byte("the quick brown fox jumps over the lazy dog")
	stream := deflateStd(t, data, 1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Inflate(stream)
			if err != nil {
				t.Errorf("Inflate: %v", err)
				return
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Inflate = %q, want %q", got, data)
			}
		}()
	}
	wg.Wait()
}

func TestInflateDynamicHuffman(t *testing.T) {
	// Repetitive data long enough to trigger dynamic Huffman coding at
	// the default level.
	var data []byte
	for i := 0; i < 200; i++ {
		data = append(data, []byte("abcabcabdeadbeef")...)
		data = append(data, byte(i))
	}
	stream := deflateStd(t, data, stdflate.DefaultCompression)

	got, err := Inflate(stream)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("dynamic block round trip mismatch")
	}
}

func TestInflateBackReferences(t *testing.T) {
	// Overlapping copies: distance 1, long length (run-length case).
	data := bytes.Repeat([]byte{0x55}, 1000)
	stream := deflateStd(t, data, stdflate.BestCompression)

	got, err := Inflate(stream)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("run-length round trip mismatch")
	}
}

func TestInflateRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []int{0, 1, 100, 4096, 70000} {
		data := make([]byte, size)
		// Mix of random and compressible spans.
		for i := range data {
			if i%3 == 0 {
				data[i] = byte(rng.Intn(256))
			} else {
				data[i] = byte(i % 16)
			}
		}
		stream := deflateStd(t, data, stdflate.DefaultCompression)

		got, err := Inflate(stream)
		if err != nil {
			t.Fatalf("size %d: Inflate: %v", size, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("size %d: round trip mismatch", size)
		}
	}
}

func TestInflateTruncated(t *testing.T) {
	stream := deflateStd(t, []byte("some data to truncate"), 1)
	if _, err := Inflate(stream[:len(stream)/2]); err == nil {
		t.Error("truncated stream accepted")
	}
	if _, err := Inflate(nil); err == nil {
		t.Error("empty stream accepted")
	}
}

func TestDecompressZlib(t *testing.T) {
	data := []byte("zlib wrapped payload")
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := DecompressZlib(buf.Bytes())
	if err != nil {
		t.Fatalf("DecompressZlib: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("DecompressZlib = %q, want %q", got, data)
	}
}

func TestDecompressZlibHeaderChecks(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x78}},
		{"bad method", []byte{0x77, 0x01}},
		{"bad fcheck", []byte{0x78, 0x9D}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecompressZlib(tt.data); err == nil {
				t.Error("invalid header accepted")
			}
		})
	}
}

func TestDecompressZlibPresetDictionary(t *testing.T) {
	// CMF=0x78, FLG with FDICT set and valid FCHECK: 0x78*256+FLG ≡ 0
	// (mod 31) with bit 5 set. 0x78BB satisfies both.
	if _, err := DecompressZlib([]byte{0x78, 0xBB, 0x00}); err != ErrPresetDictionary {
		t.Errorf("err = %v, want ErrPresetDictionary", err)
	}
}

func TestHuffmanOversubscribed(t *testing.T) {
	// Three symbols of length 1 cannot form a prefix code.
	if _, err := newHuffmanTree([]int{1, 1, 1}); err == nil {
		t.Error("oversubscribed lengths accepted")
	}
}
