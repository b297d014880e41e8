package jpeg

import "fmt"

// bitReader reads the entropy-coded segment MSB-first. Stuffed zero
// bytes after 0xFF are skipped transparently; any other marker inside
// coefficient data is an error (restart markers are consumed explicitly
// between MCU groups, byte-aligned).
type bitReader struct {
	data []byte
	pos  int
	cur  byte
	n    int // valid bits remaining in cur
}

func (br *bitReader) readBit() (int, error) {
	if br.n == 0 {
		if br.pos >= len(br.data) {
			return 0, ErrTruncated
		}
		b := br.data[br.pos]
		br.pos++
		if b == 0xFF {
			if br.pos >= len(br.data) {
				return 0, ErrTruncated
			}
			switch m := br.data[br.pos]; {
			case m == 0x00:
				br.pos++
			default:
				return 0, fmt.Errorf("jpeg: unexpected marker 0xFF%02X in scan", m)
			}
		}
		br.cur = b
		br.n = 8
	}
	br.n--
	return int(br.cur>>br.n) & 1, nil
}

func (br *bitReader) readBits(count int) (int32, error) {
	var v int32
	for i := 0; i < count; i++ {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | int32(bit)
	}
	return v, nil
}

// receiveExtend reads a t-bit magnitude and sign-extends it per the
// JPEG EXTEND procedure: values below the positive half-range map to
// the negative range.
func (br *bitReader) receiveExtend(t byte) (int32, error) {
	if t == 0 {
		return 0, nil
	}
	v, err := br.readBits(int(t))
	if err != nil {
		return 0, err
	}
	if v < 1<<(t-1) {
		v += -1<<t + 1
	}
	return v, nil
}

// restart aligns to a byte boundary and consumes the expected RSTn
// marker. Restart markers cycle through D0-D7.
func (br *bitReader) restart(index int) error {
	br.n = 0
	if br.pos+2 > len(br.data) {
		return ErrTruncated
	}
	want := byte(0xD0 + index%8)
	if br.data[br.pos] != 0xFF || br.data[br.pos+1] != want {
		return fmt.Errorf("jpeg: expected restart marker 0xFF%02X, got 0x%02X%02X",
			want, br.data[br.pos], br.data[br.pos+1])
	}
	br.pos += 2
	return nil
}

// huffTable is a canonical Huffman table from a DHT segment: counts of
// codes per bit length 1-16 plus symbols in code order.
type huffTable struct {
	counts  [17]int
	symbols []byte
}

func newHuffTable(counts []byte, symbols []byte) *huffTable {
	t := &huffTable{symbols: symbols}
	for i, c := range counts {
		t.counts[i+1] = int(c)
	}
	return t
}

// decode walks the canonical code space one bit at a time, tracking the
// first code and symbol index of each length.
func (t *huffTable) decode(br *bitReader) (byte, error) {
	code, first, index := 0, 0, 0
	for length := 1; length <= 16; length++ {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		code |= bit
		count := t.counts[length]
		if code-first < count {
			return t.symbols[index+code-first], nil
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	return 0, ErrBadHuffman
}
