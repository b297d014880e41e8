package flate

// maxCodeLength is the longest permitted Huffman code in DEFLATE.
const maxCodeLength = 15

// huffmanTree is a canonical Huffman decoder built from a code length
// array per RFC 1951 section 3.2.2: codes of each length are assigned
// consecutive values, ordered by symbol.
//
// Decoding walks the counts table one bit at a time, the same scheme as
// Mark Adler's puff reference decoder: at each length, if the
// accumulated code falls inside the range of codes of that length, the
// offset into the symbol table identifies the symbol.
type huffmanTree struct {
	// counts[l] is the number of codes of length l.
	counts [maxCodeLength + 1]int

	// symbols lists symbols ordered by code length, then symbol value.
	symbols []int
}

// newHuffmanTree constructs a decoder from per-symbol code lengths
// (zero means the symbol is unused). An over-subscribed set of lengths
// is rejected. Incomplete sets are permitted: encoders emit them for
// degenerate distance trees, and decoding only fails if the stream
// actually uses a missing code.
func newHuffmanTree(lengths []int) (*huffmanTree, error) {
	t := &huffmanTree{}
	for _, l := range lengths {
		if l < 0 || l > maxCodeLength {
			return nil, ErrInvalidCodeLengths
		}
		t.counts[l]++
	}
	if t.counts[0] == len(lengths) {
		// No codes at all; valid only if never used for decoding.
		return t, nil
	}

	// Check for an over-subscribed or incomplete set.
	left := 1
	for l := 1; l <= maxCodeLength; l++ {
		left <<= 1
		left -= t.counts[l]
		if left < 0 {
			return nil, ErrInvalidCodeLengths
		}
	}

	// Offsets of the first symbol of each length within t.symbols.
	var offsets [maxCodeLength + 1]int
	for l := 1; l < maxCodeLength; l++ {
		offsets[l+1] = offsets[l] + t.counts[l]
	}

	t.symbols = make([]int, offsets[maxCodeLength]+t.counts[maxCodeLength])
	for sym, l := range lengths {
		if l != 0 {
			t.symbols[offsets[l]] = sym
			offsets[l]++
		}
	}
	return t, nil
}

// decode reads bits until they resolve to a symbol.
func (t *huffmanTree) decode(r *bitReader) (int, error) {
	code := 0  // accumulated code, MSB-first
	first := 0 // first code of the current length
	index := 0 // index of first code of current length in symbols
	for l := 1; l <= maxCodeLength; l++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		code |= int(bit)
		count := t.counts[l]
		if code-first < count {
			return t.symbols[index+code-first], nil
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	return 0, ErrInvalidHuffmanCode
}

// Fixed trees per RFC 1951 section 3.2.6, built at init so concurrent
// decoders share them without synchronization.
var (
	fixedLit  = mustFixedLitTree()
	fixedDist = mustFixedDistTree()
)

func fixedLitTree() *huffmanTree { return fixedLit }

func fixedDistTree() *huffmanTree { return fixedDist }

func mustFixedLitTree() *huffmanTree {
	lengths := make([]int, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	t, err := newHuffmanTree(lengths)
	if err != nil {
		panic(err)
	}
	return t
}

func mustFixedDistTree() *huffmanTree {
	lengths := make([]int, 30)
	for i := range lengths {
		lengths[i] = 5
	}
	t, err := newHuffmanTree(lengths)
	if err != nil {
		panic(err)
	}
	return t
}
