// Package flate implements a DEFLATE (RFC 1951) decompressor and the
// zlib (RFC 1950) wrapper around it. It backs the bundled PNG decoder;
// decompression is implemented from scratch so the codec path has no
// dependency on platform zlib behavior.
package flate

import (
	"errors"
	"fmt"
)

// Decompression errors.
var (
	// ErrTruncated is returned when the stream ends mid-block.
	ErrTruncated = errors.New("flate: truncated stream")

	// ErrInvalidBlockType is returned for reserved block type 3.
	ErrInvalidBlockType = errors.New("flate: invalid block type")

	// ErrStoredLengthMismatch is returned when a stored block's LEN and
	// NLEN fields are not complements.
	ErrStoredLengthMismatch = errors.New("flate: stored block length check failed")

	// ErrInvalidHuffmanCode is returned when the bit stream contains a
	// code outside the constructed Huffman tree.
	ErrInvalidHuffmanCode = errors.New("flate: invalid huffman code")

	// ErrInvalidCodeLengths is returned for an over- or under-subscribed
	// code length set.
	ErrInvalidCodeLengths = errors.New("flate: invalid code lengths")

	// ErrInvalidDistance is returned when a back-reference reaches
	// before the start of the output.
	ErrInvalidDistance = errors.New("flate: distance too far back")

	// ErrInvalidSymbol is returned for length/distance symbols outside
	// the defined alphabets.
	ErrInvalidSymbol = errors.New("flate: invalid symbol")
)

// bitReader reads bits LSB-first within each byte, as DEFLATE requires.
type bitReader struct {
	data []byte
	pos  int  // next byte index
	bits uint // bit position within data[pos], 0-7
}

// readBit returns the next bit.
func (r *bitReader) readBit() (uint32, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	bit := uint32(r.data[r.pos]>>r.bits) & 1
	r.bits++
	if r.bits == 8 {
		r.bits = 0
		r.pos++
	}
	return bit, nil
}

// readBits returns the next n bits (n <= 16), LSB-first.
func (r *bitReader) readBits(n uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < n; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v |= bit << i
	}
	return v, nil
}

// alignByte discards bits up to the next byte boundary.
func (r *bitReader) alignByte() {
	if r.bits != 0 {
		r.bits = 0
		r.pos++
	}
}

// readBytes returns the next n whole bytes. The reader must be
// byte-aligned.
func (r *bitReader) readBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Length code base values and extra bits for codes 257-285 (RFC 1951
// section 3.2.5).
var (
	lengthBase = [29]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// Distance code base values and extra bits for codes 0-29.
var (
	distBase = [30]int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
		8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// codeLengthOrder is the permuted order in which code lengths for the
// code length alphabet appear in a dynamic block header.
var codeLengthOrder = [19]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// Inflate decompresses a raw DEFLATE stream.
func Inflate(data []byte) ([]byte, error) {
	r := &bitReader{data: data}
	var out []byte

	for {
		final, err := r.readBits(1)
		if err != nil {
			return nil, err
		}
		btype, err := r.readBits(2)
		if err != nil {
			return nil, err
		}

		switch btype {
		case 0:
			out, err = inflateStored(r, out)
		case 1:
			out, err = inflateCompressed(r, out, fixedLitTree(), fixedDistTree())
		case 2:
			var lit, dist *huffmanTree
			lit, dist, err = readDynamicTrees(r)
			if err == nil {
				out, err = inflateCompressed(r, out, lit, dist)
			}
		default:
			err = ErrInvalidBlockType
		}
		if err != nil {
			return nil, err
		}

		if final == 1 {
			return out, nil
		}
	}
}

// inflateStored copies an uncompressed block.
func inflateStored(r *bitReader, out []byte) ([]byte, error) {
	r.alignByte()
	hdr, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	length := int(hdr[0]) | int(hdr[1])<<8
	nlength := int(hdr[2]) | int(hdr[3])<<8
	if length != ^nlength&0xFFFF {
		return nil, ErrStoredLengthMismatch
	}
	b, err := r.readBytes(length)
	if err != nil {
		return nil, err
	}
	return append(out, b...), nil
}

// inflateCompressed decodes literal/length symbols until end-of-block,
// copying LZ77 back-references as it goes.
func inflateCompressed(r *bitReader, out []byte, lit, dist *huffmanTree) ([]byte, error) {
	for {
		sym, err := lit.decode(r)
		if err != nil {
			return nil, err
		}

		switch {
		case sym < 256:
			out = append(out, byte(sym))
		case sym == 256:
			return out, nil
		default:
			if sym > 285 {
				return nil, fmt.Errorf("%w: length code %d", ErrInvalidSymbol, sym)
			}
			length := lengthBase[sym-257]
			extra, err := r.readBits(lengthExtra[sym-257])
			if err != nil {
				return nil, err
			}
			length += int(extra)

			dsym, err := dist.decode(r)
			if err != nil {
				return nil, err
			}
			if dsym > 29 {
				return nil, fmt.Errorf("%w: distance code %d", ErrInvalidSymbol, dsym)
			}
			distance := distBase[dsym]
			extra, err = r.readBits(distExtra[dsym])
			if err != nil {
				return nil, err
			}
			distance += int(extra)

			if distance > len(out) {
				return nil, ErrInvalidDistance
			}
			// Byte-at-a-time copy: the source region may overlap the
			// bytes being appended (run-length encoding via short
			// distances).
			start := len(out) - distance
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
		}
	}
}

// readDynamicTrees parses the code-length-encoded literal and distance
// trees of a dynamic Huffman block.
func readDynamicTrees(r *bitReader) (lit, dist *huffmanTree, err error) {
	hlit, err := r.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := r.readBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := r.readBits(4)
	if err != nil {
		return nil, nil, err
	}

	numLit := int(hlit) + 257
	numDist := int(hdist) + 1
	numCode := int(hclen) + 4

	// Code lengths for the code length alphabet, stored permuted.
	var clLengths [19]int
	for i := 0; i < numCode; i++ {
		v, err := r.readBits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clTree, err := newHuffmanTree(clLengths[:])
	if err != nil {
		return nil, nil, err
	}

	// The literal and distance code lengths form one run-length-encoded
	// sequence.
	lengths := make([]int, numLit+numDist)
	for i := 0; i < len(lengths); {
		sym, err := clTree.decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym < 16:
			lengths[i] = sym
			i++
		case sym == 16:
			if i == 0 {
				return nil, nil, fmt.Errorf("%w: repeat with no previous length", ErrInvalidCodeLengths)
			}
			n, err := r.readBits(2)
			if err != nil {
				return nil, nil, err
			}
			prev := lengths[i-1]
			for j := 0; j < int(n)+3; j++ {
				if i >= len(lengths) {
					return nil, nil, ErrInvalidCodeLengths
				}
				lengths[i] = prev
				i++
			}
		case sym == 17:
			n, err := r.readBits(3)
			if err != nil {
				return nil, nil, err
			}
			i += int(n) + 3
		case sym == 18:
			n, err := r.readBits(7)
			if err != nil {
				return nil, nil, err
			}
			i += int(n) + 11
		default:
			return nil, nil, fmt.Errorf("%w: code length symbol %d", ErrInvalidSymbol, sym)
		}
		if i > len(lengths) {
			return nil, nil, ErrInvalidCodeLengths
		}
	}

	lit, err = newHuffmanTree(lengths[:numLit])
	if err != nil {
		return nil, nil, err
	}
	dist, err = newHuffmanTree(lengths[numLit:])
	if err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}
