// Package png decodes PNG images into RGBA pixel buffers for atlas
// upload. It supports the subset UI assets use in practice: 8-bit
// depth, non-interlaced, all five color types, with tRNS transparency
// for indexed and grayscale images. Compressed image data is inflated
// by the bundled flate package.
//
// Output is premultiplied RGBA, matching the blend mode of the color
// pipelines.
package png

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/glade"
	"github.com/gogpu/glade/codec/flate"
)

// Decode errors. Decoding never partially succeeds: any error means no
// image.
var (
	// ErrBadSignature is returned when the 8-byte PNG signature is
	// missing.
	ErrBadSignature = errors.New("png: bad signature")

	// ErrTruncated is returned when the data ends mid-chunk.
	ErrTruncated = errors.New("png: truncated file")

	// ErrUnsupportedDepth is returned for bit depths other than 8.
	ErrUnsupportedDepth = errors.New("png: only 8-bit depth supported")

	// ErrInterlaced is returned for Adam7-interlaced images.
	ErrInterlaced = errors.New("png: interlacing not supported")

	// ErrUnsupportedColorType is returned for color types outside the
	// five defined by the PNG standard.
	ErrUnsupportedColorType = errors.New("png: unsupported color type")

	// ErrMissingPalette is returned for indexed images without a PLTE
	// chunk.
	ErrMissingPalette = errors.New("png: indexed image missing palette")

	// ErrInvalidFilter is returned for a scanline filter byte outside
	// 0-4.
	ErrInvalidFilter = errors.New("png: invalid scanline filter")

	// ErrSizeMismatch is returned when the decompressed data does not
	// match the dimensions in IHDR.
	ErrSizeMismatch = errors.New("png: pixel data size mismatch")
)

// pngSignature is the fixed 8-byte file signature.
var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// Color types defined by the PNG specification.
const (
	colorGray      = 0
	colorRGB       = 2
	colorIndexed   = 3
	colorGrayAlpha = 4
	colorRGBA      = 6
)

// bytesPerPixel returns the source bytes per pixel for a color type at
// 8-bit depth.
func bytesPerPixel(colorType byte) int {
	switch colorType {
	case colorGray, colorIndexed:
		return 1
	case colorGrayAlpha:
		return 2
	case colorRGB:
		return 3
	case colorRGBA:
		return 4
	default:
		return 0
	}
}

// header holds the parsed IHDR fields.
type header struct {
	width, height int
	bitDepth      byte
	colorType     byte
	interlace     byte
}

// Decode parses a PNG file and returns its pixels as premultiplied
// RGBA.
func Decode(data []byte) (*glade.DecodedImage, error) {
	if len(data) < 8 || [8]byte(data[:8]) != pngSignature {
		return nil, ErrBadSignature
	}

	var (
		hdr        *header
		palette    []byte // 3 bytes per entry
		trns       []byte
		compressed []byte
	)

	// Chunk sequence: length (big-endian), 4-byte ASCII type, data,
	// CRC. The CRC is not checked; the inflate and filter stages catch
	// corrupt data.
	pos := 8
	for hdr == nil || len(data)-pos > 0 {
		if pos+8 > len(data) {
			return nil, ErrTruncated
		}
		length := int(binary.BigEndian.Uint32(data[pos:]))
		chunkType := string(data[pos+4 : pos+8])
		pos += 8
		if pos+length+4 > len(data) {
			return nil, ErrTruncated
		}
		chunk := data[pos : pos+length]
		pos += length + 4 // skip CRC

		switch chunkType {
		case "IHDR":
			h, err := parseIHDR(chunk)
			if err != nil {
				return nil, err
			}
			hdr = h
		case "PLTE":
			palette = chunk
		case "tRNS":
			trns = chunk
		case "IDAT":
			compressed = append(compressed, chunk...)
		case "IEND":
			return decodePixels(hdr, palette, trns, compressed)
		}
	}
	return nil, ErrTruncated
}

func parseIHDR(chunk []byte) (*header, error) {
	if len(chunk) != 13 {
		return nil, fmt.Errorf("png: IHDR length %d", len(chunk))
	}
	h := &header{
		width:     int(binary.BigEndian.Uint32(chunk[0:])),
		height:    int(binary.BigEndian.Uint32(chunk[4:])),
		bitDepth:  chunk[8],
		colorType: chunk[9],
		interlace: chunk[12],
	}
	if h.width <= 0 || h.height <= 0 {
		return nil, fmt.Errorf("png: invalid dimensions %dx%d", h.width, h.height)
	}
	if h.bitDepth != 8 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedDepth, h.bitDepth)
	}
	if h.interlace != 0 {
		return nil, ErrInterlaced
	}
	if bytesPerPixel(h.colorType) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedColorType, h.colorType)
	}
	return h, nil
}

// decodePixels inflates the IDAT payload, reverses the scanline
// filters, and expands the source pixels to premultiplied RGBA.
func decodePixels(hdr *header, palette, trns, compressed []byte) (*glade.DecodedImage, error) {
	if hdr == nil {
		return nil, ErrTruncated
	}
	if hdr.colorType == colorIndexed && len(palette) == 0 {
		return nil, ErrMissingPalette
	}

	raw, err := flate.DecompressZlib(compressed)
	if err != nil {
		return nil, fmt.Errorf("png: inflate image data: %w", err)
	}

	bpp := bytesPerPixel(hdr.colorType)
	stride := hdr.width * bpp
	if len(raw) != (stride+1)*hdr.height {
		return nil, ErrSizeMismatch
	}

	if err := unfilter(raw, stride, bpp, hdr.height); err != nil {
		return nil, err
	}

	out := make([]byte, hdr.width*hdr.height*4)
	for y := 0; y < hdr.height; y++ {
		// Skip the filter byte at the start of each scanline.
		line := raw[y*(stride+1)+1 : (y+1)*(stride+1)]
		dst := out[y*hdr.width*4:]
		if err := expandScanline(dst, line, hdr, palette, trns); err != nil {
			return nil, err
		}
	}
	premultiply(out)

	return &glade.DecodedImage{Width: hdr.width, Height: hdr.height, Data: out}, nil
}

// unfilter reverses the per-scanline filters in place. Each scanline is
// prefixed by one filter-type byte. a is the previous pixel on this
// line, b the pixel above, c the pixel above-left.
func unfilter(raw []byte, stride, bpp, height int) error {
	lineLen := stride + 1
	for y := 0; y < height; y++ {
		line := raw[y*lineLen : (y+1)*lineLen]
		filter := line[0]
		cur := line[1:]
		var prev []byte
		if y > 0 {
			prev = raw[(y-1)*lineLen+1 : y*lineLen]
		}

		switch filter {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < stride; i++ {
				cur[i] += cur[i-bpp]
			}
		case 2: // Up
			if prev != nil {
				for i := 0; i < stride; i++ {
					cur[i] += prev[i]
				}
			}
		case 3: // Average
			for i := 0; i < stride; i++ {
				var a, b int
				if i >= bpp {
					a = int(cur[i-bpp])
				}
				if prev != nil {
					b = int(prev[i])
				}
				cur[i] += byte((a + b) / 2)
			}
		case 4: // Paeth
			for i := 0; i < stride; i++ {
				var a, b, c int
				if i >= bpp {
					a = int(cur[i-bpp])
				}
				if prev != nil {
					b = int(prev[i])
					if i >= bpp {
						c = int(prev[i-bpp])
					}
				}
				cur[i] += paethPredictor(byte(a), byte(b), byte(c))
			}
		default:
			return fmt.Errorf("%w: %d", ErrInvalidFilter, filter)
		}
	}
	return nil
}

// paethPredictor selects the neighbor closest to the linear estimate
// p = a + b - c, breaking ties in the order a, b, c.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// expandScanline converts one unfiltered scanline of source pixels to
// straight-alpha RGBA.
func expandScanline(dst, line []byte, hdr *header, palette, trns []byte) error {
	switch hdr.colorType {
	case colorGray:
		for x := 0; x < hdr.width; x++ {
			g := line[x]
			alpha := byte(255)
			// tRNS for grayscale holds one 16-bit sample value that
			// becomes fully transparent.
			if len(trns) >= 2 && g == trns[1] {
				alpha = 0
			}
			dst[x*4+0] = g
			dst[x*4+1] = g
			dst[x*4+2] = g
			dst[x*4+3] = alpha
		}
	case colorRGB:
		for x := 0; x < hdr.width; x++ {
			dst[x*4+0] = line[x*3+0]
			dst[x*4+1] = line[x*3+1]
			dst[x*4+2] = line[x*3+2]
			dst[x*4+3] = 255
		}
	case colorIndexed:
		for x := 0; x < hdr.width; x++ {
			idx := int(line[x])
			if idx*3+2 >= len(palette) {
				return fmt.Errorf("png: palette index %d out of range", idx)
			}
			dst[x*4+0] = palette[idx*3+0]
			dst[x*4+1] = palette[idx*3+1]
			dst[x*4+2] = palette[idx*3+2]
			// tRNS for indexed color holds per-entry alpha; entries
			// past its end are opaque.
			if idx < len(trns) {
				dst[x*4+3] = trns[idx]
			} else {
				dst[x*4+3] = 255
			}
		}
	case colorGrayAlpha:
		for x := 0; x < hdr.width; x++ {
			g := line[x*2]
			dst[x*4+0] = g
			dst[x*4+1] = g
			dst[x*4+2] = g
			dst[x*4+3] = line[x*2+1]
		}
	case colorRGBA:
		copy(dst[:hdr.width*4], line)
	}
	return nil
}

// premultiply scales RGB by alpha in place, rounding to nearest.
func premultiply(pixels []byte) {
	for i := 0; i < len(pixels); i += 4 {
		a := uint32(pixels[i+3])
		if a == 255 {
			continue
		}
		pixels[i+0] = byte((uint32(pixels[i+0])*a + 127) / 255)
		pixels[i+1] = byte((uint32(pixels[i+1])*a + 127) / 255)
		pixels[i+2] = byte((uint32(pixels[i+2])*a + 127) / 255)
	}
}
