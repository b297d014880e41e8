// Package jpeg decodes baseline JFIF images into RGBA pixel buffers
// for atlas upload. It implements sequential DCT with Huffman coding
// (SOF0): restart intervals, 4:4:4 / 4:2:2 / 4:2:0 chroma subsampling
// with bilinear upsampling, and single-component grayscale.
// Progressive, arithmetic-coded, and 12-bit streams are rejected.
//
// JPEG carries no alpha, so the output is opaque and trivially
// premultiplied.
package jpeg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/glade"
)

var (
	// ErrNoSOI is returned when the data does not start with a JPEG
	// start-of-image marker.
	ErrNoSOI = errors.New("jpeg: missing SOI marker")

	// ErrTruncated is returned when the data ends mid-segment or
	// mid-scan.
	ErrTruncated = errors.New("jpeg: truncated file")

	// ErrProgressive is returned for progressive DCT streams.
	ErrProgressive = errors.New("jpeg: progressive encoding not supported")

	// ErrArithmetic is returned for arithmetic-coded streams.
	ErrArithmetic = errors.New("jpeg: arithmetic coding not supported")

	// ErrUnsupported is returned for frame parameters outside the
	// baseline subset, such as 12-bit precision or CMYK.
	ErrUnsupported = errors.New("jpeg: unsupported frame parameters")

	// ErrBadHuffman is returned when entropy-coded data cannot be
	// decoded against the declared tables.
	ErrBadHuffman = errors.New("jpeg: invalid huffman code")
)

// unzigzag maps coefficient positions in scan (zigzag) order to
// natural row-major block positions.
var unzigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// component is one image plane declared in the frame header.
type component struct {
	id       byte
	h, v     int // sampling factors relative to the other components
	quantSel byte
	dcSel    byte
	acSel    byte
	dcPred   int32

	// Padded to whole MCUs during the scan.
	plane          []byte
	planeW, planeH int
	subW, subH     int // actual sub-image extent before upsampling
}

type decoder struct {
	width, height   int
	comps           []component
	quant           [4][64]int32 // zigzag order, as stored in DQT
	dc, ac          [4]*huffTable
	restartInterval int
	maxH, maxV      int
}

// Decode parses a baseline JPEG file and returns its pixels as opaque
// RGBA.
func Decode(data []byte) (*glade.DecodedImage, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, ErrNoSOI
	}
	d := &decoder{}
	pos := 2
	for {
		// Markers may be preceded by fill bytes.
		for pos < len(data) && data[pos] == 0xFF && pos+1 < len(data) && data[pos+1] == 0xFF {
			pos++
		}
		if pos+2 > len(data) {
			return nil, ErrTruncated
		}
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("jpeg: expected marker, got 0x%02X", data[pos])
		}
		marker := data[pos+1]
		pos += 2

		if marker == 0xD9 { // EOI
			return nil, fmt.Errorf("jpeg: end of image before scan data")
		}
		if pos+2 > len(data) {
			return nil, ErrTruncated
		}
		length := int(binary.BigEndian.Uint16(data[pos:]))
		if length < 2 || pos+length > len(data) {
			return nil, ErrTruncated
		}
		seg := data[pos+2 : pos+length]
		pos += length

		switch {
		case marker == 0xC0: // SOF0 baseline
			if err := d.parseSOF(seg); err != nil {
				return nil, err
			}
		case marker == 0xC2:
			return nil, ErrProgressive
		case marker == 0xC4: // DHT
			if err := d.parseDHT(seg); err != nil {
				return nil, err
			}
		case marker >= 0xC9 && marker <= 0xCB, marker >= 0xCD && marker <= 0xCF:
			return nil, ErrArithmetic
		case marker == 0xC1 || marker == 0xC3 || marker >= 0xC5 && marker <= 0xC7:
			return nil, fmt.Errorf("%w: SOF 0x%02X", ErrUnsupported, marker)
		case marker == 0xDB: // DQT
			if err := d.parseDQT(seg); err != nil {
				return nil, err
			}
		case marker == 0xDD: // DRI
			if len(seg) < 2 {
				return nil, ErrTruncated
			}
			d.restartInterval = int(binary.BigEndian.Uint16(seg))
		case marker == 0xDA: // SOS
			if err := d.parseSOS(seg); err != nil {
				return nil, err
			}
			if err := d.decodeScan(data[pos:]); err != nil {
				return nil, err
			}
			return d.toRGBA(), nil
		default:
			// APPn, COM, and anything else we do not need.
		}
	}
}

func (d *decoder) parseSOF(seg []byte) error {
	if len(seg) < 6 {
		return ErrTruncated
	}
	if seg[0] != 8 {
		return fmt.Errorf("%w: %d-bit precision", ErrUnsupported, seg[0])
	}
	d.height = int(binary.BigEndian.Uint16(seg[1:]))
	d.width = int(binary.BigEndian.Uint16(seg[3:]))
	if d.width == 0 || d.height == 0 {
		return fmt.Errorf("%w: zero dimensions", ErrUnsupported)
	}
	n := int(seg[5])
	if n != 1 && n != 3 {
		return fmt.Errorf("%w: %d components", ErrUnsupported, n)
	}
	if len(seg) < 6+n*3 {
		return ErrTruncated
	}
	d.comps = make([]component, n)
	for i := 0; i < n; i++ {
		c := &d.comps[i]
		c.id = seg[6+i*3]
		c.h = int(seg[7+i*3] >> 4)
		c.v = int(seg[7+i*3] & 15)
		c.quantSel = seg[8+i*3]
		if c.h < 1 || c.h > 4 || c.v < 1 || c.v > 4 || c.quantSel > 3 {
			return fmt.Errorf("%w: component %d sampling %dx%d", ErrUnsupported, c.id, c.h, c.v)
		}
		if c.h > d.maxH {
			d.maxH = c.h
		}
		if c.v > d.maxV {
			d.maxV = c.v
		}
	}
	return nil
}

func (d *decoder) parseDQT(seg []byte) error {
	for len(seg) > 0 {
		precision := seg[0] >> 4
		id := seg[0] & 15
		if id > 3 || precision > 1 {
			return fmt.Errorf("jpeg: invalid quantization table header 0x%02X", seg[0])
		}
		seg = seg[1:]
		if precision == 0 {
			if len(seg) < 64 {
				return ErrTruncated
			}
			for i := 0; i < 64; i++ {
				d.quant[id][i] = int32(seg[i])
			}
			seg = seg[64:]
		} else {
			if len(seg) < 128 {
				return ErrTruncated
			}
			for i := 0; i < 64; i++ {
				d.quant[id][i] = int32(binary.BigEndian.Uint16(seg[i*2:]))
			}
			seg = seg[128:]
		}
	}
	return nil
}

func (d *decoder) parseDHT(seg []byte) error {
	for len(seg) > 0 {
		if len(seg) < 17 {
			return ErrTruncated
		}
		class := seg[0] >> 4
		id := seg[0] & 15
		if class > 1 || id > 3 {
			return fmt.Errorf("jpeg: invalid huffman table header 0x%02X", seg[0])
		}
		total := 0
		for _, c := range seg[1:17] {
			total += int(c)
		}
		if len(seg) < 17+total {
			return ErrTruncated
		}
		table := newHuffTable(seg[1:17], seg[17:17+total])
		if class == 0 {
			d.dc[id] = table
		} else {
			d.ac[id] = table
		}
		seg = seg[17+total:]
	}
	return nil
}

func (d *decoder) parseSOS(seg []byte) error {
	if d.comps == nil {
		return fmt.Errorf("jpeg: SOS before SOF")
	}
	if len(seg) < 1 {
		return ErrTruncated
	}
	n := int(seg[0])
	if n != len(d.comps) {
		return fmt.Errorf("%w: scan covers %d of %d components", ErrUnsupported, n, len(d.comps))
	}
	if len(seg) < 1+n*2 {
		return ErrTruncated
	}
	for i := 0; i < n; i++ {
		id := seg[1+i*2]
		sel := seg[2+i*2]
		found := false
		for j := range d.comps {
			if d.comps[j].id == id {
				d.comps[j].dcSel = sel >> 4
				d.comps[j].acSel = sel & 15
				found = true
			}
		}
		if !found {
			return fmt.Errorf("jpeg: scan references unknown component %d", id)
		}
	}
	return nil
}

// decodeScan runs the baseline MCU loop over the entropy-coded
// segment, writing level-shifted samples into each component plane.
func (d *decoder) decodeScan(data []byte) error {
	mcusX := (d.width + d.maxH*8 - 1) / (d.maxH * 8)
	mcusY := (d.height + d.maxV*8 - 1) / (d.maxV * 8)
	for i := range d.comps {
		c := &d.comps[i]
		c.planeW = mcusX * c.h * 8
		c.planeH = mcusY * c.v * 8
		c.plane = make([]byte, c.planeW*c.planeH)
		c.subW = (d.width*c.h + d.maxH - 1) / d.maxH
		c.subH = (d.height*c.v + d.maxV - 1) / d.maxV
	}

	br := &bitReader{data: data}
	mcu := 0
	rst := 0
	for my := 0; my < mcusY; my++ {
		for mx := 0; mx < mcusX; mx++ {
			if d.restartInterval > 0 && mcu > 0 && mcu%d.restartInterval == 0 {
				if err := br.restart(rst); err != nil {
					return err
				}
				rst++
				for i := range d.comps {
					d.comps[i].dcPred = 0
				}
			}
			for i := range d.comps {
				c := &d.comps[i]
				for v := 0; v < c.v; v++ {
					for h := 0; h < c.h; h++ {
						if err := d.decodeBlock(br, c, mx*c.h+h, my*c.v+v); err != nil {
							return err
						}
					}
				}
			}
			mcu++
		}
	}
	return nil
}

// decodeBlock reads one 8x8 coefficient block, dequantizes it, applies
// the inverse DCT, and stores the level-shifted result at block
// coordinates (bx, by) of the component plane.
func (d *decoder) decodeBlock(br *bitReader, c *component, bx, by int) error {
	dcTab := d.dc[c.dcSel]
	acTab := d.ac[c.acSel]
	if dcTab == nil || acTab == nil {
		return fmt.Errorf("jpeg: missing huffman tables for component %d", c.id)
	}
	quant := &d.quant[c.quantSel]

	var blk [64]int32

	t, err := dcTab.decode(br)
	if err != nil {
		return err
	}
	if t > 11 {
		return ErrBadHuffman
	}
	diff, err := br.receiveExtend(t)
	if err != nil {
		return err
	}
	c.dcPred += diff
	blk[0] = c.dcPred * quant[0]

	for k := 1; k < 64; {
		rs, err := acTab.decode(br)
		if err != nil {
			return err
		}
		run, size := int(rs>>4), rs&15
		if size == 0 {
			if run == 15 { // ZRL: sixteen zeros
				k += 16
				continue
			}
			break // EOB
		}
		k += run
		if k > 63 {
			return ErrBadHuffman
		}
		v, err := br.receiveExtend(size)
		if err != nil {
			return err
		}
		blk[unzigzag[k]] = v * quant[k]
		k++
	}

	idct(&blk)

	for y := 0; y < 8; y++ {
		row := c.plane[(by*8+y)*c.planeW+bx*8:]
		for x := 0; x < 8; x++ {
			row[x] = clampByte(blk[y*8+x] + 128)
		}
	}
	return nil
}

// sample returns the plane value at full-resolution pixel (x, y),
// bilinearly interpolating when the component is subsampled.
func (c *component) sample(x, y, maxH, maxV int) float32 {
	if c.h == maxH && c.v == maxV {
		return float32(c.plane[y*c.planeW+x])
	}
	fx := (float32(x)+0.5)*float32(c.h)/float32(maxH) - 0.5
	fy := (float32(y)+0.5)*float32(c.v)/float32(maxV) - 0.5
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	x0 := int(fx)
	y0 := int(fy)
	if x0 > c.subW-1 {
		x0 = c.subW - 1
	}
	if y0 > c.subH-1 {
		y0 = c.subH - 1
	}
	x1, y1 := x0+1, y0+1
	if x1 > c.subW-1 {
		x1 = c.subW - 1
	}
	if y1 > c.subH-1 {
		y1 = c.subH - 1
	}
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	p00 := float32(c.plane[y0*c.planeW+x0])
	p10 := float32(c.plane[y0*c.planeW+x1])
	p01 := float32(c.plane[y1*c.planeW+x0])
	p11 := float32(c.plane[y1*c.planeW+x1])
	top := p00 + (p10-p00)*tx
	bot := p01 + (p11-p01)*tx
	return top + (bot-top)*ty
}

// toRGBA converts the decoded planes to opaque RGBA. Three-component
// images are YCbCr per JFIF.
func (d *decoder) toRGBA() *glade.DecodedImage {
	out := make([]byte, d.width*d.height*4)
	gray := len(d.comps) == 1
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			i := (y*d.width + x) * 4
			lum := d.comps[0].sample(x, y, d.maxH, d.maxV)
			if gray {
				g := clampByte(int32(lum + 0.5))
				out[i+0] = g
				out[i+1] = g
				out[i+2] = g
			} else {
				cb := d.comps[1].sample(x, y, d.maxH, d.maxV) - 128
				cr := d.comps[2].sample(x, y, d.maxH, d.maxV) - 128
				out[i+0] = clampByte(int32(lum + 1.402*cr + 0.5))
				out[i+1] = clampByte(int32(lum - 0.344136*cb - 0.714136*cr + 0.5))
				out[i+2] = clampByte(int32(lum + 1.772*cb + 0.5))
			}
			out[i+3] = 255
		}
	}
	return &glade.DecodedImage{Width: d.width, Height: d.height, Data: out}
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
