package jpeg

import "math"

// cosTable[u][x] holds C(u)/2 * cos((2x+1)*u*pi/16), the separable
// basis of the 8-point inverse DCT. C(0) is 1/sqrt(2), C(u>0) is 1.
var cosTable [8][8]float64

func init() {
	for u := 0; u < 8; u++ {
		c := 1.0
		if u == 0 {
			c = math.Sqrt2 / 2
		}
		for x := 0; x < 8; x++ {
			cosTable[u][x] = c / 2 * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
}

// idct performs the 8x8 inverse DCT in place as two separable
// 1-D passes. A block holding only a DC coefficient comes out uniform
// at DC/8.
func idct(blk *[64]int32) {
	var tmp [64]float64
	for y := 0; y < 8; y++ {
		row := blk[y*8 : y*8+8]
		for x := 0; x < 8; x++ {
			var s float64
			for u := 0; u < 8; u++ {
				s += cosTable[u][x] * float64(row[u])
			}
			tmp[y*8+x] = s
		}
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var s float64
			for v := 0; v < 8; v++ {
				s += cosTable[v][y] * tmp[v*8+x]
			}
			blk[y*8+x] = int32(math.Round(s))
		}
	}
}
