package flate

import "errors"

// Zlib wrapper errors.
var (
	// ErrInvalidZlibHeader is returned when the CMF/FLG pair fails its
	// checksum or names an unknown compression method.
	ErrInvalidZlibHeader = errors.New("flate: invalid zlib header")

	// ErrPresetDictionary is returned for streams requiring a preset
	// dictionary, which PNG never uses.
	ErrPresetDictionary = errors.New("flate: preset dictionary not supported")
)

// DecompressZlib unwraps an RFC 1950 zlib stream and inflates its
// DEFLATE payload. The trailing Adler-32 checksum is not verified; the
// PNG layer above already rejects structurally damaged files via chunk
// framing, and the scanline filters fail loudly on garbage output.
func DecompressZlib(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrInvalidZlibHeader
	}
	cmf, flg := data[0], data[1]

	// CM must be 8 (deflate); the FCHECK bits make CMF*256+FLG a
	// multiple of 31.
	if cmf&0x0F != 8 {
		return nil, ErrInvalidZlibHeader
	}
	if (uint32(cmf)*256+uint32(flg))%31 != 0 {
		return nil, ErrInvalidZlibHeader
	}
	if flg&0x20 != 0 {
		return nil, ErrPresetDictionary
	}

	return Inflate(data[2:])
}
