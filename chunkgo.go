package chunkgo

import (
	"github.com/hupe1980/chunkgo/format"
)

// CompressBytes compresses src into a new archive using DefaultParams
// or the params given via WithParams.
func CompressBytes(src []byte, optFns ...Option) ([]byte, error) {
	o := applyOptions(optFns)

	c, err := NewCompressor(o.params, optFns...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.CompressBytes(src)
}

// DecompressBytes reconstructs the original bytes of archive into a
// new buffer. The codec must match the one the archive was produced
// with; see WithCodec.
func DecompressBytes(archive []byte, optFns ...Option) ([]byte, error) {
	d, err := NewDecompressor(optFns...)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	return d.DecompressBytes(archive)
}

// ReadSeekTable parses and validates archive's header, treating the
// slice as the complete archive.
func ReadSeekTable(archive []byte) (*format.SeekTable, error) {
	return format.ParseHeader(archive, uint64(len(archive)))
}
