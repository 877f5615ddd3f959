package format

import (
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/chunkgo/errdefs"
)

// Header integrity uses CRC32 (IEEE polynomial): fast, hardware
// accelerated on modern CPUs, and good at catching storage corruption.
//
// Note: CRC32 is NOT cryptographically secure. It detects accidental
// corruption, not tampering.

// CRC32Table is the IEEE polynomial table for checksum computation.
var CRC32Table = crc32.MakeTable(crc32.IEEE)

// Checksum calculates the CRC32 checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// headerChecksum computes the CRC32 of a serialized header, treating
// the checksum field itself as zero. header must span the full
// metadata size (prefix plus entries).
func headerChecksum(header []byte) uint32 {
	var zeroed [4]byte
	c := crc32.Update(0, CRC32Table, header[:checksumOffset])
	c = crc32.Update(c, CRC32Table, zeroed[:])
	return crc32.Update(c, CRC32Table, header[reserved2Off:])
}

// ChecksumMismatchError is returned when header checksum verification
// fails. It unwraps to errdefs.ErrDataIntegrity.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return errdefs.ErrDataIntegrity }

// IsChecksumMismatch returns true if err is a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}
