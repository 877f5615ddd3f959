package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/chunkgo/errdefs"
)

// ParseHeader parses and fully validates a serialized archive header.
// data must hold at least the complete header (prefix plus declared
// seek table); trailing bytes are ignored. fileLength is the total
// length of the archive the header belongs to and bounds the
// compressed frame ranges.
//
// ParseHeader performs no I/O and does not retain data. On success
// the returned table satisfies every format invariant:
//
//   - the first entry starts at decompressed offset zero
//   - decompressed space is contiguous
//   - compressed ranges are ordered, non-overlapping, and start at or
//     after the end of the header
//   - every entry has nonzero sizes and lies within fileLength
func ParseHeader(data []byte, fileLength uint64) (*SeekTable, error) {
	if len(data) < HeaderPrefixSize {
		return nil, fmt.Errorf("%w: header needs at least %d bytes, got %d",
			errdefs.ErrInvalidArgs, HeaderPrefixSize, len(data))
	}

	if [8]byte(data[magicOffset:versionOffset]) != archiveMagic {
		return nil, fmt.Errorf("%w: bad archive magic", errdefs.ErrDataIntegrity)
	}
	if v := binary.LittleEndian.Uint16(data[versionOffset:reserved1Off]); v != Version {
		return nil, fmt.Errorf("%w: unsupported archive version %d", errdefs.ErrDataIntegrity, v)
	}
	if err := checkReservedZero(data); err != nil {
		return nil, err
	}

	numFrames := binary.LittleEndian.Uint32(data[numFramesOff:checksumOffset])
	if numFrames > MaxFrames {
		return nil, fmt.Errorf("%w: frame count %d exceeds maximum %d",
			errdefs.ErrDataIntegrity, numFrames, MaxFrames)
	}

	headerSize := MetadataSizeForNumFrames(int(numFrames))
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: header declares %d frames (%d bytes) but only %d bytes given",
			errdefs.ErrInvalidArgs, numFrames, headerSize, len(data))
	}
	if fileLength < uint64(headerSize) {
		return nil, fmt.Errorf("%w: file length %d cannot hold %d byte header",
			errdefs.ErrDataIntegrity, fileLength, headerSize)
	}

	stored := binary.LittleEndian.Uint32(data[checksumOffset:reserved2Off])
	if computed := headerChecksum(data[:headerSize]); computed != stored {
		return nil, fmt.Errorf("parsing archive header: %w",
			&ChecksumMismatchError{Expected: stored, Actual: computed})
	}

	entries := make([]SeekTableEntry, numFrames)
	for i := range entries {
		off := HeaderPrefixSize + i*EntrySize
		entries[i] = unmarshalEntry(data[off : off+EntrySize])
	}
	if err := validateEntries(entries, uint64(headerSize), fileLength); err != nil {
		return nil, err
	}

	return &SeekTable{entries: entries}, nil
}

func checkReservedZero(data []byte) error {
	reserved := [3][]byte{
		data[reserved1Off:numFramesOff],
		data[reserved2Off:reserved3Off],
		data[reserved3Off:HeaderPrefixSize],
	}
	for _, r := range reserved {
		for _, b := range r {
			if b != 0 {
				return fmt.Errorf("%w: nonzero reserved header field", errdefs.ErrDataIntegrity)
			}
		}
	}
	return nil
}

// validateEntries checks the seek table invariants over an ordered
// entry slice. All arithmetic guards against uint64 wraparound before
// relying on sums.
func validateEntries(entries []SeekTableEntry, headerSize, fileLength uint64) error {
	for i, e := range entries {
		if e.DecompressedSize == 0 || e.CompressedSize == 0 {
			return fmt.Errorf("%w: entry %d has zero size", errdefs.ErrDataIntegrity, i)
		}
		if e.DecompressedSize > math.MaxUint64-e.DecompressedOffset {
			return fmt.Errorf("%w: entry %d decompressed range overflows", errdefs.ErrDataIntegrity, i)
		}
		if e.CompressedSize > fileLength || e.CompressedOffset > fileLength-e.CompressedSize {
			return fmt.Errorf("%w: entry %d compressed range [%d, %d) exceeds file length %d",
				errdefs.ErrDataIntegrity, i, e.CompressedOffset, e.CompressedOffset+e.CompressedSize, fileLength)
		}

		if i == 0 {
			if e.DecompressedOffset != 0 {
				return fmt.Errorf("%w: first entry starts at decompressed offset %d, want 0",
					errdefs.ErrDataIntegrity, e.DecompressedOffset)
			}
			if e.CompressedOffset < headerSize {
				return fmt.Errorf("%w: first entry compressed offset %d overlaps %d byte header",
					errdefs.ErrDataIntegrity, e.CompressedOffset, headerSize)
			}
			continue
		}

		prev := entries[i-1]
		if e.DecompressedOffset != prev.DecompressedEnd() {
			return fmt.Errorf("%w: entry %d decompressed offset %d not contiguous with previous end %d",
				errdefs.ErrDataIntegrity, i, e.DecompressedOffset, prev.DecompressedEnd())
		}
		if e.CompressedOffset < prev.CompressedEnd() {
			return fmt.Errorf("%w: entry %d compressed offset %d overlaps previous end %d",
				errdefs.ErrDataIntegrity, i, e.CompressedOffset, prev.CompressedEnd())
		}
	}
	return nil
}
