package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/chunkgo/errdefs"
)

// HeaderWriter incrementally builds a serialized archive header in a
// caller-supplied buffer. Entries are added in frame order and the
// header becomes valid only once Finalize has written the prefix and
// checksum; until then the buffer contents are undefined.
//
// The writer enforces the same invariants ParseHeader checks, so a
// finalized header always parses.
type HeaderWriter struct {
	dst       []byte
	numFrames int
	added     int
	prev      SeekTableEntry
	finalized bool
}

// NewHeaderWriter creates a writer for a header with exactly
// numFrames seek table entries, serialized into dst. dst must hold at
// least MetadataSizeForNumFrames(numFrames) bytes.
func NewHeaderWriter(dst []byte, numFrames int) (*HeaderWriter, error) {
	if numFrames < 0 || numFrames > MaxFrames {
		return nil, fmt.Errorf("%w: frame count %d outside [0, %d]",
			errdefs.ErrInvalidArgs, numFrames, MaxFrames)
	}
	if size := MetadataSizeForNumFrames(numFrames); len(dst) < size {
		return nil, fmt.Errorf("%w: header for %d frames needs %d bytes, got %d",
			errdefs.ErrBufferTooSmall, numFrames, size, len(dst))
	}
	return &HeaderWriter{dst: dst, numFrames: numFrames}, nil
}

// AddEntry appends the next frame's entry. Entries must arrive in
// frame order: contiguous in decompressed space, non-overlapping and
// ascending in compressed space, with nonzero sizes, the first one
// starting at decompressed offset zero and at or after the end of the
// header in compressed space.
func (w *HeaderWriter) AddEntry(e SeekTableEntry) error {
	if w.finalized {
		return fmt.Errorf("%w: header already finalized", errdefs.ErrBadState)
	}
	if w.added == w.numFrames {
		return fmt.Errorf("%w: seek table already holds %d entries", errdefs.ErrBadState, w.numFrames)
	}
	if err := w.checkEntry(e); err != nil {
		return err
	}

	off := HeaderPrefixSize + w.added*EntrySize
	marshalEntry(w.dst[off:off+EntrySize], e)
	w.prev = e
	w.added++
	return nil
}

func (w *HeaderWriter) checkEntry(e SeekTableEntry) error {
	if e.DecompressedSize == 0 || e.CompressedSize == 0 {
		return fmt.Errorf("%w: entry %d has zero size", errdefs.ErrInvalidArgs, w.added)
	}
	if e.DecompressedSize > math.MaxUint64-e.DecompressedOffset ||
		e.CompressedSize > math.MaxUint64-e.CompressedOffset {
		return fmt.Errorf("%w: entry %d range overflows", errdefs.ErrInvalidArgs, w.added)
	}

	if w.added == 0 {
		if e.DecompressedOffset != 0 {
			return fmt.Errorf("%w: first entry decompressed offset %d, want 0",
				errdefs.ErrInvalidArgs, e.DecompressedOffset)
		}
		if headerSize := uint64(MetadataSizeForNumFrames(w.numFrames)); e.CompressedOffset < headerSize {
			return fmt.Errorf("%w: first entry compressed offset %d overlaps %d byte header",
				errdefs.ErrInvalidArgs, e.CompressedOffset, headerSize)
		}
		return nil
	}

	if e.DecompressedOffset != w.prev.DecompressedEnd() {
		return fmt.Errorf("%w: entry %d decompressed offset %d not contiguous with previous end %d",
			errdefs.ErrInvalidArgs, w.added, e.DecompressedOffset, w.prev.DecompressedEnd())
	}
	if e.CompressedOffset < w.prev.CompressedEnd() {
		return fmt.Errorf("%w: entry %d compressed offset %d overlaps previous end %d",
			errdefs.ErrInvalidArgs, w.added, e.CompressedOffset, w.prev.CompressedEnd())
	}
	return nil
}

// Finalize writes the header prefix and checksum. It fails if fewer
// than the declared number of entries have been added. After a
// successful Finalize the writer rejects further mutation.
func (w *HeaderWriter) Finalize() error {
	if w.finalized {
		return fmt.Errorf("%w: header already finalized", errdefs.ErrBadState)
	}
	if w.added != w.numFrames {
		return fmt.Errorf("%w: seek table has %d of %d entries",
			errdefs.ErrBadState, w.added, w.numFrames)
	}

	size := MetadataSizeForNumFrames(w.numFrames)
	h := w.dst[:size]
	copy(h[magicOffset:versionOffset], archiveMagic[:])
	binary.LittleEndian.PutUint16(h[versionOffset:reserved1Off], Version)
	binary.LittleEndian.PutUint16(h[reserved1Off:numFramesOff], 0)
	binary.LittleEndian.PutUint32(h[numFramesOff:checksumOffset], uint32(w.numFrames))
	binary.LittleEndian.PutUint32(h[reserved2Off:reserved3Off], 0)
	binary.LittleEndian.PutUint64(h[reserved3Off:HeaderPrefixSize], 0)
	binary.LittleEndian.PutUint32(h[checksumOffset:reserved2Off], headerChecksum(h))

	w.finalized = true
	return nil
}

// Finalized reports whether Finalize has completed successfully.
func (w *HeaderWriter) Finalized() bool {
	return w.finalized
}
