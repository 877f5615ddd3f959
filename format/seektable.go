package format

import (
	"encoding/binary"
	"sort"
)

// SeekTableEntry describes one compressed frame: the contiguous span
// of decompressed space it covers and the span of the archive holding
// its compressed bytes.
type SeekTableEntry struct {
	DecompressedOffset uint64
	DecompressedSize   uint64
	CompressedOffset   uint64
	CompressedSize     uint64
}

// DecompressedEnd returns the first decompressed offset past the
// frame.
func (e SeekTableEntry) DecompressedEnd() uint64 {
	return e.DecompressedOffset + e.DecompressedSize
}

// CompressedEnd returns the first archive offset past the frame's
// compressed bytes.
func (e SeekTableEntry) CompressedEnd() uint64 {
	return e.CompressedOffset + e.CompressedSize
}

func marshalEntry(dst []byte, e SeekTableEntry) {
	binary.LittleEndian.PutUint64(dst[0:8], e.DecompressedOffset)
	binary.LittleEndian.PutUint64(dst[8:16], e.DecompressedSize)
	binary.LittleEndian.PutUint64(dst[16:24], e.CompressedOffset)
	binary.LittleEndian.PutUint64(dst[24:32], e.CompressedSize)
}

func unmarshalEntry(src []byte) SeekTableEntry {
	return SeekTableEntry{
		DecompressedOffset: binary.LittleEndian.Uint64(src[0:8]),
		DecompressedSize:   binary.LittleEndian.Uint64(src[8:16]),
		CompressedOffset:   binary.LittleEndian.Uint64(src[16:24]),
		CompressedSize:     binary.LittleEndian.Uint64(src[24:32]),
	}
}

// SeekTable is a validated, immutable view of an archive's frame
// layout, as produced by ParseHeader. Entries are ordered by both
// decompressed and compressed offset.
type SeekTable struct {
	entries []SeekTableEntry
}

// NumFrames returns the number of frames in the archive.
func (t *SeekTable) NumFrames() int {
	return len(t.entries)
}

// Entries returns the ordered seek table entries. The returned slice
// is shared with the table and must not be modified.
func (t *SeekTable) Entries() []SeekTableEntry {
	return t.entries
}

// SerializedHeaderSize returns the size of the serialized header this
// table was parsed from.
func (t *SeekTable) SerializedHeaderSize() int {
	return MetadataSizeForNumFrames(len(t.entries))
}

// DecompressedSize returns the total decompressed size of the
// archive's data.
func (t *SeekTable) DecompressedSize() uint64 {
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[len(t.entries)-1].DecompressedEnd()
}

// CompressedSize returns the end of the last compressed frame, which
// is the smallest file length that can hold the archive. It includes
// the header and any gaps between frames.
func (t *SeekTable) CompressedSize() uint64 {
	if len(t.entries) == 0 {
		return uint64(HeaderPrefixSize)
	}
	return t.entries[len(t.entries)-1].CompressedEnd()
}

// EntryForDecompressedOffset returns the index of the frame covering
// the given decompressed offset. Decompressed space is contiguous, so
// the lookup succeeds for every offset below DecompressedSize.
func (t *SeekTable) EntryForDecompressedOffset(offset uint64) (int, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return offset < t.entries[i].DecompressedEnd()
	})
	if i >= len(t.entries) {
		return 0, false
	}
	return i, true
}

// EntryForCompressedOffset returns the index of the frame whose
// compressed bytes cover the given archive offset. Offsets inside the
// header or inside a gap between frames resolve to no frame.
func (t *SeekTable) EntryForCompressedOffset(offset uint64) (int, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return offset < t.entries[i].CompressedEnd()
	})
	if i >= len(t.entries) || offset < t.entries[i].CompressedOffset {
		return 0, false
	}
	return i, true
}
