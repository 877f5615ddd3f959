// Package format implements the chunked archive binary format: the
// fixed header prefix, the seek table that maps decompressed space to
// compressed frames, and the reader/writer used to validate and
// produce archive headers.
//
// Layout (all integers little-endian):
//
//	offset  size  field
//	0       8     magic
//	8       2     version
//	10      2     reserved, zero
//	12      4     frame count
//	16      4     CRC32 (IEEE) of the header with this field zeroed
//	20      4     reserved, zero
//	24      8     reserved, zero
//	32      32*N  seek table entries
//
// Compressed frame data follows at the offsets the entries declare.
// Byte ranges not covered by any entry are ignored by readers, so
// producers may leave gaps between frames.
package format

import "encoding/binary"

// archiveMagic identifies a chunked archive. The leading non-ASCII
// byte and the embedded CR/LF/EOF bytes catch text-mode mangling, in
// the style of the PNG signature.
var archiveMagic = [8]byte{0x89, 'C', 'H', 'N', 'K', 0x0D, 0x0A, 0x1A}

const (
	// Version is the only supported format version. Parsing rejects
	// every other value; there is no forward compatibility.
	Version uint16 = 1

	// HeaderPrefixSize is the size of the fixed header prefix that
	// precedes the seek table.
	HeaderPrefixSize = 32

	// EntrySize is the serialized size of one seek table entry.
	EntrySize = 32

	// MaxFrames is the largest frame count a header may declare. It
	// keeps the full header within MaxHeaderSize.
	MaxFrames = 1023

	// MaxHeaderSize is the serialized size of a header carrying
	// MaxFrames entries (32 KiB).
	MaxHeaderSize = HeaderPrefixSize + MaxFrames*EntrySize
)

// Field offsets within the header prefix.
const (
	magicOffset    = 0
	versionOffset  = 8
	reserved1Off   = 10
	numFramesOff   = 12
	checksumOffset = 16
	reserved2Off   = 20
	reserved3Off   = 24
)

// MetadataSizeForNumFrames returns the serialized header size for an
// archive with numFrames seek table entries.
func MetadataSizeForNumFrames(numFrames int) int {
	return HeaderPrefixSize + numFrames*EntrySize
}

// NumFramesForDataSize returns the number of frames needed to cover
// dataLen bytes of decompressed data at the given chunk size. Zero
// input needs zero frames.
func NumFramesForDataSize(dataLen, chunkSize int) int {
	if dataLen <= 0 || chunkSize <= 0 {
		return 0
	}
	return (dataLen + chunkSize - 1) / chunkSize
}

// IsChunkedArchive reports whether data begins with the magic and
// version of a chunked archive. It is a cheap sniff for format
// detection and implies nothing about the integrity of the rest of
// the header; use ParseHeader for validation.
func IsChunkedArchive(data []byte) bool {
	if len(data) < numFramesOff {
		return false
	}
	if [8]byte(data[magicOffset:versionOffset]) != archiveMagic {
		return false
	}
	return binary.LittleEndian.Uint16(data[versionOffset:reserved1Off]) == Version
}
