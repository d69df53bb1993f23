package badger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/poiesic/lecturegraph/core"
)

// Key prefixes for different data types
const (
	lectureRecordPrefix  = "lecrec"
	segmentRecordPrefix  = "segrec"
	segmentLecturePrefix = "seglec"
	conceptRecordPrefix  = "conrec"
	conceptKeyPrefix     = "conkey"
	conceptCreateSeq     = "conrecseq"
	tripleRecordPrefix   = "trirec"
)

// makeLectureKey generates a key for a lecture by ID.
func makeLectureKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", lectureRecordPrefix, id))
}

// makeSegmentKey generates a key for a segment by ID.
func makeSegmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", segmentRecordPrefix, id))
}

// makeSegmentLectureKey generates a composite key for the segment-by-lecture
// index. Format: prefix:lectureID:startBits:segmentID
//
// Start offsets are non-negative, so the raw IEEE-754 bits sort in the same
// order as the values and lexicographic iteration yields start order.
func makeSegmentLectureKey(lectureID core.ID, start float64, segmentID core.ID) []byte {
	prefix := segmentLecturePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // lectureID + startBits + segmentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(lectureID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], math.Float64bits(start))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(segmentID))
	return buf
}

// makePartialSegmentLectureKey generates a partial key for iterating all
// segments of a lecture. Format: prefix:lectureID
func makePartialSegmentLectureKey(lectureID core.ID) []byte {
	prefix := segmentLecturePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(lectureID))
	return buf
}

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conceptRecordPrefix, id))
}

// makeConceptCanonicalKey generates an index key for concept lookup by
// canonical key. Format: prefix:canonicalKey
func makeConceptCanonicalKey(canonicalKey string) []byte {
	return []byte(conceptKeyPrefix + ":" + canonicalKey)
}

// makeTripleKey generates a composite key for a triple within a lecture's
// graph. Format: prefix:lectureID:position
func makeTripleKey(lectureID core.ID, position uint64) []byte {
	prefix := tripleRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(lectureID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], position)
	return buf
}

// makePartialTripleKey generates a partial key for iterating a lecture's
// triples. Format: prefix:lectureID
func makePartialTripleKey(lectureID core.ID) []byte {
	prefix := tripleRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(lectureID))
	return buf
}
