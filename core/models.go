package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that re-ingesting the same
// source material yields the same identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Modality identifies the source modality of a segment or mention.
type Modality int

const (
	// ModalityText represents transcript or slide text.
	ModalityText Modality = iota + 1
	// ModalityImage represents a slide or PDF page image.
	ModalityImage
	// ModalityAudioText represents text derived from audio transcription.
	ModalityAudioText
	// ModalityVideoTimestamp represents a timestamped video reference.
	ModalityVideoTimestamp
)

// String returns the modality name used in exports and logs.
func (m Modality) String() string {
	switch m {
	case ModalityText:
		return "text"
	case ModalityImage:
		return "image"
	case ModalityAudioText:
		return "audio-derived-text"
	case ModalityVideoTimestamp:
		return "video-timestamp"
	default:
		return "unknown"
	}
}

// TimeBased reports whether the modality's offsets are seconds rather than pages.
func (m Modality) TimeBased() bool {
	return m != ModalityImage
}

// LectureState is the pipeline state of a lecture.
// States are linear with no cycles; Failed and Cancelled are absorbing.
type LectureState int

const (
	// StateIngested means the lecture has been registered with its raw media references.
	StateIngested LectureState = iota + 1
	// StateSegmented means segments have been created for all modalities.
	StateSegmented
	// StateMentionsExtracted means all segments have produced their candidate mentions.
	StateMentionsExtracted
	// StateAligned means mentions have been resolved to concepts and evidence attached.
	StateAligned
	// StateEnriched means enrichment has completed (possibly partially) for the lecture's concepts.
	StateEnriched
	// StateAssembled means the lecture's triple set has been produced and validated.
	StateAssembled
	// StateExported means the lecture's graph has been written to the export.
	StateExported
	// StateFailed means a required stage exhausted its retry budget.
	StateFailed
	// StateCancelled means the run was cancelled mid-pipeline.
	// Concepts registered before cancellation are retained.
	StateCancelled
)

// String returns the state name used in exports and logs.
func (s LectureState) String() string {
	switch s {
	case StateIngested:
		return "INGESTED"
	case StateSegmented:
		return "SEGMENTED"
	case StateMentionsExtracted:
		return "MENTIONS_EXTRACTED"
	case StateAligned:
		return "ALIGNED"
	case StateEnriched:
		return "ENRICHED"
	case StateAssembled:
		return "ASSEMBLED"
	case StateExported:
		return "EXPORTED"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state is absorbing.
func (s LectureState) Terminal() bool {
	return s == StateFailed || s == StateCancelled
}

// Lecture is one unit of ingested educational material.
// Identity is immutable after creation; only state transitions and warnings mutate it.
type Lecture struct {
	Id          ID
	Title       string
	Language    string
	SegmentIds  []ID
	State       LectureState
	StateReason string   // populated on Failed/Cancelled
	Warnings    []string // degradable failures recorded during the run
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Identity returns the deterministic content identity of the lecture,
// used to derive its ID. Re-ingesting the same material yields the same ID.
func (l *Lecture) Identity() string {
	return "(" + l.Title + "," + l.Language + ")"
}

// Segment is one modality extract of a lecture.
// Never mutated after creation; the raw payload lives in external storage.
type Segment struct {
	Id         ID
	LectureId  ID
	Modality   Modality
	Start      float64 // seconds for time-based modalities, page number for page-based
	End        float64
	PayloadRef string // reference into external storage, not owned
	InsertedAt time.Time
}

// Identity returns the deterministic content identity of the segment,
// used to derive its ID.
func (s *Segment) Identity() string {
	return "(" + s.Modality.String() + "," + s.PayloadRef + ")"
}

// Mention is a candidate concept occurrence in one segment.
// Mentions are ephemeral: produced by segment processing, consumed by alignment.
type Mention struct {
	SegmentId  ID
	LectureId  ID
	Surface    string
	Modality   Modality
	Confidence float64
	SpanStart  float64
	SpanEnd    float64
}

// Evidence records a concept occurrence against a segment.
type Evidence struct {
	SegmentId ID
	LectureId ID
	Modality  Modality
	SpanStart float64
	SpanEnd   float64
}

// Enrichment is the machine-generated explanation payload of a concept.
type Enrichment struct {
	Explanation string
	Sources     []string // attribution, e.g. "wikipedia", "conceptnet", "llm"
	Complete    bool     // false when some enrichment source failed
	EnrichedAt  time.Time
}

// Concept is a canonical, deduplicated knowledge-graph node.
// Created on first sighting of a new canonical key and subsequently only
// appended to: new synonyms, new evidence, enrichment fill-in. One canonical
// key maps to exactly one Concept ID for the lifetime of the registry.
type Concept struct {
	Id           ID
	CanonicalKey string
	Label        string
	Language     string
	Synonyms     []string
	Evidence     []Evidence
	Enrichment   Enrichment
	AssetRefs    []string // opaque references to generated audio assets
	CreatedSeq   uint64   // registry creation order, used for deterministic tie-breaks
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// HasEvidence reports whether an identical evidence record is already attached.
// Keeps re-ingestion idempotent.
func (c *Concept) HasEvidence(e Evidence) bool {
	for _, existing := range c.Evidence {
		if existing == e {
			return true
		}
	}
	return false
}

// HasSynonym reports whether the label is already recorded as a synonym.
func (c *Concept) HasSynonym(label string) bool {
	for _, s := range c.Synonyms {
		if s == label {
			return true
		}
	}
	return false
}

// HasAsset reports whether the asset reference is already recorded.
func (c *Concept) HasAsset(ref string) bool {
	for _, a := range c.AssetRefs {
		if a == ref {
			return true
		}
	}
	return false
}

// EvidenceCountForLecture returns how many evidence records the concept has
// within the given lecture. Used by the alignment tie-break.
func (c *Concept) EvidenceCountForLecture(lectureID ID) int {
	count := 0
	for _, e := range c.Evidence {
		if e.LectureId == lectureID {
			count++
		}
	}
	return count
}

// Alignment associates a set of mentions (possibly spanning modalities) with
// one concept. Produced and consumed within one lecture's assembly pass.
type Alignment struct {
	ConceptId ID
	Mentions  []Mention
}

// Triple is a subject-predicate-object edge in the exported knowledge graph.
// Exactly one of ObjectId and Literal is set.
type Triple struct {
	Subject   ID
	Predicate string
	ObjectId  ID
	Literal   string
}
