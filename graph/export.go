package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/lecturegraph/core"
)

// EvidenceRecord is the export shape of one evidence attachment.
type EvidenceRecord struct {
	SegmentId uint64  `json:"segment_id"`
	LectureId uint64  `json:"lecture_id"`
	Modality  string  `json:"modality"`
	SpanStart float64 `json:"span_start"`
	SpanEnd   float64 `json:"span_end"`
}

// ConceptRecord is the export shape of one concept node.
type ConceptRecord struct {
	Id          uint64           `json:"id"`
	Label       string           `json:"label"`
	Language    string           `json:"language"`
	Synonyms    []string         `json:"synonyms,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	Sources     []string         `json:"sources,omitempty"`
	Complete    bool             `json:"complete"`
	Evidence    []EvidenceRecord `json:"evidence,omitempty"`
	Assets      []string         `json:"assets,omitempty"`
}

// TripleRecord is the export shape of one triple. Object and Literal are
// mutually exclusive.
type TripleRecord struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object,omitempty"`
	Literal   string `json:"literal,omitempty"`
}

// LectureRecord is the export shape of one lecture and its triple set.
type LectureRecord struct {
	Id       uint64         `json:"id"`
	Title    string         `json:"title"`
	Language string         `json:"language"`
	State    string         `json:"state"`
	Complete bool           `json:"complete"`
	Warnings []string       `json:"warnings,omitempty"`
	Triples  []TripleRecord `json:"triples"`
}

// CorpusExport is the full JSON export document.
type CorpusExport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Concepts    []ConceptRecord `json:"concepts"`
	Lectures    []LectureRecord `json:"lectures"`
}

// BuildConceptRecord converts a concept into its export shape.
func BuildConceptRecord(concept *core.Concept) ConceptRecord {
	record := ConceptRecord{
		Id:          uint64(concept.Id),
		Label:       concept.Label,
		Language:    concept.Language,
		Synonyms:    concept.Synonyms,
		Explanation: concept.Enrichment.Explanation,
		Sources:     concept.Enrichment.Sources,
		Complete:    concept.Enrichment.Complete,
		Assets:      concept.AssetRefs,
	}
	for _, evidence := range concept.Evidence {
		record.Evidence = append(record.Evidence, EvidenceRecord{
			SegmentId: uint64(evidence.SegmentId),
			LectureId: uint64(evidence.LectureId),
			Modality:  evidence.Modality.String(),
			SpanStart: evidence.SpanStart,
			SpanEnd:   evidence.SpanEnd,
		})
	}
	return record
}

// BuildLectureRecord converts a lecture and its assembled triples into the
// export shape. The lecture is complete when its run recorded no warnings
// and every evidenced concept's enrichment is complete.
func BuildLectureRecord(lecture *core.Lecture, concepts []*core.Concept, triples []core.Triple) LectureRecord {
	complete := len(lecture.Warnings) == 0
	for _, concept := range concepts {
		if concept.EvidenceCountForLecture(lecture.Id) == 0 {
			continue
		}
		if !concept.Enrichment.Complete {
			complete = false
			break
		}
	}

	record := LectureRecord{
		Id:       uint64(lecture.Id),
		Title:    lecture.Title,
		Language: lecture.Language,
		State:    lecture.State.String(),
		Complete: complete,
		Warnings: lecture.Warnings,
		Triples:  make([]TripleRecord, 0, len(triples)),
	}
	for _, triple := range triples {
		tr := TripleRecord{
			Subject:   ConceptRef(triple.Subject),
			Predicate: triple.Predicate,
			Literal:   triple.Literal,
		}
		if triple.Literal == "" {
			switch triple.Predicate {
			case AppearsIn:
				tr.Object = fmt.Sprintf("segment:%d", triple.ObjectId)
			default:
				tr.Object = ConceptRef(triple.ObjectId)
			}
		}
		record.Triples = append(record.Triples, tr)
	}
	return record
}

// WriteExport writes the export document as indented JSON.
func WriteExport(w io.Writer, export *CorpusExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(export)
}
