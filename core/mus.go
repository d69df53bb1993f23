// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-composed MUS serializers for the persisted domain types. All values
// stored in BadgerDB go through these; the export format is JSON and does
// not use them.

// MUS serializer instances.
var (
	IDMUS      = idMUS{}
	LectureMUS = lectureMUS{}
	SegmentMUS = segmentMUS{}
	ConceptMUS = conceptMUS{}
	TripleMUS  = tripleMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// float64 fields travel as their IEEE 754 bits.

func marshalFloat(v float64, bs []byte) int {
	return varint.Uint64.Marshal(math.Float64bits(v), bs)
}

func unmarshalFloat(bs []byte) (float64, int, error) {
	bits, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(bits), n, err
}

func sizeFloat(v float64) int {
	return varint.Uint64.Size(math.Float64bits(v))
}

// time.Time fields travel as microsecond Unix timestamps.

func marshalTime(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func sizeTime(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

func marshalStrings(v []string, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	var v []string
	for i := uint64(0); i < length; i++ {
		s, sn, err := ord.String.Unmarshal(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
		v = append(v, s)
	}
	return v, n, nil
}

func sizeStrings(v []string) int {
	size := varint.Uint64.Size(uint64(len(v)))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalIDs(v []ID, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, id := range v {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func unmarshalIDs(bs []byte) ([]ID, int, error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	var v []ID
	for i := uint64(0); i < length; i++ {
		id, idn, err := IDMUS.Unmarshal(bs[n:])
		n += idn
		if err != nil {
			return nil, n, err
		}
		v = append(v, id)
	}
	return v, n, nil
}

func sizeIDs(v []ID) int {
	size := varint.Uint64.Size(uint64(len(v)))
	for _, id := range v {
		size += IDMUS.Size(id)
	}
	return size
}

type lectureMUS struct{}

func (lectureMUS) Marshal(v Lecture, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += marshalIDs(v.SegmentIds, bs[n:])
	n += varint.Int.Marshal(int(v.State), bs[n:])
	n += ord.String.Marshal(v.StateReason, bs[n:])
	n += marshalStrings(v.Warnings, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (lectureMUS) Unmarshal(bs []byte) (v Lecture, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Language, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.SegmentIds, m, err = unmarshalIDs(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	var state int
	if state, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	v.State = LectureState(state)
	n += m
	if v.StateReason, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Warnings, m, err = unmarshalStrings(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (lectureMUS) Size(v Lecture) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Title) +
		ord.String.Size(v.Language) +
		sizeIDs(v.SegmentIds) +
		varint.Int.Size(int(v.State)) +
		ord.String.Size(v.StateReason) +
		sizeStrings(v.Warnings) +
		sizeTime(v.InsertedAt) +
		sizeTime(v.UpdatedAt)
}

type segmentMUS struct{}

func (segmentMUS) Marshal(v Segment, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.LectureId, bs[n:])
	n += varint.Int.Marshal(int(v.Modality), bs[n:])
	n += marshalFloat(v.Start, bs[n:])
	n += marshalFloat(v.End, bs[n:])
	n += ord.String.Marshal(v.PayloadRef, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return n
}

func (segmentMUS) Unmarshal(bs []byte) (v Segment, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.LectureId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	var modality int
	if modality, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	v.Modality = Modality(modality)
	n += m
	if v.Start, m, err = unmarshalFloat(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.End, m, err = unmarshalFloat(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.PayloadRef, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (segmentMUS) Size(v Segment) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.LectureId) +
		varint.Int.Size(int(v.Modality)) +
		sizeFloat(v.Start) +
		sizeFloat(v.End) +
		ord.String.Size(v.PayloadRef) +
		sizeTime(v.InsertedAt)
}

func marshalEvidence(v Evidence, bs []byte) int {
	n := IDMUS.Marshal(v.SegmentId, bs)
	n += IDMUS.Marshal(v.LectureId, bs[n:])
	n += varint.Int.Marshal(int(v.Modality), bs[n:])
	n += marshalFloat(v.SpanStart, bs[n:])
	n += marshalFloat(v.SpanEnd, bs[n:])
	return n
}

func unmarshalEvidence(bs []byte) (v Evidence, n int, err error) {
	var m int
	if v.SegmentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.LectureId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	var modality int
	if modality, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	v.Modality = Modality(modality)
	n += m
	if v.SpanStart, m, err = unmarshalFloat(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.SpanEnd, m, err = unmarshalFloat(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func sizeEvidence(v Evidence) int {
	return IDMUS.Size(v.SegmentId) +
		IDMUS.Size(v.LectureId) +
		varint.Int.Size(int(v.Modality)) +
		sizeFloat(v.SpanStart) +
		sizeFloat(v.SpanEnd)
}

type conceptMUS struct{}

func (conceptMUS) Marshal(v Concept, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.CanonicalKey, bs[n:])
	n += ord.String.Marshal(v.Label, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += marshalStrings(v.Synonyms, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(v.Evidence)), bs[n:])
	for _, e := range v.Evidence {
		n += marshalEvidence(e, bs[n:])
	}
	n += ord.String.Marshal(v.Enrichment.Explanation, bs[n:])
	n += marshalStrings(v.Enrichment.Sources, bs[n:])
	n += ord.Bool.Marshal(v.Enrichment.Complete, bs[n:])
	n += marshalTime(v.Enrichment.EnrichedAt, bs[n:])
	n += marshalStrings(v.AssetRefs, bs[n:])
	n += varint.Uint64.Marshal(v.CreatedSeq, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (conceptMUS) Unmarshal(bs []byte) (v Concept, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.CanonicalKey, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Label, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Language, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Synonyms, m, err = unmarshalStrings(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	var evidenceLen uint64
	if evidenceLen, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	for i := uint64(0); i < evidenceLen; i++ {
		var e Evidence
		if e, m, err = unmarshalEvidence(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Evidence = append(v.Evidence, e)
	}
	if v.Enrichment.Explanation, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Enrichment.Sources, m, err = unmarshalStrings(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Enrichment.Complete, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Enrichment.EnrichedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.AssetRefs, m, err = unmarshalStrings(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.CreatedSeq, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (conceptMUS) Size(v Concept) int {
	size := IDMUS.Size(v.Id) +
		ord.String.Size(v.CanonicalKey) +
		ord.String.Size(v.Label) +
		ord.String.Size(v.Language) +
		sizeStrings(v.Synonyms) +
		varint.Uint64.Size(uint64(len(v.Evidence)))
	for _, e := range v.Evidence {
		size += sizeEvidence(e)
	}
	size += ord.String.Size(v.Enrichment.Explanation) +
		sizeStrings(v.Enrichment.Sources) +
		ord.Bool.Size(v.Enrichment.Complete) +
		sizeTime(v.Enrichment.EnrichedAt) +
		sizeStrings(v.AssetRefs) +
		varint.Uint64.Size(v.CreatedSeq) +
		sizeTime(v.InsertedAt) +
		sizeTime(v.UpdatedAt)
	return size
}

type tripleMUS struct{}

func (tripleMUS) Marshal(v Triple, bs []byte) int {
	n := IDMUS.Marshal(v.Subject, bs)
	n += ord.String.Marshal(v.Predicate, bs[n:])
	n += IDMUS.Marshal(v.ObjectId, bs[n:])
	n += ord.String.Marshal(v.Literal, bs[n:])
	return n
}

func (tripleMUS) Unmarshal(bs []byte) (v Triple, n int, err error) {
	var m int
	if v.Subject, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Predicate, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ObjectId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Literal, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (tripleMUS) Size(v Triple) int {
	return IDMUS.Size(v.Subject) +
		ord.String.Size(v.Predicate) +
		IDMUS.Size(v.ObjectId) +
		ord.String.Size(v.Literal)
}
