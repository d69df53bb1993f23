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


package storage

import (
	"github.com/poiesic/lecturegraph/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalLecture serializes a Lecture to bytes.
func MarshalLecture(lecture *core.Lecture) []byte {
	buf := make([]byte, core.LectureMUS.Size(*lecture))
	core.LectureMUS.Marshal(*lecture, buf)
	return buf
}

// UnmarshalLecture deserializes a Lecture from bytes.
func UnmarshalLecture(data []byte) (*core.Lecture, error) {
	lecture, _, err := core.LectureMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

// MarshalSegment serializes a Segment to bytes.
func MarshalSegment(segment *core.Segment) []byte {
	buf := make([]byte, core.SegmentMUS.Size(*segment))
	core.SegmentMUS.Marshal(*segment, buf)
	return buf
}

// UnmarshalSegment deserializes a Segment from bytes.
func UnmarshalSegment(data []byte) (*core.Segment, error) {
	segment, _, err := core.SegmentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &segment, nil
}

// MarshalConcept serializes a Concept to bytes.
func MarshalConcept(concept *core.Concept) []byte {
	buf := make([]byte, core.ConceptMUS.Size(*concept))
	core.ConceptMUS.Marshal(*concept, buf)
	return buf
}

// UnmarshalConcept deserializes a Concept from bytes.
func UnmarshalConcept(data []byte) (*core.Concept, error) {
	concept, _, err := core.ConceptMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &concept, nil
}

// MarshalTriple serializes a Triple to bytes.
func MarshalTriple(triple *core.Triple) []byte {
	buf := make([]byte, core.TripleMUS.Size(*triple))
	core.TripleMUS.Marshal(*triple, buf)
	return buf
}

// UnmarshalTriple deserializes a Triple from bytes.
func UnmarshalTriple(data []byte) (*core.Triple, error) {
	triple, _, err := core.TripleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &triple, nil
}
