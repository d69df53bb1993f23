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


package badger

import "github.com/poiesic/lecturegraph/storage"

// NewMemoryRepositories creates in-memory lecture, concept, and triple
// repositories for testing. Caller must close all repos and the backend
// when done.
func NewMemoryRepositories() (storage.LectureRepository, storage.ConceptRepository, storage.TripleRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	lectureRepo, err := NewLectureRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	conceptRepo, err := NewConceptRepository(backend)
	if err != nil {
		lectureRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	tripleRepo, err := NewTripleRepository(backend)
	if err != nil {
		conceptRepo.Close()
		lectureRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return lectureRepo, conceptRepo, tripleRepo, backend, nil
}
