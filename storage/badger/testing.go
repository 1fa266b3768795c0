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

import "errors"

// Store bundles every repository over one backend.
type Store struct {
	Backend    *Backend
	Jobs       *JobRepository
	Candidates *CandidateRepository
	Posts      *PostRepository
	Embeddings *EmbeddingRepository
}

// OpenStore opens every repository on backend. Closing the store closes the backend.
func OpenStore(backend *Backend) (*Store, error) {
	s := &Store{Backend: backend}
	var err error
	if s.Jobs, err = NewJobRepository(backend); err != nil {
		return nil, err
	}
	if s.Candidates, err = NewCandidateRepository(backend); err != nil {
		return nil, err
	}
	if s.Posts, err = NewPostRepository(backend); err != nil {
		s.Candidates.Close()
		return nil, err
	}
	if s.Embeddings, err = NewEmbeddingRepository(backend); err != nil {
		s.Candidates.Close()
		s.Posts.Close()
		return nil, err
	}
	return s, nil
}

// Close releases every repository and then the backend.
func (s *Store) Close() error {
	return errors.Join(
		s.Jobs.Close(),
		s.Candidates.Close(),
		s.Posts.Close(),
		s.Embeddings.Close(),
		s.Backend.Close(),
	)
}

// NewMemoryStore creates an in-memory store for testing.
// Caller must Close it when done.
func NewMemoryStore() (*Store, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	s, err := OpenStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}
