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

import "errors"

// Domain errors
var (
	// ErrValidation indicates malformed request input. Nothing is mutated.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyQuery indicates a request carried neither query nor job description text where one is required.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidLimit indicates a limit outside the accepted range.
	ErrInvalidLimit = errors.New("limit out of range")

	// ErrInvalidTransition indicates an illegal job status change.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrInvalidProgress indicates a progress value outside [0,100].
	ErrInvalidProgress = errors.New("progress out of range")

	// ErrCollaboratorUnavailable indicates an external source failed.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrAggregationRace indicates concurrent affiliation upserts collided.
	ErrAggregationRace = errors.New("affiliation aggregation race")

	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrInvalidEmbedding indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding record")
)
