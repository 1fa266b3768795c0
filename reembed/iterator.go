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

package reembed

import (
	"context"

	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

const (
	// DefaultBatchSize is the default number of posts embedded together.
	DefaultBatchSize = 100
)

// PostIterator walks every stored post in batches.
type PostIterator struct {
	repo      storage.PostRepository
	batchSize int
}

// NewPostIterator creates a new iterator.
// batchSize: number of posts per batch (DefaultBatchSize when <= 0)
func NewPostIterator(repo storage.PostRepository, batchSize int) *PostIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &PostIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn for each batch of posts.
// Iteration stops on the first error from fn or when ctx is done.
func (it *PostIterator) ForEach(ctx context.Context, fn func([]*core.SocialPost) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	posts, err := it.repo.AllPosts(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(posts); i += it.batchSize {
		if err := fn(posts[i:min(i+it.batchSize, len(posts))]); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
