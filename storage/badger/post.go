package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// PostRepository implements storage.PostRepository for BadgerDB.
type PostRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.PostRepository = (*PostRepository)(nil)

// NewPostRepository creates a new PostRepository.
func NewPostRepository(backend *Backend) (*PostRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	idSeq, err := backend.GetSequence(postIDSeq)
	if err != nil {
		return nil, err
	}
	return &PostRepository{backend: backend, idSeq: idSeq}, nil
}

// Close releases the ID sequence.
func (r *PostRepository) Close() error {
	return r.idSeq.Release()
}

// AddPosts stores posts not yet known by their platform post id.
func (r *PostRepository) AddPosts(ctx context.Context, candidateID core.ID, posts ...*core.SocialPost) ([]*core.SocialPost, error) {
	var added []*core.SocialPost
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		added = added[:0]
		for _, post := range posts {
			refKey := makePostRefKey(candidateID, post.PostID)
			_, err := tx.Get(refKey)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			post.Id = id
			post.CandidateID = candidateID
			if err := tx.Set(makePostKey(candidateID, id), storage.MarshalSocialPost(post)); err != nil {
				return err
			}
			if err := tx.Set(refKey, storage.MarshalID(id)); err != nil {
				return err
			}
			added = append(added, post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// GetPosts returns a candidate's posts in insertion order.
func (r *PostRepository) GetPosts(ctx context.Context, candidateID core.ID) ([]*core.SocialPost, error) {
	return r.scan(ownedPrefix(postPrefix, candidateID))
}

// AllPosts returns every stored post.
func (r *PostRepository) AllPosts(ctx context.Context) ([]*core.SocialPost, error) {
	return r.scan(newKey(postPrefix))
}

func (r *PostRepository) scan(prefix []byte) ([]*core.SocialPost, error) {
	var posts []*core.SocialPost
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, prefix, func(_, val []byte) error {
			post, err := storage.UnmarshalSocialPost(val)
			if err != nil {
				return err
			}
			posts = append(posts, post)
			return nil
		})
	})
	return posts, err
}
