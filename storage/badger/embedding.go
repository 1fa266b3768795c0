package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	idSeq, err := backend.GetSequence(embeddingIDSeq)
	if err != nil {
		return nil, err
	}
	return &EmbeddingRepository{backend: backend, idSeq: idSeq}, nil
}

// Close releases the ID sequence.
func (r *EmbeddingRepository) Close() error {
	return r.idSeq.Release()
}

// SaveEmbeddings upserts records by (owner, kind, ref). A replaced record keeps its ID.
func (r *EmbeddingRepository) SaveEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	for _, rec := range records {
		if err := core.ValidateEmbeddingRecord(rec); err != nil {
			return err
		}
	}

	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, rec := range records {
			key := makeEmbeddingKey(rec.OwnerID, rec.Kind, rec.RefID)
			old, err := readValue(tx, key, storage.UnmarshalEmbeddingRecord)
			if err != nil {
				return err
			}
			if old != nil {
				rec.Id = old.Id
			} else if rec.Id, err = nextID(r.idSeq); err != nil {
				return err
			}
			rec.CreatedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(rec)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEmbeddings returns an owner's records of one kind ordered by ref ID.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, ownerID core.ID, kind core.EmbeddingKind) ([]*core.EmbeddingRecord, error) {
	var records []*core.EmbeddingRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, makePartialEmbeddingKey(ownerID, kind), func(_, val []byte) error {
			rec, err := storage.UnmarshalEmbeddingRecord(val)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}
