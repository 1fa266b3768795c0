package badger

import (
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	candSeq *badger.Sequence
	pubSeq  *badger.Sequence
	affSeq  *badger.Sequence
	sumSeq  *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	r := &CandidateRepository{backend: backend}
	seqs := []struct {
		name string
		dst  **badger.Sequence
	}{
		{candidateIDSeq, &r.candSeq},
		{publicationIDSeq, &r.pubSeq},
		{affiliationIDSeq, &r.affSeq},
		{summaryIDSeq, &r.sumSeq},
	}
	for _, s := range seqs {
		seq, err := backend.GetSequence(s.name)
		if err != nil {
			r.Close()
			return nil, err
		}
		*s.dst = seq
	}
	return r, nil
}

// Close releases the ID sequences.
func (r *CandidateRepository) Close() error {
	var errs []error
	for _, seq := range []*badger.Sequence{r.candSeq, r.pubSeq, r.affSeq, r.sumSeq} {
		if seq != nil {
			errs = append(errs, seq.Release())
		}
	}
	return errors.Join(errs...)
}

// SaveCandidateBundle writes a candidate with its publications, affiliation
// evidence and analysis summary in a single transaction.
func (r *CandidateRepository) SaveCandidateBundle(ctx context.Context, bundle *storage.CandidateBundle) error {
	if bundle == nil || bundle.Candidate == nil {
		return storage.ErrEmptyBundle
	}
	if err := core.ValidateCandidate(bundle.Candidate); err != nil {
		return err
	}

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		cand := bundle.Candidate
		id, err := nextID(r.candSeq)
		if err != nil {
			return err
		}
		cand.Id = id
		cand.CreatedAt = time.Now().UTC()
		if err := tx.Set(makeCandidateKey(cand.Id), storage.MarshalCandidate(cand)); err != nil {
			return err
		}

		for _, pub := range bundle.Publications {
			if pub.Id, err = nextID(r.pubSeq); err != nil {
				return err
			}
			pub.CandidateID = cand.Id
			if err := tx.Set(makePublicationKey(cand.Id, pub.Id), storage.MarshalPublication(pub)); err != nil {
				return err
			}
		}

		for _, ev := range bundle.Affiliations {
			if _, err := r.upsertAffiliation(tx, cand.Id, ev.OrgName, ev.Year); err != nil {
				return err
			}
		}

		if sum := bundle.Summary; sum != nil {
			if sum.Id, err = nextID(r.sumSeq); err != nil {
				return err
			}
			sum.CandidateID = cand.Id
			sum.JobID = cand.JobID
			sum.CreatedAt = time.Now().UTC()
			if err := tx.Set(makeSummaryKey(cand.Id, sum.Id), storage.MarshalAnalysisSummary(sum)); err != nil {
				return err
			}
			scoreKey := makeCandidateScoreKey(cand.JobID, sum.TotalScore, sum.Id)
			if err := tx.Set(scoreKey, storage.MarshalID(cand.Id)); err != nil {
				return err
			}
		}
		return nil
	})
	return aggregationError(err)
}

// UpsertAffiliationYear inserts or increments one (candidate, year, org) row.
func (r *CandidateRepository) UpsertAffiliationYear(ctx context.Context, candidateID core.ID, orgName string, year int) (*core.AffiliationYear, error) {
	var row *core.AffiliationYear
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		var err error
		row, err = r.upsertAffiliation(tx, candidateID, orgName, year)
		return err
	})
	if err != nil {
		return nil, aggregationError(err)
	}
	return row, nil
}

func (r *CandidateRepository) upsertAffiliation(tx *badger.Txn, candidateID core.ID, orgName string, year int) (*core.AffiliationYear, error) {
	key := makeAffiliationKey(candidateID, year, orgName)
	row, err := readValue(tx, key, storage.UnmarshalAffiliationYear)
	if err != nil {
		return nil, err
	}
	if row == nil {
		id, err := nextID(r.affSeq)
		if err != nil {
			return nil, err
		}
		row = &core.AffiliationYear{
			Id:          id,
			CandidateID: candidateID,
			OrgName:     orgName,
			Year:        year,
		}
	}
	row.EvidenceCount++
	if err := tx.Set(key, storage.MarshalAffiliationYear(row)); err != nil {
		return nil, err
	}
	return row, nil
}

// aggregationError reports write conflicts as affiliation races.
func aggregationError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", core.ErrAggregationRace, err)
	}
	return err
}

// GetCandidate retrieves a candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	var cand *core.Candidate
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		cand, err = readValue(tx, makeCandidateKey(id), storage.UnmarshalCandidate)
		if err != nil {
			return err
		}
		if cand == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return cand, err
}

// SetSocialHandle overwrites the stored handle. A leading @ is dropped.
func (r *CandidateRepository) SetSocialHandle(ctx context.Context, id core.ID, handle string) (*core.Candidate, error) {
	var cand *core.Candidate
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeCandidateKey(id)
		var err error
		cand, err = readValue(tx, key, storage.UnmarshalCandidate)
		if err != nil {
			return err
		}
		if cand == nil {
			return storage.ErrNotFound
		}
		cand.SocialHandle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		return tx.Set(key, storage.MarshalCandidate(cand))
	})
	if err != nil {
		return nil, err
	}
	return cand, nil
}

// GetPublications returns publications ordered by citations, highest first.
func (r *CandidateRepository) GetPublications(ctx context.Context, candidateID core.ID) ([]*core.Publication, error) {
	var pubs []*core.Publication
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, ownedPrefix(publicationPrefix, candidateID), func(_, val []byte) error {
			pub, err := storage.UnmarshalPublication(val)
			if err != nil {
				return err
			}
			pubs = append(pubs, pub)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pubs, func(a, b *core.Publication) int {
		return cmp.Compare(b.Citations, a.Citations)
	})
	return pubs, nil
}

// GetAffiliations returns affiliation rows ordered by year, then org name.
func (r *CandidateRepository) GetAffiliations(ctx context.Context, candidateID core.ID) ([]*core.AffiliationYear, error) {
	var rows []*core.AffiliationYear
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, ownedPrefix(affiliationPrefix, candidateID), func(_, val []byte) error {
			row, err := storage.UnmarshalAffiliationYear(val)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}

// GetLatestSummary returns the newest analysis of a candidate.
func (r *CandidateRepository) GetLatestSummary(ctx context.Context, candidateID core.ID) (*core.AnalysisSummary, error) {
	var latest *core.AnalysisSummary
	err := r.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, ownedPrefix(summaryPrefix, candidateID), func(_, val []byte) error {
			sum, err := storage.UnmarshalAnalysisSummary(val)
			if err != nil {
				return err
			}
			latest = sum
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

// TopCandidates walks the job's ranking index, highest score first.
func (r *CandidateRepository) TopCandidates(ctx context.Context, jobID core.JobID, limit int) ([]*storage.ScoredCandidate, error) {
	var results []*storage.ScoredCandidate
	if limit <= 0 {
		return results, nil
	}

	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialCandidateScoreKey(jobID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			item := iter.Item()
			key := item.Key()
			summaryID := core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))

			var candID core.ID
			err := item.Value(func(val []byte) error {
				var err error
				candID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			cand, err := readValue(tx, makeCandidateKey(candID), storage.UnmarshalCandidate)
			if err != nil {
				return err
			}
			sum, err := readValue(tx, makeSummaryKey(candID, summaryID), storage.UnmarshalAnalysisSummary)
			if err != nil {
				return err
			}
			if cand == nil || sum == nil {
				continue
			}
			results = append(results, &storage.ScoredCandidate{Candidate: cand, Summary: sum})
		}
		return nil
	})
	return results, err
}
