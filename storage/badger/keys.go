package badger

import (
	"encoding/binary"
	"math"

	"github.com/poiesic/talentscout/core"
)

// Key prefixes for different data types
const (
	jobPrefix            = "job"
	candidatePrefix      = "cand"
	candidateScorePrefix = "candscore"
	publicationPrefix    = "pub"
	affiliationPrefix    = "aff"
	summaryPrefix        = "sum"
	postPrefix           = "post"
	postRefPrefix        = "postref"
	embeddingPrefix      = "emb"

	candidateIDSeq   = "candseq"
	publicationIDSeq = "pubseq"
	affiliationIDSeq = "affseq"
	summaryIDSeq     = "sumseq"
	postIDSeq        = "postseq"
	embeddingIDSeq   = "embseq"
)

// keyBuilder assembles composite keys of the form prefix:part:part.
// Numeric parts are written big endian so lexicographic order matches
// numeric order.
type keyBuilder []byte

func newKey(prefix string) keyBuilder {
	return append(keyBuilder(prefix), ':')
}

func (k keyBuilder) id(id core.ID) keyBuilder {
	return binary.BigEndian.AppendUint64(k, uint64(id))
}

func (k keyBuilder) uint32(v uint32) keyBuilder {
	return binary.BigEndian.AppendUint32(k, v)
}

func (k keyBuilder) str(s string) keyBuilder {
	return append(k, s...)
}

func (k keyBuilder) sep() keyBuilder {
	return append(k, ':')
}

// makeJobKey generates a key for a job by ID.
func makeJobKey(id core.JobID) []byte {
	return newKey(jobPrefix).str(string(id))
}

// makeCandidateKey generates a key for a candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return newKey(candidatePrefix).id(id)
}

// makeCandidateScoreKey generates the job ranking index key.
// Format: prefix:jobID:invertedScore:summaryID
// Scores are non-negative, so the inverted IEEE bits sort highest first;
// the summary ID keeps equal scores in insertion order.
func makeCandidateScoreKey(jobID core.JobID, score float64, summaryID core.ID) []byte {
	k := makePartialCandidateScoreKey(jobID)
	k = binary.BigEndian.AppendUint64(k, ^math.Float64bits(math.Max(score, 0)))
	return keyBuilder(k).id(summaryID)
}

// makePartialCandidateScoreKey generates the ranking index prefix of a job.
func makePartialCandidateScoreKey(jobID core.JobID) []byte {
	return newKey(candidateScorePrefix).str(string(jobID)).sep()
}

// makePublicationKey generates a composite key for a publication.
// Format: prefix:candidateID:publicationID
func makePublicationKey(candidateID, id core.ID) []byte {
	return newKey(publicationPrefix).id(candidateID).id(id)
}

// makeAffiliationKey generates the (candidate, year, org) key of an affiliation row.
// Format: prefix:candidateID:year:org
func makeAffiliationKey(candidateID core.ID, year int, org string) []byte {
	return newKey(affiliationPrefix).id(candidateID).uint32(uint32(year)).str(org)
}

// makeSummaryKey generates a composite key for an analysis summary.
// Format: prefix:candidateID:summaryID
func makeSummaryKey(candidateID, id core.ID) []byte {
	return newKey(summaryPrefix).id(candidateID).id(id)
}

// makePostKey generates a composite key for a social post.
// Format: prefix:candidateID:postID
func makePostKey(candidateID, id core.ID) []byte {
	return newKey(postPrefix).id(candidateID).id(id)
}

// makePostRefKey maps a platform post id to the stored post.
// Format: prefix:candidateID:platformPostID
func makePostRefKey(candidateID core.ID, platformID string) []byte {
	return newKey(postRefPrefix).id(candidateID).str(platformID)
}

// makeEmbeddingKey generates the (owner, kind, ref) key of an embedding.
// Format: prefix:ownerID:kind:refID
func makeEmbeddingKey(ownerID core.ID, kind core.EmbeddingKind, refID core.ID) []byte {
	return keyBuilder(makePartialEmbeddingKey(ownerID, kind)).id(refID)
}

// makePartialEmbeddingKey generates the prefix of an owner's embeddings of one kind.
func makePartialEmbeddingKey(ownerID core.ID, kind core.EmbeddingKind) []byte {
	return newKey(embeddingPrefix).id(ownerID).str(string(kind)).sep()
}

// ownedPrefix returns prefix:ownerID, the scan prefix of child records.
func ownedPrefix(prefix string, ownerID core.ID) []byte {
	return newKey(prefix).id(ownerID)
}
