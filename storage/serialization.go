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
	"github.com/poiesic/talentscout/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	var e encoder
	e.uint64(uint64(id))
	return e.buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	d := decoder{bs: data}
	id := core.ID(d.uint64())
	return id, d.err
}

// MarshalJob serializes a Job to bytes.
func MarshalJob(job *core.Job) []byte {
	var e encoder
	e.string(string(job.ID))
	e.string(job.Query)
	e.string(job.JobDescription)
	e.string(job.Filters.Seniority)
	e.int(job.Filters.Limit)
	e.int(int(job.Status))
	e.int(job.Progress)
	e.string(job.Error)
	e.time(job.CreatedAt)
	e.time(job.UpdatedAt)
	return e.buf
}

// UnmarshalJob deserializes a Job from bytes.
func UnmarshalJob(data []byte) (*core.Job, error) {
	d := decoder{bs: data}
	job := &core.Job{
		ID:             core.JobID(d.string()),
		Query:          d.string(),
		JobDescription: d.string(),
		Filters: core.Filters{
			Seniority: d.string(),
			Limit:     d.int(),
		},
		Status:    core.JobStatus(d.int()),
		Progress:  d.int(),
		Error:     d.string(),
		CreatedAt: d.time(),
		UpdatedAt: d.time(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return job, nil
}

// MarshalCandidate serializes a Candidate to bytes.
func MarshalCandidate(c *core.Candidate) []byte {
	var e encoder
	e.uint64(uint64(c.Id))
	e.string(string(c.JobID))
	e.string(c.Name)
	e.string(c.Affiliation)
	e.string(c.ExternalID)
	e.string(c.SocialHandle)
	e.time(c.CreatedAt)
	return e.buf
}

// UnmarshalCandidate deserializes a Candidate from bytes.
func UnmarshalCandidate(data []byte) (*core.Candidate, error) {
	d := decoder{bs: data}
	c := &core.Candidate{
		Id:           core.ID(d.uint64()),
		JobID:        core.JobID(d.string()),
		Name:         d.string(),
		Affiliation:  d.string(),
		ExternalID:   d.string(),
		SocialHandle: d.string(),
		CreatedAt:    d.time(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return c, nil
}

// MarshalPublication serializes a Publication to bytes.
func MarshalPublication(p *core.Publication) []byte {
	var e encoder
	e.uint64(uint64(p.Id))
	e.uint64(uint64(p.CandidateID))
	e.string(p.Title)
	e.string(p.Venue)
	e.int(p.Year)
	e.int(p.Citations)
	e.string(p.Abstract)
	e.string(p.WorkRef)
	return e.buf
}

// UnmarshalPublication deserializes a Publication from bytes.
func UnmarshalPublication(data []byte) (*core.Publication, error) {
	d := decoder{bs: data}
	p := &core.Publication{
		Id:          core.ID(d.uint64()),
		CandidateID: core.ID(d.uint64()),
		Title:       d.string(),
		Venue:       d.string(),
		Year:        d.int(),
		Citations:   d.int(),
		Abstract:    d.string(),
		WorkRef:     d.string(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}

// MarshalAffiliationYear serializes an AffiliationYear to bytes.
func MarshalAffiliationYear(a *core.AffiliationYear) []byte {
	var e encoder
	e.uint64(uint64(a.Id))
	e.uint64(uint64(a.CandidateID))
	e.string(a.OrgName)
	e.int(a.Year)
	e.int(a.EvidenceCount)
	return e.buf
}

// UnmarshalAffiliationYear deserializes an AffiliationYear from bytes.
func UnmarshalAffiliationYear(data []byte) (*core.AffiliationYear, error) {
	d := decoder{bs: data}
	a := &core.AffiliationYear{
		Id:            core.ID(d.uint64()),
		CandidateID:   core.ID(d.uint64()),
		OrgName:       d.string(),
		Year:          d.int(),
		EvidenceCount: d.int(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

// MarshalAnalysisSummary serializes an AnalysisSummary to bytes.
func MarshalAnalysisSummary(s *core.AnalysisSummary) []byte {
	var e encoder
	e.uint64(uint64(s.Id))
	e.uint64(uint64(s.CandidateID))
	e.string(string(s.JobID))
	e.strings(s.Topics)
	b := s.Breakdown
	e.float64(b.TopicalFit)
	e.float64(b.EmbeddingSimilarity)
	e.float64(b.CompositeFit)
	e.int(b.BestCitations)
	e.float64(b.HProxy)
	e.float64(b.Impact)
	e.int(b.RecentYear)
	e.float64(b.Recency)
	e.int(int(b.Seniority))
	e.int(int(b.RequestedLevel))
	e.float64(b.SeniorityFit)
	e.float64(b.Total)
	e.float64(b.Weights.Fit)
	e.float64(b.Weights.Impact)
	e.float64(b.Weights.Recency)
	e.float64(b.Weights.Seniority)
	e.float64(s.TotalScore)
	e.time(s.CreatedAt)
	return e.buf
}

// UnmarshalAnalysisSummary deserializes an AnalysisSummary from bytes.
func UnmarshalAnalysisSummary(data []byte) (*core.AnalysisSummary, error) {
	d := decoder{bs: data}
	s := &core.AnalysisSummary{
		Id:          core.ID(d.uint64()),
		CandidateID: core.ID(d.uint64()),
		JobID:       core.JobID(d.string()),
		Topics:      d.strings(),
		Breakdown: core.ScoreBreakdown{
			TopicalFit:          d.float64(),
			EmbeddingSimilarity: d.float64(),
			CompositeFit:        d.float64(),
			BestCitations:       d.int(),
			HProxy:              d.float64(),
			Impact:              d.float64(),
			RecentYear:          d.int(),
			Recency:             d.float64(),
			Seniority:           core.Level(d.int()),
			RequestedLevel:      core.Level(d.int()),
			SeniorityFit:        d.float64(),
			Total:               d.float64(),
			Weights: core.ScoreWeights{
				Fit:       d.float64(),
				Impact:    d.float64(),
				Recency:   d.float64(),
				Seniority: d.float64(),
			},
		},
		TotalScore: d.float64(),
		CreatedAt:  d.time(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
// The vector is written as little-endian float32 values after its dimension.
func MarshalEmbeddingRecord(r *core.EmbeddingRecord) []byte {
	var e encoder
	e.uint64(uint64(r.Id))
	e.uint64(uint64(r.OwnerID))
	e.string(string(r.Kind))
	e.uint64(uint64(r.RefID))
	e.string(r.Model)
	e.int(r.Dim)
	e.vector(r.Vector)
	e.time(r.CreatedAt)
	return e.buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*core.EmbeddingRecord, error) {
	d := decoder{bs: data}
	r := &core.EmbeddingRecord{
		Id:        core.ID(d.uint64()),
		OwnerID:   core.ID(d.uint64()),
		Kind:      core.EmbeddingKind(d.string()),
		RefID:     core.ID(d.uint64()),
		Model:     d.string(),
		Dim:       d.int(),
		Vector:    d.vector(),
		CreatedAt: d.time(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return r, nil
}

// MarshalSocialPost serializes a SocialPost to bytes.
func MarshalSocialPost(p *core.SocialPost) []byte {
	var e encoder
	e.uint64(uint64(p.Id))
	e.uint64(uint64(p.CandidateID))
	e.string(p.Source)
	e.string(p.PostID)
	e.string(p.Text)
	e.time(p.CreatedAt)
	e.int(p.LikeCount)
	e.int(p.RepostCount)
	return e.buf
}

// UnmarshalSocialPost deserializes a SocialPost from bytes.
func UnmarshalSocialPost(data []byte) (*core.SocialPost, error) {
	d := decoder{bs: data}
	p := &core.SocialPost{
		Id:          core.ID(d.uint64()),
		CandidateID: core.ID(d.uint64()),
		Source:      d.string(),
		PostID:      d.string(),
		Text:        d.string(),
		CreatedAt:   d.time(),
		LikeCount:   d.int(),
		RepostCount: d.int(),
	}
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}
