// Package career turns per-year affiliation evidence into employment
// segments and rough compensation estimates.
package career

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/talentscout/core"
)

// Segment is a run of consecutive years at one organization.
type Segment struct {
	Org       string `json:"org"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// Segments groups affiliation rows into contiguous segments. A change of
// organization or a gap of more than one year starts a new segment. Rows
// are ordered by year, then organization, before grouping.
func Segments(rows []*core.AffiliationYear) []Segment {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b *core.AffiliationYear) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.OrgName, b.OrgName))
	})

	var segments []Segment
	for _, r := range sorted {
		if n := len(segments); n > 0 {
			cur := &segments[n-1]
			if cur.Org == r.OrgName && r.Year <= cur.EndYear+1 {
				cur.EndYear = r.Year
				continue
			}
		}
		segments = append(segments, Segment{Org: r.OrgName, StartYear: r.Year, EndYear: r.Year})
	}
	return segments
}

// Band is a coarse employer category.
type Band int

const (
	BandIndustryOther Band = iota
	BandAcademia
	BandGovLab
	BandIndustryTier1
	BandStartupElite
)

func (b Band) String() string {
	switch b {
	case BandAcademia:
		return "academia"
	case BandGovLab:
		return "gov_lab"
	case BandIndustryTier1:
		return "industry-tier1"
	case BandStartupElite:
		return "startup-elite"
	case BandIndustryOther:
		return "industry-other"
	}
	return "unknown"
}

// MarshalText renders the band name in JSON payloads.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// baseSalary is the 2016 total compensation in USD.
func (b Band) baseSalary() float64 {
	switch b {
	case BandAcademia:
		return 140_000
	case BandGovLab:
		return 160_000
	case BandIndustryTier1:
		return 325_000
	case BandStartupElite:
		return 280_000
	case BandIndustryOther:
		return 220_000
	}
	return 200_000
}

var (
	academiaMarkers = []string{"university", "college", "institute", "mit", "stanford", "cmu", "berkeley", "oxford", "cambridge"}
	govLabMarkers   = []string{"lab", "laboratory", "nasa", "nih", "doe"}
	bigTech         = []string{"google", "deepmind", "openai", "microsoft", "meta", "facebook", "apple", "amazon", "nvidia", "anthropic", "xai"}
	startupMarkers  = []string{"research", "ai", "ml"}
)

// ClassifyOrg assigns an organization name to a band by substring match.
// Earlier bands win, so "Google Research" is industry-tier1 and
// "Stanford AI Lab" is academia.
func ClassifyOrg(org string) Band {
	n := strings.ToLower(org)
	switch {
	case containsAny(n, academiaMarkers):
		return BandAcademia
	case containsAny(n, govLabMarkers):
		return BandGovLab
	case containsAny(n, bigTech):
		return BandIndustryTier1
	case containsAny(n, startupMarkers):
		return BandStartupElite
	}
	return BandIndustryOther
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

const (
	baseYear     = 2016
	annualGrowth = 1.02
)

// Estimate is a heuristic yearly compensation figure.
type Estimate struct {
	Year      int    `json:"year"`
	Org       string `json:"org"`
	AmountUSD int    `json:"salary_usd"`
	Band      Band   `json:"band"`
	Basis     string `json:"basis"`
}

// EstimateCompensation prices a year at an organization from its band's
// base salary grown 2% per year since 2016.
func EstimateCompensation(org string, year int) Estimate {
	if org == "" {
		org = "unknown"
	}
	band := ClassifyOrg(org)
	years := max(0, year-baseYear)
	return Estimate{
		Year:      year,
		Org:       org,
		AmountUSD: int(band.baseSalary() * math.Pow(annualGrowth, float64(years))),
		Band:      band,
		Basis:     fmt.Sprintf("heuristic by org band (%s) with 2%% YoY", band),
	}
}

// Sample is a compensation estimate backed by affiliation evidence.
type Sample struct {
	Estimate
	EvidenceCount int `json:"evidence_count"`
}

// Samples prices every affiliation row.
func Samples(rows []*core.AffiliationYear) []Sample {
	samples := make([]Sample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, Sample{
			Estimate:      EstimateCompensation(r.OrgName, r.Year),
			EvidenceCount: r.EvidenceCount,
		})
	}
	return samples
}
