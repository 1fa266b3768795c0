// Package openalex discovers researchers and their most cited works through
// the OpenAlex API.
package openalex

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/talentscout/connectors"
	"github.com/poiesic/talentscout/core"
)

// DefaultBaseURL is the public OpenAlex endpoint.
const DefaultBaseURL = "https://api.openalex.org"

// Client talks to OpenAlex. It satisfies orchestrator.Discoverer.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
// A nil httpClient gets a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  connectors.NewClient(httpClient, 30*time.Second),
		logger:  logger.With("component", "openalex"),
	}
}

type institution struct {
	DisplayName string `json:"display_name"`
}

type authorsResponse struct {
	Results []struct {
		ID                   string       `json:"id"`
		DisplayName          string       `json:"display_name"`
		WorksCount           int          `json:"works_count"`
		CitedByCount         int          `json:"cited_by_count"`
		LastKnownInstitution *institution `json:"last_known_institution"`
	} `json:"results"`
}

// DiscoverAuthors searches authors matching query, most cited first.
func (c *Client) DiscoverAuthors(ctx context.Context, query string, limit int) ([]core.Author, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("sort", "cited_by_count:desc")

	var resp authorsResponse
	if err := connectors.GetJSON(ctx, c.client, c.baseURL+"/authors?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	authors := make([]core.Author, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := r.DisplayName
		if name == "" {
			name = "Unknown"
		}
		a := core.Author{
			ExternalID:   r.ID,
			Name:         name,
			WorksCount:   r.WorksCount,
			CitedByCount: r.CitedByCount,
		}
		if r.LastKnownInstitution != nil {
			a.Affiliation = r.LastKnownInstitution.DisplayName
		}
		authors = append(authors, a)
	}
	c.logger.Debug("discovered authors", "query", query, "count", len(authors))
	return authors, nil
}

type worksResponse struct {
	Results []struct {
		ID                    string           `json:"id"`
		Title                 string           `json:"title"`
		PublicationYear       int              `json:"publication_year"`
		CitedByCount          int              `json:"cited_by_count"`
		AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
		HostVenue             *struct {
			DisplayName string `json:"display_name"`
		} `json:"host_venue"`
		PrimaryLocation *struct {
			Source *struct {
				DisplayName string `json:"display_name"`
			} `json:"source"`
		} `json:"primary_location"`
		Authorships []struct {
			Author struct {
				ID string `json:"id"`
			} `json:"author"`
			Institutions []institution `json:"institutions"`
		} `json:"authorships"`
	} `json:"results"`
}

// FetchTopWorks returns an author's most cited works. Orgs holds the
// author's institution on each work, when OpenAlex records one.
func (c *Client) FetchTopWorks(ctx context.Context, authorID string, perPage int) ([]core.Work, error) {
	params := url.Values{}
	params.Set("filter", "author.id:"+authorID)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("sort", "cited_by_count:desc")

	var resp worksResponse
	if err := connectors.GetJSON(ctx, c.client, c.baseURL+"/works?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	works := make([]core.Work, 0, len(resp.Results))
	for _, r := range resp.Results {
		w := core.Work{
			Title:     r.Title,
			Year:      r.PublicationYear,
			Citations: r.CitedByCount,
			Abstract:  ReconstructAbstract(r.AbstractInvertedIndex),
			Ref:       r.ID,
		}
		switch {
		case r.HostVenue != nil && r.HostVenue.DisplayName != "":
			w.Venue = r.HostVenue.DisplayName
		case r.PrimaryLocation != nil && r.PrimaryLocation.Source != nil:
			w.Venue = r.PrimaryLocation.Source.DisplayName
		}
		for _, a := range r.Authorships {
			if a.Author.ID != authorID {
				continue
			}
			if len(a.Institutions) > 0 && a.Institutions[0].DisplayName != "" {
				w.Orgs = []string{a.Institutions[0].DisplayName}
			}
			break
		}
		works = append(works, w)
	}
	return works, nil
}

// ReconstructAbstract rebuilds text from an OpenAlex inverted index mapping
// each word to its positions.
func ReconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type placed struct {
		pos  int
		word string
	}
	var words []placed
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 {
				words = append(words, placed{p, word})
			}
		}
	}
	slices.SortFunc(words, func(a, b placed) int {
		if a.pos != b.pos {
			return a.pos - b.pos
		}
		return strings.Compare(a.word, b.word)
	})

	var b strings.Builder
	last := -1
	for _, w := range words {
		if w.pos == last {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w.word)
		last = w.pos
	}
	return b.String()
}
