// Package keywords derives topics from keyword frequency. It backs the
// offline topic extractor and the query keyword list used in scoring.
package keywords

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/talentscout/ai"
)

// Words too generic to describe a research area.
var stopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		a an the and or of for to in on with from that this these those via using use
		is are was were be been being as by at we our their his her its it they them
		into over under about within without not no yes can could should would may might
		method methods results introduction conclusion abstract study paper dataset data
		model models approach approaches new propose proposed show shows work works
		learning machine deep neural network networks transformer transformers large
		language languages based task tasks performance state art sota`) {
		stopWords[w] = true
	}
}

// minKeywordLen is the shortest token, in characters, counted as a keyword.
const minKeywordLen = 3

// tokenizeAndFilter splits text into words, trims punctuation, lowercases,
// and drops stop words, short tokens, and tokens with non-letters.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,:;()[]{}\"'\n\t "))
		if cleaned == "" || stopWords[cleaned] || utf8.RuneCountInString(cleaned) < minKeywordLen {
			continue
		}
		if strings.IndexFunc(cleaned, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			continue
		}
		filtered = append(filtered, cleaned)
	}

	return filtered
}

// Top returns the k most frequent keywords across chunks. Ties keep the
// order in which keywords were first seen.
func Top(chunks []string, k int) []string {
	if k <= 0 {
		return []string{}
	}
	counts := make(map[string]int)
	var order []string
	for _, chunk := range chunks {
		for _, tok := range tokenizeAndFilter(chunk) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	// stable selection by count
	ranked := make([]string, 0, len(order))
	for _, w := range order {
		i := len(ranked)
		for i > 0 && counts[ranked[i-1]] < counts[w] {
			i--
		}
		ranked = append(ranked, "")
		copy(ranked[i+1:], ranked[i:])
		ranked[i] = w
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Extractor is an ai.TopicExtractor backed by Top.
type Extractor struct{}

var _ ai.TopicExtractor = Extractor{}

// ExtractTopics implements ai.TopicExtractor.
func (Extractor) ExtractTopics(ctx context.Context, texts []string, k int) ([]string, error) {
	return Top(texts, k), nil
}

// Personality is a coarse description of how someone writes online.
type Personality struct {
	Interests []string `json:"interests"`
	Tone      string   `json:"tone"`
	Summary   string   `json:"summary"`
}

// SummarizePersonality describes a candidate from their posts.
func SummarizePersonality(posts []string) Personality {
	if len(posts) == 0 {
		return Personality{Interests: []string{}, Tone: "unknown", Summary: "No social data."}
	}
	interests := Top(posts, 6)
	return Personality{
		Interests: interests,
		Tone:      "mixed",
		Summary:   "Often discusses: " + strings.Join(interests, ", "),
	}
}
