package nlp

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
)

// ExtractedEntity is one named entity occurrence in a piece of text.
// StartPos/EndPos are byte offsets into the original content, Text is the
// surface form and NormalizedText the deduplication key form.
type ExtractedEntity struct {
	Text           string
	NormalizedText string
	EntityType     string
	StartPos       int32
	EndPos         int32
	Confidence     float64
}

// EntityExtractor extracts named entities from raw text. Like
// SentimentAnalyzer, model loading cost belongs to construction, not to
// the per-call path.
type EntityExtractor interface {
	Extract(text string) ([]ExtractedEntity, error)
}

// Entity types worth tracking for social media monitoring. prose's stock
// model emits PERSON and GPE, the rest future-proofs custom models.
var relevantEntityTypes = map[string]bool{
	"PERSON":      true,
	"ORG":         true,
	"GPE":         true,
	"PRODUCT":     true,
	"EVENT":       true,
	"WORK_OF_ART": true,
	"LOC":         true,
	"FAC":         true,
}

// ProseEntityExtractor runs NER through the prose chunker. The underlying
// model is managed by the library and shared across documents.
type ProseEntityExtractor struct {
	opts []prose.DocOpt
}

func NewProseEntityExtractor() *ProseEntityExtractor {
	return &ProseEntityExtractor{
		opts: []prose.DocOpt{prose.WithSegmentation(false)},
	}
}

func (p *ProseEntityExtractor) Extract(text string) ([]ExtractedEntity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, p.opts...)
	if err != nil {
		return nil, errors.Wrap(err, "entity extraction failed")
	}

	out := []ExtractedEntity{}
	// prose reports entities without offsets, recover them by scanning the
	// content left to right so repeated mentions land on distinct positions.
	searchFrom := 0
	for _, ent := range doc.Entities() {
		if !relevantEntityTypes[ent.Label] {
			continue
		}
		// Skip very short entities, they are almost always noise.
		if len(strings.TrimSpace(ent.Text)) < 2 {
			continue
		}

		start := strings.Index(text[searchFrom:], ent.Text)
		if start < 0 {
			// Restart from the beginning for out-of-order matches.
			start = strings.Index(text, ent.Text)
			if start < 0 {
				continue
			}
		} else {
			start += searchFrom
		}
		end := start + len(ent.Text)
		searchFrom = end

		out = append(out, ExtractedEntity{
			Text:           ent.Text,
			NormalizedText: NormalizeEntityText(ent.Text),
			EntityType:     ent.Label,
			StartPos:       int32(start),
			EndPos:         int32(end),
			// prose does not expose per-entity confidence.
			Confidence: 1.0,
		})
	}
	return out, nil
}

// NormalizeEntityText is the canonical entity normalization: lower-case
// plus whitespace trim, nothing more. Punctuation and Unicode case folding
// beyond ToLower are deliberately left alone so "U.S." and "US" stay
// distinct entities.
func NormalizeEntityText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
