package nlp

import (
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
	"github.com/sociolens/sociolens/model"
)

// Thresholds mapping the continuous sentiment score onto labels. The band
// between them absorbs near-zero noise instead of forcing a label on weak
// signal.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// SentimentResult is the outcome of one sentiment scoring call.
type SentimentResult struct {
	// Score is the normalized compound score in [-1, 1].
	Score float64
	// Label is derived from Score via LabelForScore.
	Label string
}

// SentimentAnalyzer scores raw text. Implementations are expected to be
// cheap per call, any model loading happens at construction time.
type SentimentAnalyzer interface {
	Analyze(text string) (*SentimentResult, error)
}

// VaderSentimentAnalyzer scores text with the VADER lexicon. The lexicon
// ships with the library and is shared process-wide, so the analyzer itself
// is stateless and safe for concurrent use.
type VaderSentimentAnalyzer struct{}

func NewVaderSentimentAnalyzer() *VaderSentimentAnalyzer {
	return &VaderSentimentAnalyzer{}
}

func (a *VaderSentimentAnalyzer) Analyze(text string) (*SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return &SentimentResult{Score: 0, Label: model.SentimentNeutral}, nil
	}

	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	polarity := sentitext.PolarityScore(parsed)

	score := polarity.Compound
	return &SentimentResult{Score: score, Label: LabelForScore(score)}, nil
}

// LabelForScore maps a score onto the label taxonomy. This is the single
// place the thresholding rule lives, both the analyzer and its tests go
// through it.
func LabelForScore(score float64) string {
	switch {
	case score > PositiveThreshold:
		return model.SentimentPositive
	case score < NegativeThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
