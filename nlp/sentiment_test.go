package nlp

import (
	"testing"

	"github.com/sociolens/sociolens/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelForScore(t *testing.T) {
	assert.Equal(t, model.SentimentPositive, LabelForScore(0.8))
	assert.Equal(t, model.SentimentPositive, LabelForScore(0.11))
	assert.Equal(t, model.SentimentNeutral, LabelForScore(0.1))
	assert.Equal(t, model.SentimentNeutral, LabelForScore(0.0))
	assert.Equal(t, model.SentimentNeutral, LabelForScore(-0.1))
	assert.Equal(t, model.SentimentNegative, LabelForScore(-0.11))
	assert.Equal(t, model.SentimentNegative, LabelForScore(-0.9))
}

func TestVaderAnalyze_LabelMatchesScore(t *testing.T) {
	a := NewVaderSentimentAnalyzer()

	res, err := a.Analyze("I absolutely love this, it is wonderful and amazing!")
	require.Nil(t, err)
	assert.True(t, res.Score > PositiveThreshold)
	assert.Equal(t, model.SentimentPositive, res.Label)

	res, err = a.Analyze("This is horrible, I hate it so much, worst ever.")
	require.Nil(t, err)
	assert.True(t, res.Score < NegativeThreshold)
	assert.Equal(t, model.SentimentNegative, res.Label)

	// Label is always consistent with the score's band.
	assert.Equal(t, LabelForScore(res.Score), res.Label)
}

func TestVaderAnalyze_EmptyContent(t *testing.T) {
	a := NewVaderSentimentAnalyzer()

	res, err := a.Analyze("   ")
	require.Nil(t, err)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, model.SentimentNeutral, res.Label)
}
