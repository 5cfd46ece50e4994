package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EmptyCorpus(t *testing.T) {
	idx := Build(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Query("brake", 5))
}

func TestBuild_SnapshotIDsAreUnique(t *testing.T) {
	texts := []string{"brake pedal stuck", "airbag failed to deploy"}
	a := Build(texts)
	b := Build(texts)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestQuery_RanksBrakeDocumentsFirst(t *testing.T) {
	idx := Build([]string{
		"brake pedal stuck",
		"airbag failed to deploy",
		"brake fluid leak",
	})

	hits := idx.Query("brake", 2)
	require.Len(t, hits, 2)

	got := []int{hits[0].DocID, hits[1].DocID}
	assert.ElementsMatch(t, []int{0, 2}, got)
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0+1e-9)
	}
}

func TestQuery_EmptyQuery(t *testing.T) {
	idx := Build([]string{"brake pedal stuck", "airbag failed to deploy"})
	assert.Nil(t, idx.Query("", 5))
	assert.Nil(t, idx.Query("   ", 5))
}

func TestQuery_UnseenTermsScoreNothing(t *testing.T) {
	idx := Build([]string{"brake pedal stuck", "airbag failed to deploy"})
	assert.Nil(t, idx.Query("transmission", 5))
}

func TestQuery_StopwordsOnlyQuery(t *testing.T) {
	idx := Build([]string{"the brake pedal was stuck", "an airbag failed"})
	assert.Nil(t, idx.Query("the was an", 5))
}

func TestQuery_TopKTruncates(t *testing.T) {
	idx := Build([]string{
		"brake failure on highway",
		"brake line rusted through",
		"engine stall at idle",
	})
	hits := idx.Query("brake", 1)
	assert.Len(t, hits, 1)
}

func TestQuery_TopKZero(t *testing.T) {
	idx := Build([]string{"brake pedal stuck"})
	assert.Nil(t, idx.Query("brake", 0))
}

func TestQuery_TiesBreakByAscendingDocID(t *testing.T) {
	idx := Build([]string{
		"brake failure",
		"brake failure",
		"airbag warning light",
	})

	hits := idx.Query("brake failure", 3)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].DocID)
	assert.Equal(t, 1, hits[1].DocID)
	assert.InDelta(t, hits[0].Score, hits[1].Score, 1e-12)
}

func TestQuery_DeterministicAcrossRebuilds(t *testing.T) {
	texts := []string{
		"engine stall at low speed",
		"engine fire under the hood",
		"power steering loss while turning",
	}
	a := Build(texts).Query("engine fire", 3)
	b := Build(texts).Query("engine fire", 3)
	assert.Equal(t, a, b)
}

func TestBuild_UbiquitousTermsArePruned(t *testing.T) {
	// "vehicle" appears in every document and is dropped by the
	// document-frequency ceiling, so it cannot match anything.
	idx := Build([]string{
		"vehicle brake failure",
		"vehicle airbag fault",
		"vehicle engine stall",
	})
	assert.Nil(t, idx.Query("vehicle", 3))
}

func TestQuery_BigramsSharpenPhraseMatches(t *testing.T) {
	idx := Build([]string{
		"brake pedal went soft",
		"pedal cover came loose near brake",
		"airbag deployed without warning",
	})

	// Both documents contain "brake" and "pedal", but only the first has
	// the adjacent phrase, so the phrase query must rank it higher.
	hits := idx.Query("brake pedal", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].DocID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestText_ReturnsSourceDocument(t *testing.T) {
	idx := Build([]string{"brake pedal stuck"})
	assert.Equal(t, "brake pedal stuck", idx.Text(0))
	assert.Equal(t, "", idx.Text(1))
	assert.Equal(t, "", idx.Text(-1))
}
