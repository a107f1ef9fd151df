package matcher

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ocrdoc"
)

func linesOf(texts ...string) []ocrdoc.Line {
	lines := make([]ocrdoc.Line, len(texts))
	for i, t := range texts {
		lines[i] = ocrdoc.Line{Index: i, Text: strings.ToLower(t)}
	}
	return lines
}

func terms(texts ...string) *catalog.Catalog {
	ts := make([]catalog.Term, len(texts))
	for i, t := range texts {
		ts[i] = catalog.Term{Text: t}
	}
	return catalog.MustNew("test", ts)
}

func TestMatchCovenantScenario(t *testing.T) {
	lines := linesOf(
		"Grantee agrees no persons not of the Caucasian race shall own this lot.",
		"Lot 12, Block 4.",
	)
	hits := Match(lines, terms("caucasian", "persons not of the"))
	assert.Equal(t, HitMap{
		"caucasian":          {0},
		"persons not of the": {0},
	}, hits)
	assert.False(t, hits.Empty())
}

func TestMatchExceptionTermIsRecorded(t *testing.T) {
	hits := Match(linesOf("CERTIFICATE OF DEATH"), catalog.Default())
	assert.Equal(t, HitMap{"certificate of death": {0}}, hits)

	s := Summarize(hits, catalog.Default())
	assert.Equal(t, []string{"certificate of death"}, s.Exception)
	assert.Empty(t, s.Substantive)
	assert.True(t, s.ExceptionOnly())
}

func TestMatchOncePerLine(t *testing.T) {
	hits := Match(linesOf("negro negro NEGRO", "nothing", "Negro"), terms("negro"))
	assert.Equal(t, HitMap{"negro": {0, 2}}, hits)
}

func TestMatchAbsentTermsOmitted(t *testing.T) {
	hits := Match(linesOf("Lot 12, Block 4."), terms("caucasian", "lot"))
	assert.Equal(t, HitMap{"lot": {0}}, hits)
	_, present := hits["caucasian"]
	assert.False(t, present)

	empty := Match(linesOf("Lot 12"), terms("caucasian"))
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Terms())
}

func TestMatchPaddedTermsNeedBoundaries(t *testing.T) {
	cat := terms(" indian ")
	hits := Match(linesOf(
		"Indian hill road",        // start of line: no leading space
		"the indian tribe",        // padded on both sides
		"road to indian",          // end of line: no trailing space
		"Indiana state line here", // no trailing space after "indian"
	), cat)
	assert.Equal(t, HitMap{" indian ": {1}}, hits)
}

func TestMatchNeverCrossesLines(t *testing.T) {
	hits := Match(linesOf("no persons not", "of the caucasian race"), terms("persons not of"))
	assert.True(t, hits.Empty())
}

func TestMatchPropertySubstring(t *testing.T) {
	texts := []string{
		"Said premises shall not be sold to any person not of the white race.",
		"Mulatto",
		"Japanese or Chinese descent",
		"",
		"   ",
		"Nationality: Irish",
	}
	lines := linesOf(texts...)
	cat := catalog.Default()
	hits := Match(lines, cat)

	for _, term := range cat.Texts() {
		var want []int
		for i, text := range texts {
			if strings.Contains(strings.ToLower(text), term) {
				want = append(want, i)
			}
		}
		got, ok := hits[term]
		if want == nil {
			assert.False(t, ok, "term %q should be absent", term)
			continue
		}
		assert.Equal(t, want, got, "term %q", term)
	}
}

func TestMatchDeterministic(t *testing.T) {
	lines := linesOf("Caucasian only", "no Negro or Mongolian", "white race", "Caucasian")
	first, err := json.Marshal(Match(lines, catalog.Default()))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Match(lines, catalog.Default()))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatchUsesLineIndex(t *testing.T) {
	lines := []ocrdoc.Line{{Index: 4, Text: "hebrew"}, {Index: 9, Text: "hebrew"}}
	assert.Equal(t, HitMap{"hebrew": {4, 9}}, Match(lines, terms("hebrew")))
}

func TestSummarizeSorted(t *testing.T) {
	cat := catalog.Default()
	hits := HitMap{"negro": {1}, "blood group": {0}, "caucasian": {2}}
	s := Summarize(hits, cat)
	assert.Equal(t, []string{"caucasian", "negro"}, s.Substantive)
	assert.Equal(t, []string{"blood group"}, s.Exception)
	assert.False(t, s.ExceptionOnly())
}
