package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStateEncodesEmpty(t *testing.T) {
	assert.Equal(t, "", encodeState(defaultSearchState()))
}

func TestDecodeDefaults(t *testing.T) {
	state := decodeState(url.Values{})

	assert.Equal(t, defaultSearchState(), state)
}

func TestDecodeNumberedTerms(t *testing.T) {
	values, err := url.ParseQuery("q1=kitab&q2=sinan&f2=author&q3=tarih&f3=title")
	require.NoError(t, err)

	state := decodeState(values)

	require.Len(t, state.Terms, 3)
	assert.Equal(t, searchTerm{Query: "kitab", Field: "all"}, state.Terms[0])
	assert.Equal(t, searchTerm{Query: "sinan", Field: "author"}, state.Terms[1])
	assert.Equal(t, searchTerm{Query: "tarih", Field: "title"}, state.Terms[2])
}

func TestDecodeSkipsEmptyTermSlots(t *testing.T) {
	values, err := url.ParseQuery("q2=sinan&f2=author")
	require.NoError(t, err)

	state := decodeState(values)

	require.Len(t, state.Terms, 1)
	assert.Equal(t, searchTerm{Query: "sinan", Field: "author"}, state.Terms[0])
}

func TestDecodeLegacySingleTerm(t *testing.T) {
	values, err := url.ParseQuery("q=kitab&field=title")
	require.NoError(t, err)

	state := decodeState(values)

	require.Len(t, state.Terms, 1)
	assert.Equal(t, searchTerm{Query: "kitab", Field: "title"}, state.Terms[0])
}

func TestDecodeFilters(t *testing.T) {
	values, err := url.ParseQuery("library=SK&collections=Ayasofya,Fatih&languages=Arap%C3%A7a&shelfmark=330&from=900&to=1100&undated=false")
	require.NoError(t, err)

	state := decodeState(values)

	assert.Equal(t, "SK", state.Filters.Library)
	assert.Equal(t, []string{"Ayasofya", "Fatih"}, state.Filters.Collections)
	assert.Equal(t, []string{"Arapça"}, state.Filters.Languages)
	assert.Equal(t, "330", state.Filters.ShelfMark)

	require.NotNil(t, state.Filters.DateFrom)
	require.NotNil(t, state.Filters.DateTo)
	assert.Equal(t, 900, *state.Filters.DateFrom)
	assert.Equal(t, 1100, *state.Filters.DateTo)
	assert.False(t, state.Filters.IncludeUndated)
}

func TestDecodeMalformedValues(t *testing.T) {
	values, err := url.ParseQuery("from=abc&to=&page=xyz&pp=37&sort=")
	require.NoError(t, err)

	state := decodeState(values)

	// malformed values fall back to defaults, never an error
	assert.Nil(t, state.Filters.DateFrom)
	assert.Nil(t, state.Filters.DateTo)
	assert.Equal(t, defaultPage, state.Page)
	assert.Equal(t, defaultPerPage, state.PerPage)
	assert.Equal(t, defaultSort, state.Sort)
}

func TestDecodeUndatedDefaultsToTrue(t *testing.T) {
	for _, query := range []string{"", "undated=true", "undated=squid"} {
		values, err := url.ParseQuery(query)
		require.NoError(t, err)

		assert.True(t, decodeState(values).Filters.IncludeUndated, "query: %q", query)
	}
}

func TestRestrictedPerPage(t *testing.T) {
	for _, allowed := range allowedPerPage {
		assert.Equal(t, allowed, restrictedPerPage(allowed))
	}

	assert.Equal(t, defaultPerPage, restrictedPerPage(0))
	assert.Equal(t, defaultPerPage, restrictedPerPage(37))
	assert.Equal(t, defaultPerPage, restrictedPerPage(1000))
}

func TestEncodeOmitsDefaults(t *testing.T) {
	state := defaultSearchState()
	state.Terms = []searchTerm{{Query: "kitab", Field: "all"}}

	assert.Equal(t, "q1=kitab", encodeState(state))
}

func TestEncodeCompactsTermNumbering(t *testing.T) {
	state := defaultSearchState()
	state.Terms = []searchTerm{
		{Query: "", Field: "all"},
		{Query: "sinan", Field: "author"},
	}

	// empty slots do not occupy term numbers
	assert.Equal(t, "q1=sinan&f1=author", encodeState(state))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	// canonical urls survive a decode/encode cycle unchanged
	tests := []string{
		"q1=kitab",
		"q1=kitab&f1=title",
		"q1=kitab&q2=sinan&f2=author",
		"q1=kitab+al-tarih",
		"library=SK",
		"collections=Ayasofya,Fatih",
		"languages=Arap%C3%A7a,T%C3%BCrk%C3%A7e",
		"shelfmark=330%2A",
		"from=900&to=1100",
		"from=900&to=1100&undated=false",
		"undated=false",
		"q1=kitab&sort=date-desc",
		"q1=kitab&page=3",
		"q1=kitab&pp=100",
		"q1=kitab&f1=title&library=SK&collections=Ayasofya&from=900&undated=false&sort=title-tr-asc&page=2&pp=50",
	}

	for _, canonical := range tests {
		values, err := url.ParseQuery(canonical)
		require.NoError(t, err, "query: %q", canonical)

		assert.Equal(t, canonical, encodeState(decodeState(values)), "query: %q", canonical)
	}
}

func TestNormalizeCapsTerms(t *testing.T) {
	state := &searchState{
		Terms: []searchTerm{
			{Query: "kitab"},
			{Query: ""},
			{Query: "sinan", Field: "author"},
			{Query: "tarih"},
			{Query: "divan"},
		},
	}

	// json-bound states honor the same term contract as urls: empty slots
	// dropped, at most three terms kept
	state.normalize()

	require.Len(t, state.Terms, maxSearchTerms)
	assert.Equal(t, "kitab", state.Terms[0].Query)
	assert.Equal(t, searchTerm{Query: "sinan", Field: "author"}, state.Terms[1])
	assert.Equal(t, "tarih", state.Terms[2].Query)

	// the canonical url reproduces the capped state
	values, err := url.ParseQuery(encodeState(state))
	require.NoError(t, err)
	assert.Equal(t, state.Terms, decodeState(values).Terms)
}

func TestNormalizeEmptyTerms(t *testing.T) {
	state := &searchState{Terms: []searchTerm{{Query: ""}, {Query: ""}}}

	state.normalize()

	assert.Equal(t, []searchTerm{{Query: "", Field: scopeAll}}, state.Terms)
}

func TestEncodeDecodeReproducesState(t *testing.T) {
	from, to := 900, 1100

	state := &searchState{
		Terms: []searchTerm{
			{Query: "kitab", Field: "title"},
			{Query: "sinan", Field: "author"},
		},
		Filters: searchFilters{
			Library:     "SK",
			Collections: []string{"Ayasofya", "Fatih"},
			Languages:   []string{"Arapça"},
			ShelfMark:   "330*",
			DateFrom:    &from,
			DateTo:      &to,
		},
		Sort:    "date-desc",
		Page:    3,
		PerPage: 50,
	}

	values, err := url.ParseQuery(encodeState(state))
	require.NoError(t, err)

	assert.Equal(t, state, decodeState(values))
}

func TestHasClauses(t *testing.T) {
	state := defaultSearchState()
	assert.False(t, state.hasClauses())

	state.Terms[0].Query = "kitab"
	assert.True(t, state.hasClauses())

	state = defaultSearchState()
	state.Filters.Library = "SK"
	assert.True(t, state.hasClauses())

	state = defaultSearchState()
	state.Filters.IncludeUndated = false
	assert.True(t, state.hasClauses())
}

func TestCommitSearchResetsPage(t *testing.T) {
	committed := defaultSearchState()
	committed.Sort = "date-desc"
	committed.Page = 5
	committed.PerPage = 100

	pending := committed.copy()
	pending.Terms = []searchTerm{{Query: "kitab", Field: "all"}}

	next := commitState(committed, pending, actionSearch)

	assert.Equal(t, "kitab", next.Terms[0].Query)
	assert.Equal(t, defaultPage, next.Page)

	// sort and page size survive a new search
	assert.Equal(t, "date-desc", next.Sort)
	assert.Equal(t, 100, next.PerPage)
}

func TestCommitSortKeepsPage(t *testing.T) {
	committed := defaultSearchState()
	committed.Terms = []searchTerm{{Query: "kitab", Field: "all"}}
	committed.Page = 3

	pending := committed.copy()
	pending.Sort = "title-tr-asc"

	next := commitState(committed, pending, actionSort)

	assert.Equal(t, "title-tr-asc", next.Sort)
	assert.Equal(t, 3, next.Page)
}

func TestCommitPageSizeResetsPage(t *testing.T) {
	committed := defaultSearchState()
	committed.Page = 3

	pending := committed.copy()
	pending.PerPage = 200

	next := commitState(committed, pending, actionPageSize)

	assert.Equal(t, 200, next.PerPage)
	assert.Equal(t, defaultPage, next.Page)
}

func TestCommitClearResetsFilters(t *testing.T) {
	from := 900

	committed := defaultSearchState()
	committed.Terms = []searchTerm{{Query: "kitab", Field: "all"}}
	committed.Filters = searchFilters{Library: "SK", DateFrom: &from, IncludeUndated: false}
	committed.Page = 4

	next := commitState(committed, nil, actionClear)

	assert.Equal(t, searchFilters{IncludeUndated: true}, next.Filters)
	assert.Equal(t, defaultPage, next.Page)

	// search terms are not filters; they survive a clear
	assert.Equal(t, "kitab", next.Terms[0].Query)
}

func TestCommitNormalizesPending(t *testing.T) {
	pending := &searchState{
		Terms:   []searchTerm{{Query: "kitab"}},
		PerPage: 37,
	}

	next := commitState(nil, pending, actionSearch)

	assert.Equal(t, "all", next.Terms[0].Field)
	assert.Equal(t, defaultSort, next.Sort)
	assert.Equal(t, defaultPage, next.Page)
	assert.Equal(t, defaultPerPage, next.PerPage)
}

func TestCommitDoesNotModifyInputs(t *testing.T) {
	committed := defaultSearchState()
	committed.Filters.Collections = []string{"Ayasofya"}

	pending := committed.copy()
	pending.Filters.Collections = append(pending.Filters.Collections, "Fatih")

	next := commitState(committed, pending, actionSearch)
	next.Filters.Collections[0] = "changed"

	assert.Equal(t, []string{"Ayasofya"}, committed.Filters.Collections)
	assert.Equal(t, []string{"Ayasofya", "Fatih"}, pending.Filters.Collections)
}
