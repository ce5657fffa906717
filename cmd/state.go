package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// the url query parameter contract.  a search is fully described by these
// parameters; anything at its default value is omitted when encoding so
// that shareable urls stay minimal.

const (
	scopeAll    = "all"
	scopeTitle  = "title"
	scopeAuthor = "author"

	defaultSort    = "id"
	defaultPage    = 1
	defaultPerPage = 25

	maxSearchTerms = 3
)

var allowedPerPage = []int{25, 50, 100, 200}

type searchTerm struct {
	Query string `json:"query"`
	Field string `json:"field,omitempty"`
}

type searchFilters struct {
	Library        string   `json:"library,omitempty"`
	Collections    []string `json:"collections,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	Authors        []string `json:"authors,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	ShelfMark      string   `json:"shelfmark,omitempty"`
	DateFrom       *int     `json:"date_from,omitempty"`
	DateTo         *int     `json:"date_to,omitempty"`
	IncludeUndated bool     `json:"include_undated"`
}

type searchState struct {
	Terms   []searchTerm  `json:"terms"`
	Filters searchFilters `json:"filters"`
	Sort    string        `json:"sort"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func defaultSearchState() *searchState {
	return &searchState{
		Terms:   []searchTerm{{Query: "", Field: scopeAll}},
		Filters: searchFilters{IncludeUndated: true},
		Sort:    defaultSort,
		Page:    defaultPage,
		PerPage: defaultPerPage,
	}
}

func scopeOrAll(field string) string {
	if field == "" {
		return scopeAll
	}

	return field
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}

	return nonemptyValues(strings.Split(val, ","))
}

func intBound(val string) *int {
	// malformed numeric bounds fall back to "not set", never an error
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}

	return &n
}

func decodeState(values url.Values) *searchState {
	state := defaultSearchState()

	// numbered query/field pairs, with fallback to the legacy single pair

	var terms []searchTerm

	for i := 1; i <= maxSearchTerms; i++ {
		q := values.Get(fmt.Sprintf("q%d", i))
		f := values.Get(fmt.Sprintf("f%d", i))

		if q != "" {
			terms = append(terms, searchTerm{Query: q, Field: scopeOrAll(f)})
		}
	}

	if len(terms) == 0 {
		if q := values.Get("q"); q != "" {
			terms = append(terms, searchTerm{Query: q, Field: scopeOrAll(values.Get("field"))})
		}
	}

	if len(terms) > 0 {
		state.Terms = terms
	}

	state.Filters.Library = values.Get("library")
	state.Filters.Collections = splitList(values.Get("collections"))
	state.Filters.Subjects = splitList(values.Get("subjects"))
	state.Filters.Authors = splitList(values.Get("authors"))
	state.Filters.Languages = splitList(values.Get("languages"))
	state.Filters.ShelfMark = values.Get("shelfmark")

	state.Filters.DateFrom = intBound(values.Get("from"))
	state.Filters.DateTo = intBound(values.Get("to"))

	// undated manuscripts are included unless explicitly opted out
	state.Filters.IncludeUndated = values.Get("undated") != "false"

	if sort := values.Get("sort"); sort != "" {
		state.Sort = sort
	}

	state.Page = integerWithFallback(values.Get("page"), 1, defaultPage)
	state.PerPage = restrictedPerPage(integerWithFallback(values.Get("pp"), 1, defaultPerPage))

	return state
}

func restrictedPerPage(val int) int {
	for _, allowed := range allowedPerPage {
		if val == allowed {
			return val
		}
	}

	return defaultPerPage
}

type paramList struct {
	pairs []string
}

func (p *paramList) add(key, val string) {
	p.pairs = append(p.pairs, fmt.Sprintf("%s=%s", key, url.QueryEscape(val)))
}

func (p *paramList) addList(key string, vals []string) {
	if len(vals) == 0 {
		return
	}

	var escaped []string
	for _, val := range vals {
		escaped = append(escaped, url.QueryEscape(val))
	}

	// commas are legal in query values; keeping them raw keeps urls readable
	p.pairs = append(p.pairs, fmt.Sprintf("%s=%s", key, strings.Join(escaped, ",")))
}

func encodeState(state *searchState) string {
	var p paramList

	n := 0
	for _, term := range state.Terms {
		if term.Query == "" {
			continue
		}

		n++

		p.add(fmt.Sprintf("q%d", n), term.Query)
		if scope := scopeOrAll(term.Field); scope != scopeAll {
			p.add(fmt.Sprintf("f%d", n), scope)
		}
	}

	if state.Filters.Library != "" {
		p.add("library", state.Filters.Library)
	}

	p.addList("collections", state.Filters.Collections)
	p.addList("subjects", state.Filters.Subjects)
	p.addList("authors", state.Filters.Authors)
	p.addList("languages", state.Filters.Languages)

	if state.Filters.ShelfMark != "" {
		p.add("shelfmark", state.Filters.ShelfMark)
	}

	if state.Filters.DateFrom != nil {
		p.add("from", strconv.Itoa(*state.Filters.DateFrom))
	}

	if state.Filters.DateTo != nil {
		p.add("to", strconv.Itoa(*state.Filters.DateTo))
	}

	if state.Filters.IncludeUndated == false {
		p.add("undated", "false")
	}

	if state.Sort != "" && state.Sort != defaultSort {
		p.add("sort", state.Sort)
	}

	if state.Page > defaultPage {
		p.add("page", strconv.Itoa(state.Page))
	}

	if state.PerPage != defaultPerPage && state.PerPage != 0 {
		p.add("pp", strconv.Itoa(state.PerPage))
	}

	return strings.Join(p.pairs, "&")
}

func (f *searchFilters) isEmpty() bool {
	return f.Library == "" &&
		len(f.Collections) == 0 &&
		len(f.Subjects) == 0 &&
		len(f.Authors) == 0 &&
		len(f.Languages) == 0 &&
		f.ShelfMark == "" &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		f.IncludeUndated == true
}

// hasClauses reports whether anything restricts the result set.  the
// initial browse-everything state has no clauses, and gets no aggregations.
func (s *searchState) hasClauses() bool {
	for _, term := range s.Terms {
		if term.Query != "" {
			return true
		}
	}

	return s.Filters.isEmpty() == false
}

// commit actions.  the browser keeps a pending copy of the state while the
// user edits; these rules decide what an explicit commit carries over into
// the committed copy, and when the page resets to 1.

const (
	actionSearch   = "search"    // search / apply filters
	actionSort     = "sort"      // sort-only change
	actionPage     = "page"      // page navigation
	actionPageSize = "page-size" // per-page change
	actionClear    = "clear"     // clear filters
)

func (s *searchState) copy() *searchState {
	c := *s

	c.Terms = append([]searchTerm{}, s.Terms...)
	c.Filters.Collections = append([]string{}, s.Filters.Collections...)
	c.Filters.Subjects = append([]string{}, s.Filters.Subjects...)
	c.Filters.Authors = append([]string{}, s.Filters.Authors...)
	c.Filters.Languages = append([]string{}, s.Filters.Languages...)

	if s.Filters.DateFrom != nil {
		from := *s.Filters.DateFrom
		c.Filters.DateFrom = &from
	}

	if s.Filters.DateTo != nil {
		to := *s.Filters.DateTo
		c.Filters.DateTo = &to
	}

	return &c
}

func (s *searchState) normalize() {
	// json-supplied states are bound by the same term contract as urls:
	// empty slots are dropped, at most maxSearchTerms survive

	var terms []searchTerm

	for _, term := range s.Terms {
		if term.Query != "" {
			terms = append(terms, searchTerm{Query: term.Query, Field: scopeOrAll(term.Field)})
		}
	}

	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}

	if len(terms) == 0 {
		terms = []searchTerm{{Query: "", Field: scopeAll}}
	}

	s.Terms = terms

	if s.Sort == "" {
		s.Sort = defaultSort
	}

	if s.Page < 1 {
		s.Page = defaultPage
	}

	s.PerPage = restrictedPerPage(s.PerPage)
}

// commitState applies a pending edit to the committed state.  the returned
// state is always a fresh copy; the inputs are never modified.
func commitState(committed *searchState, pending *searchState, action string) *searchState {
	if committed == nil {
		committed = defaultSearchState()
	}

	if pending == nil {
		pending = committed
	}

	var next *searchState

	switch action {
	case actionSort:
		next = committed.copy()
		next.Sort = pending.Sort

	case actionPage:
		next = committed.copy()
		next.Page = pending.Page

	case actionPageSize:
		next = committed.copy()
		next.PerPage = pending.PerPage
		next.Page = defaultPage

	case actionClear:
		next = committed.copy()
		next.Filters = searchFilters{IncludeUndated: true}
		next.Page = defaultPage

	default:
		// search / apply filters: terms and filters are (re)committed
		next = pending.copy()
		next.Sort = committed.Sort
		next.PerPage = committed.PerPage
		next.Page = defaultPage
	}

	next.normalize()

	return next
}
