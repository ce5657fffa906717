package main

import (
	"errors"
	"fmt"
	"strings"
)

// functions that map committed search state into one elasticsearch query
// document.  the field schema is fixed: this service fronts exactly one
// manuscript index, configured externally with its own analyzers.

var errBeyondResultWindow = errors.New("requested page is beyond the result window limit")

// analyzed fields per search scope.  terms are matched against these with
// an and-combined multi_match.
var searchScopeFields = map[string][]string{
	scopeAll: {
		"title_tr", "title_ar", "title_alt",
		"author_tr", "author_ar",
		"library", "collection",
		"physical_desc", "shelfmarks", "bib_id",
	},
	scopeTitle:  {"title_tr", "title_ar", "title_alt"},
	scopeAuthor: {"author_tr", "author_ar"},
}

// lowercased raw subfields per search scope, used for the wildcard branch
// of user-authored patterns.  physical_desc has no raw subfield (long text)
// and the combined shelfmarks field splits back into its two sources.
var wildcardScopeFields = map[string][]string{
	scopeAll: {
		"title_tr.raw", "title_ar.raw", "title_alt.raw",
		"author_tr.raw", "author_ar.raw",
		"library.raw", "collection.raw",
		"shelfmark_old.raw", "shelfmark_new.raw", "bib_id.raw",
	},
	scopeTitle:  {"title_tr.raw", "title_ar.raw", "title_alt.raw"},
	scopeAuthor: {"author_tr.raw", "author_ar.raw"},
}

const dateField = "date_year"

type sortOption struct {
	xid     string // translation ID for the option label
	field   string
	order   string
	missing string // placement of documents lacking the sort field
}

var sortOptions = map[string]sortOption{
	"id":             {xid: "SortDefault", field: "id", order: "asc"},
	"date-asc":       {xid: "SortDateAsc", field: dateField, order: "asc", missing: "_last"},
	"date-desc":      {xid: "SortDateDesc", field: dateField, order: "desc", missing: "_first"},
	"title-tr-asc":   {xid: "SortTitleTrAsc", field: "title_tr.keyword", order: "asc", missing: "_last"},
	"title-tr-desc":  {xid: "SortTitleTrDesc", field: "title_tr.keyword", order: "desc", missing: "_first"},
	"title-ar-asc":   {xid: "SortTitleArAsc", field: "title_ar.keyword", order: "asc", missing: "_last"},
	"title-ar-desc":  {xid: "SortTitleArDesc", field: "title_ar.keyword", order: "desc", missing: "_first"},
	"author-tr-asc":  {xid: "SortAuthorTrAsc", field: "author_tr.keyword", order: "asc", missing: "_last"},
	"author-tr-desc": {xid: "SortAuthorTrDesc", field: "author_tr.keyword", order: "desc", missing: "_first"},
	"author-ar-asc":  {xid: "SortAuthorArAsc", field: "author_ar.keyword", order: "asc", missing: "_last"},
	"author-ar-desc": {xid: "SortAuthorArDesc", field: "author_ar.keyword", order: "desc", missing: "_first"},
}

// stable listing order for clients
var sortOptionOrder = []string{
	"id",
	"date-asc", "date-desc",
	"title-tr-asc", "title-tr-desc",
	"title-ar-asc", "title-ar-desc",
	"author-tr-asc", "author-tr-desc",
	"author-ar-asc", "author-ar-desc",
}

type facetDefinition struct {
	ID       string
	XID      string // translation ID for the facet label
	Field    string // aggregation/filter field
	Limit    int    // bucket cap
	ListFile string // config key for the static reference list, if any
}

var facetDefinitions = []facetDefinition{
	{ID: "collection", XID: "FacetCollection", Field: "collection.raw", Limit: 300, ListFile: "collections"},
	{ID: "subject", XID: "FacetSubject", Field: "subject.keyword", Limit: 300, ListFile: "subjects"},
	{ID: "author", XID: "FacetAuthor", Field: "authors.keyword", Limit: 300},
	{ID: "language", XID: "FacetLanguage", Field: "languages.raw", Limit: 100, ListFile: "languages"},
}

func facetByID(id string) *facetDefinition {
	for i := range facetDefinitions {
		if facetDefinitions[i].ID == id {
			return &facetDefinitions[i]
		}
	}

	return nil
}

func containsWildcards(s string) bool {
	return strings.ContainsAny(s, "*?")
}

func scopedFields(field string) (analyzed []string, raw []string) {
	scope := scopeOrAll(field)

	if fields, ok := searchScopeFields[scope]; ok {
		return fields, wildcardScopeFields[scope]
	}

	// any other explicit field name is used literally as the sole field
	return []string{scope}, []string{scope + ".raw"}
}

func buildTermClause(term searchTerm) esClause {
	analyzed, raw := scopedFields(term.Field)

	fulltext := esMultiMatchClause(analyzed, term.Query)

	if containsWildcards(term.Query) == false {
		return fulltext
	}

	// user-authored wildcard pattern: union of per-field exact wildcard
	// matches on the lowercased raw values and the full-text match

	pattern := strings.ToLower(term.Query)

	var branches []esClause

	for _, field := range raw {
		branches = append(branches, esWildcardClause(field, pattern))
	}

	branches = append(branches, fulltext)

	return esBoolClause(esBoolQuery{Should: branches, MinimumShouldMatch: 1})
}

func shelfMarkPattern(text string) string {
	// pass user-authored patterns through verbatim; otherwise "contains"
	if containsWildcards(text) == true {
		return text
	}

	return fmt.Sprintf("*%s*", text)
}

func buildShelfMarkClause(text string) esClause {
	pattern := strings.ToLower(shelfMarkPattern(text))

	return esBoolClause(esBoolQuery{
		Should: []esClause{
			esWildcardClause("shelfmark_old.raw", pattern),
			esWildcardClause("shelfmark_new.raw", pattern),
		},
		MinimumShouldMatch: 1,
	})
}

func buildDateClause(f *searchFilters) esClause {
	hasBounds := f.DateFrom != nil || f.DateTo != nil

	switch {
	case hasBounds && f.IncludeUndated == true:
		// in range, or undated
		return esBoolClause(esBoolQuery{
			Should: []esClause{
				esRangeClause(dateField, f.DateFrom, f.DateTo),
				esBoolClause(esBoolQuery{MustNot: []esClause{esExistsClause(dateField)}}),
			},
			MinimumShouldMatch: 1,
		})

	case hasBounds:
		return esRangeClause(dateField, f.DateFrom, f.DateTo)

	case f.IncludeUndated == false:
		// no bounds, but undated excluded: the field must be present
		return esExistsClause(dateField)
	}

	return nil
}

func buildFilterClauses(f *searchFilters) []esClause {
	var clauses []esClause

	if f.Library != "" {
		clauses = append(clauses, esTermClause("library.raw", f.Library))
	}

	if len(f.Collections) > 0 {
		clauses = append(clauses, esTermsClause("collection.raw", f.Collections))
	}

	if len(f.Subjects) > 0 {
		clauses = append(clauses, esTermsClause("subject.keyword", f.Subjects))
	}

	if len(f.Authors) > 0 {
		clauses = append(clauses, esTermsClause("authors.keyword", f.Authors))
	}

	if len(f.Languages) > 0 {
		clauses = append(clauses, esTermsClause("languages.raw", f.Languages))
	}

	if f.ShelfMark != "" {
		clauses = append(clauses, buildShelfMarkClause(f.ShelfMark))
	}

	if date := buildDateClause(f); date != nil {
		clauses = append(clauses, date)
	}

	return clauses
}

type queryOptions struct {
	resultWindow int  // hard offset+size ceiling enforced by the backend
	requestAggs  bool // aggregations are suppressed for exports and pings
	fromOverride *int // export/ping windows bypass state pagination
	sizeOverride *int
}

func buildSearchQuery(state *searchState, opts queryOptions) (esRequestJSON, error) {
	var req esRequestJSON

	sort, ok := sortOptions[state.Sort]
	if ok == false {
		return req, fmt.Errorf("invalid sort: [%s]", state.Sort)
	}

	// pagination, clamped to the backend result window

	from := (state.Page - 1) * state.PerPage
	size := state.PerPage

	if opts.fromOverride != nil {
		from = *opts.fromOverride
	}

	if opts.sizeOverride != nil {
		size = *opts.sizeOverride
	}

	if from >= opts.resultWindow {
		return req, errBeyondResultWindow
	}

	if from+size > opts.resultWindow {
		size = opts.resultWindow - from
	}

	// search term clauses, anded together

	var must []esClause

	for _, term := range state.Terms {
		if term.Query == "" {
			continue
		}

		must = append(must, buildTermClause(term))
	}

	filter := buildFilterClauses(&state.Filters)

	if len(must) == 0 && len(filter) == 0 {
		req.Query = esMatchAllClause()
	} else {
		req.Query = esBoolClause(esBoolQuery{Must: must, Filter: filter})
	}

	req.From = from
	req.Size = size
	req.TrackTotalHits = true

	req.Sort = []map[string]esSortSpec{
		{sort.field: {Order: sort.order, Missing: sort.missing}},
	}

	// aggregations are only requested when something restricts the result
	// set; the initial browse-everything state gets none

	if opts.requestAggs == true && (len(must) > 0 || len(filter) > 0) {
		req.Aggs = make(map[string]esAggregation)

		for _, facet := range facetDefinitions {
			req.Aggs[facet.ID] = esAggregation{
				Terms: esTermsAgg{
					Field: facet.Field,
					Size:  facet.Limit,
					Order: map[string]string{"_count": "desc"},
				},
			}
		}
	}

	return req, nil
}
