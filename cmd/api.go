package main

// schemas for the service api.  every record field is optional in the
// index; clients render absent values as placeholders, never as errors.

// ManuscriptRecord is one result row, mapped from a flat source document.
type ManuscriptRecord struct {
	ID             string   `json:"id,omitempty"`
	BibID          string   `json:"bib_id,omitempty"`
	TitleTR        string   `json:"title_tr,omitempty"`
	TitleAR        string   `json:"title_ar,omitempty"`
	TitleAlt       string   `json:"title_alt,omitempty"`
	AuthorTR       string   `json:"author_tr,omitempty"`
	AuthorAR       string   `json:"author_ar,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Subject        string   `json:"subject,omitempty"`
	Library        string   `json:"library,omitempty"`
	Collection     string   `json:"collection,omitempty"`
	DateText       string   `json:"date_text,omitempty"`
	DateYear       *int     `json:"date_year,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	ShelfMarkOld   string   `json:"shelfmark_old,omitempty"`
	ShelfMarkNew   string   `json:"shelfmark_new,omitempty"`
	PhysicalDesc   string   `json:"physical_desc,omitempty"`
	ExternalURL    string   `json:"external_url,omitempty"`
}

// FacetValue is one selectable value with its result count, when known.
type FacetValue struct {
	Value    string `json:"value"`
	Count    int    `json:"count,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Facet describes one filterable field and its current candidate source.
type Facet struct {
	ID     string       `json:"id"`
	Label  string       `json:"label,omitempty"`
	Source string       `json:"source"` // "static" or "results"
	Values []FacetValue `json:"values,omitempty"`
}

// SearchResultDebug is returned when the client passes the "debug" query
// parameter.
type SearchResultDebug struct {
	RequestID string  `json:"request_id"`
	MaxScore  float64 `json:"max_score"`
}

// SearchResult is the response to a search request.
type SearchResult struct {
	StatusCode        int                `json:"status_code"`
	StatusMessage     string             `json:"status_message,omitempty"`
	Total             int                `json:"total"`
	Page              int                `json:"page"`
	PerPage           int                `json:"per_page"`
	Records           []ManuscriptRecord `json:"records"`
	FacetList         []Facet            `json:"facet_list,omitempty"`
	SearchHasOccurred bool               `json:"search_has_occurred"`
	URL               string             `json:"url"`
	ElapsedMS         int64              `json:"elapsed_ms"`
	Debug             *SearchResultDebug `json:"debug,omitempty"`
}

// FacetValuesResult backs the searchable multi-select control for one facet.
type FacetValuesResult struct {
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message,omitempty"`
	Facet         string       `json:"facet"`
	Source        string       `json:"source"`
	Query         string       `json:"query,omitempty"`
	Start         int          `json:"start"`
	Rows          int          `json:"rows"`
	Total         int          `json:"total"` // filtered candidates, pre-windowing
	DebounceMS    int          `json:"debounce_ms"`
	Values        []FacetValue `json:"values"`
}

// CommitRequest asks the service to apply a pending state edit.
type CommitRequest struct {
	Committed *searchState `json:"committed,omitempty"`
	Pending   *searchState `json:"pending,omitempty"`
	Action    string       `json:"action,omitempty"`
}

// CommitResult carries the new committed state and its canonical url.
type CommitResult struct {
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message,omitempty"`
	State         *searchState `json:"state,omitempty"`
	URL           string       `json:"url"`
}

// SortOptionInfo describes one sort key for client dropdowns.
type SortOptionInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ServiceOptions lists the fixed search surface for clients.
type ServiceOptions struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	SortOptions []SortOptionInfo `json:"sort_options"`
	Facets      []Facet          `json:"facets"`
	PageSizes   []int            `json:"page_sizes"`
	DebounceMS  int              `json:"debounce_ms"`
}
