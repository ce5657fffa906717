package main

// elasticsearch request/response wire types.  the query dialect is the
// json dsl; clauses are built as free-form maps since the dsl keys on
// clause type, with typed wrappers below for the shapes we actually send.

type esClause map[string]interface{}

func esTermClause(field string, value string) esClause {
	return esClause{"term": map[string]interface{}{field: value}}
}

func esTermsClause(field string, values []string) esClause {
	return esClause{"terms": map[string]interface{}{field: values}}
}

func esWildcardClause(field string, pattern string) esClause {
	return esClause{"wildcard": map[string]interface{}{field: pattern}}
}

func esMultiMatchClause(fields []string, query string) esClause {
	return esClause{"multi_match": map[string]interface{}{
		"query":    query,
		"fields":   fields,
		"operator": "and",
	}}
}

func esRangeClause(field string, gte *int, lte *int) esClause {
	bounds := make(map[string]interface{})

	if gte != nil {
		bounds["gte"] = *gte
	}

	if lte != nil {
		bounds["lte"] = *lte
	}

	return esClause{"range": map[string]interface{}{field: bounds}}
}

func esExistsClause(field string) esClause {
	return esClause{"exists": map[string]interface{}{"field": field}}
}

func esMatchAllClause() esClause {
	return esClause{"match_all": map[string]interface{}{}}
}

type esBoolQuery struct {
	Must               []esClause `json:"must,omitempty"`
	Should             []esClause `json:"should,omitempty"`
	Filter             []esClause `json:"filter,omitempty"`
	MustNot            []esClause `json:"must_not,omitempty"`
	MinimumShouldMatch int        `json:"minimum_should_match,omitempty"`
}

func esBoolClause(b esBoolQuery) esClause {
	return esClause{"bool": b}
}

type esSortSpec struct {
	Order   string `json:"order"`
	Missing string `json:"missing,omitempty"`
}

type esTermsAgg struct {
	Field string            `json:"field"`
	Size  int               `json:"size"`
	Order map[string]string `json:"order,omitempty"`
}

type esAggregation struct {
	Terms esTermsAgg `json:"terms"`
}

type esRequest struct {
	json esRequestJSON
	meta esMeta
}

type esRequestJSON struct {
	Query          esClause                 `json:"query"`
	From           int                      `json:"from"`
	Size           int                      `json:"size"`
	Sort           []map[string]esSortSpec  `json:"sort,omitempty"`
	Aggs           map[string]esAggregation `json:"aggs,omitempty"`
	TrackTotalHits bool                     `json:"track_total_hits"`
}

type esMeta struct {
	client       *clientContext
	start        int
	numRecords   int // records in this response
	totalRecords int // total records available
	requestAggs  bool
}

type esDocument map[string]interface{}

type esHit struct {
	ID     string     `json:"_id"`
	Score  float64    `json:"_score"`
	Source esDocument `json:"_source"`
}

type esResponseHits struct {
	Total struct {
		Value    int    `json:"value"`
		Relation string `json:"relation,omitempty"`
	} `json:"total"`
	MaxScore float64 `json:"max_score,omitempty"`
	Hits     []esHit `json:"hits,omitempty"`
}

type esBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

type esResponseAgg struct {
	DocCountErrorUpperBound int        `json:"doc_count_error_upper_bound"`
	SumOtherDocCount        int        `json:"sum_other_doc_count"`
	Buckets                 []esBucket `json:"buckets,omitempty"`
}

type esError struct {
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// a catch-all for search and ping responses
type esResponse struct {
	Took            int                      `json:"took,omitempty"`
	TimedOut        bool                     `json:"timed_out,omitempty"`
	Hits            esResponseHits           `json:"hits,omitempty"`
	AggregationsRaw map[string]interface{}   `json:"aggregations,omitempty"`
	Aggregations    map[string]esResponseAgg // parsed from AggregationsRaw
	Error           *esError                 `json:"error,omitempty"`
	Status          int                      `json:"status,omitempty"`
	meta            *esMeta                  // pointer to struct in corresponding esRequest
}
