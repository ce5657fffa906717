package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type searchContext struct {
	svc      *serviceContext
	client   *clientContext
	state    *searchState
	esClient *http.Client
	esReq    *esRequest
	esRes    *esResponse
	result   *SearchResult
}

type searchResponse struct {
	status int         // http status code
	data   interface{} // data to return as JSON
	err    error       // error, if any
}

func (s *searchContext) init(svc *serviceContext, c *clientContext) {
	s.svc = svc
	s.client = c
	s.esClient = svc.elastic.serviceClient
}

func (s *searchContext) log(format string, args ...interface{}) {
	s.client.log(format, args...)
}

func (s *searchContext) err(format string, args ...interface{}) {
	s.client.err(format, args...)
}

func (s *searchContext) buildRequest(opts queryOptions) searchResponse {
	json, err := buildSearchQuery(s.state, opts)

	if err != nil {
		if errors.Is(err, errBeyondResultWindow) == true {
			// refused up front; no request is dispatched
			return searchResponse{status: http.StatusBadRequest, err: errors.New(s.client.localize("ErrorBeyondLimit"))}
		}

		return searchResponse{status: http.StatusBadRequest, err: err}
	}

	s.esReq = &esRequest{json: json}
	s.esReq.meta.client = s.client
	s.esReq.meta.requestAggs = opts.requestAggs

	return searchResponse{status: http.StatusOK}
}

func (s *searchContext) performQuery(opts queryOptions) searchResponse {
	s.log("**********  START SEARCH QUERY  **********")

	resp := s.buildRequest(opts)

	if resp.err != nil {
		s.err("query creation error: %s", resp.err.Error())
		s.log("**********   END SEARCH QUERY   **********")
		return resp
	}

	err := s.elasticQuery()

	s.log("**********   END SEARCH QUERY   **********")

	if err != nil {
		s.err("query execution error: %s", err.Error())
		return searchResponse{status: http.StatusInternalServerError, err: err}
	}

	return searchResponse{status: http.StatusOK}
}

func (s *searchContext) queryOptions() queryOptions {
	return queryOptions{
		resultWindow: s.svc.config.Elastic.ResultWindow,
		requestAggs:  true,
	}
}

func (s *searchContext) buildSearchResult() {
	result := SearchResult{
		StatusCode:        http.StatusOK,
		Total:             s.esRes.meta.totalRecords,
		Page:              s.state.Page,
		PerPage:           s.state.PerPage,
		Records:           s.populateRecords(),
		FacetList:         s.populateFacetList(),
		SearchHasOccurred: s.state.hasClauses(),
		URL:               encodeState(s.state),
		ElapsedMS:         int64(time.Since(s.client.start) / time.Millisecond),
	}

	if s.client.opts.debug == true {
		result.Debug = &SearchResultDebug{
			RequestID: s.client.reqID,
			MaxScore:  s.esRes.Hits.MaxScore,
		}
	}

	s.result = &result
}

func (s *searchContext) getSearchResults() searchResponse {
	if resp := s.performQuery(s.queryOptions()); resp.err != nil {
		return resp
	}

	s.buildSearchResult()

	return searchResponse{status: http.StatusOK}
}

func (s *searchContext) bindStateFromRequest(c *gin.Context) error {
	if c.Request.Method == http.MethodGet {
		s.state = decodeState(c.Request.URL.Query())
		return nil
	}

	var state searchState

	if err := c.BindJSON(&state); err != nil {
		return err
	}

	state.normalize()
	s.state = &state

	return nil
}

func (s *searchContext) handleSearchRequest(c *gin.Context) searchResponse {
	if err := s.bindStateFromRequest(c); err != nil {
		return searchResponse{status: http.StatusBadRequest, err: err}
	}

	s.log("[SEARCH] url: [%s]", encodeState(s.state))

	if resp := s.getSearchResults(); resp.err != nil {
		if resp.status == http.StatusInternalServerError {
			resp.err = fmt.Errorf("%s: %s", s.client.localize("ErrorSearchFailed"), resp.err.Error())
		}

		return resp
	}

	return searchResponse{status: http.StatusOK, data: s.result}
}

// handleFacetValuesRequest backs the searchable multi-select control for
// one facet: candidates come from the static reference list until the
// state carries clauses, then from fresh result aggregations.
func (s *searchContext) handleFacetValuesRequest(c *gin.Context) searchResponse {
	def := facetByID(c.Param("facet"))
	if def == nil {
		return searchResponse{status: http.StatusNotFound, err: errors.New("no such facet")}
	}

	s.state = decodeState(c.Request.URL.Query())

	result := FacetValuesResult{
		StatusCode: http.StatusOK,
		Facet:      def.ID,
		Query:      c.Query("filter"),
		Start:      integerWithFallback(c.Query("start"), 0, 0),
		Rows:       integerWithFallback(c.Query("rows"), 1, defaultPickerRows),
		DebounceMS: s.svc.config.Service.DebounceMS,
	}

	var candidates []FacetValue

	if s.state.hasClauses() == true {
		opts := s.queryOptions()

		zero := 0
		opts.fromOverride = &zero
		opts.sizeOverride = &zero

		if resp := s.performQuery(opts); resp.err != nil {
			return resp
		}

		result.Source = facetSourceResults
		candidates = facetValuesFromBuckets(s.esRes.Aggregations[def.ID].Buckets)
	} else {
		result.Source = facetSourceStatic
		candidates = s.svc.lists.facetValues(def.ID)
	}

	// checked values are tracked against the full candidate set, so that
	// filtering the view never drops a hidden selection

	selected := splitList(c.Query("selected"))
	markSelected(candidates, selected)

	filtered := filterFacetValues(candidates, result.Query)

	result.Total = len(filtered)
	result.Values = windowFacetValues(filtered, result.Start, result.Rows)

	return searchResponse{status: http.StatusOK, data: result}
}

func (s *searchContext) handlePingRequest() searchResponse {
	s.esClient = s.svc.elastic.healthcheckClient
	s.state = defaultSearchState()

	// we are not interested in records, just connectivity

	opts := s.queryOptions()
	opts.requestAggs = false

	zero := 0
	opts.fromOverride = &zero
	opts.sizeOverride = &zero

	if resp := s.performQuery(opts); resp.err != nil {
		return resp
	}

	return searchResponse{status: http.StatusOK}
}
