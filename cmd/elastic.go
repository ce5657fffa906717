package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

func (s *searchContext) convertAggregations() error {
	// convert the response "aggregations" block to internal structures.
	// the block is keyed by facet name, and nested aggregations or engine
	// additions can place non-bucket values alongside the bucket maps, so
	// we read it as map[string]interface{}, keep only the map-valued keys,
	// and decode the result into a map[string]esResponseAgg type.

	aggsRaw := make(map[string]interface{})
	var aggs map[string]esResponseAgg

	for key, val := range s.esRes.AggregationsRaw {
		switch val.(type) {
		case map[string]interface{}:
			aggsRaw[key] = val
		}
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     &aggs,
		TagName:    "json",
		ZeroFields: true,
	}

	dec, _ := mapstructure.NewDecoder(cfg)

	if mapDecErr := dec.Decode(aggsRaw); mapDecErr != nil {
		s.log("mapstructure.Decode() failed: %s", mapDecErr.Error())
		return fmt.Errorf("failed to decode aggregations map")
	}

	s.esRes.Aggregations = aggs

	return nil
}

func (s *searchContext) populateMetaFields() {
	// fill out meta fields for easier use later

	s.esRes.meta = &s.esReq.meta

	s.esRes.meta.start = s.esReq.json.From
	s.esRes.meta.numRecords = len(s.esRes.Hits.Hits)
	s.esRes.meta.totalRecords = s.esRes.Hits.Total.Value
}

func (s *searchContext) elasticQuery() error {
	jsonBytes, jsonErr := json.Marshal(s.esReq.json)
	if jsonErr != nil {
		s.log("Marshal() failed: %s", jsonErr.Error())
		return fmt.Errorf("failed to marshal search request json")
	}

	req, reqErr := http.NewRequest("POST", s.svc.elastic.url, bytes.NewBuffer(jsonBytes))
	if reqErr != nil {
		s.log("NewRequest() failed: %s", reqErr.Error())
		return fmt.Errorf("failed to create search request")
	}

	req.Header.Set("Content-Type", "application/json")

	if s.svc.elastic.username != "" {
		req.SetBasicAuth(s.svc.elastic.username, s.svc.elastic.password)
	}

	if s.client.opts.verbose == true {
		s.log("[ES] req: [%s]", string(jsonBytes))
	} else {
		s.log("[ES] req: { from = %d, size = %d, aggs = %v }", s.esReq.json.From, s.esReq.json.Size, s.esReq.meta.requestAggs)
	}

	start := time.Now()
	res, resErr := s.esClient.Do(req)
	elapsedMS := int64(time.Since(start) / time.Millisecond)

	// external service failure logging (scenario 1)

	if resErr != nil {
		status := http.StatusBadRequest
		errMsg := resErr.Error()
		if strings.Contains(errMsg, "Timeout") {
			status = http.StatusRequestTimeout
			errMsg = fmt.Sprintf("%s timed out", s.svc.elastic.url)
		} else if strings.Contains(errMsg, "connection refused") {
			status = http.StatusServiceUnavailable
			errMsg = fmt.Sprintf("%s refused connection", s.svc.elastic.url)
		}

		s.log("client.Do() failed: %s", resErr.Error())
		s.log("ERROR: Failed response from POST %s - %d:%s. Elapsed Time: %d (ms)", s.svc.elastic.url, status, errMsg, elapsedMS)
		return fmt.Errorf("failed to receive search response")
	}

	defer res.Body.Close()

	var esRes esResponse

	decoder := json.NewDecoder(res.Body)

	// external service failure logging (scenario 2)

	if decErr := decoder.Decode(&esRes); decErr != nil {
		s.log("Decode() failed: %s", decErr.Error())
		s.log("ERROR: Failed response from POST %s - %d:%s. Elapsed Time: %d (ms)", s.svc.elastic.url, http.StatusInternalServerError, decErr.Error(), elapsedMS)
		return fmt.Errorf("failed to decode search response")
	}

	s.esRes = &esRes

	// quick validation; the engine reports request errors in the body

	if res.StatusCode != http.StatusOK || esRes.Error != nil {
		reason := fmt.Sprintf("http status %d", res.StatusCode)
		if esRes.Error != nil {
			reason = fmt.Sprintf("%s: %s", esRes.Error.Type, esRes.Error.Reason)
		}

		s.log("[ES] res: error: { %s }", reason)
		return fmt.Errorf("%d - %s", res.StatusCode, reason)
	}

	// external service success logging

	s.log("Successful search response from POST %s. Elapsed Time: %d (ms)", s.svc.elastic.url, elapsedMS)

	if convErr := s.convertAggregations(); convErr != nil {
		return convErr
	}

	s.populateMetaFields()

	s.log("[ES] res: { took = %d, from = %d, hits = %d, total = %d }", esRes.Took, esRes.meta.start, esRes.meta.numRecords, esRes.meta.totalRecords)

	return nil
}
