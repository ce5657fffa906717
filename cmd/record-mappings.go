package main

import (
	"fmt"
	"strings"
)

// functions that map source documents into catalogue records.  documents
// are flat json objects with every field optional; extraction tolerates
// any missing or oddly-typed value.

const displayPlaceholder = "—"

func (d esDocument) getValues(key string) []string {
	v, ok := d[key]
	if ok == false {
		return []string{}
	}

	switch t := v.(type) {
	case string:
		return []string{t}

	case []interface{}:
		var values []string
		for _, item := range t {
			if s, ok := item.(string); ok == true {
				values = append(values, s)
			}
		}
		return values

	case float64:
		// json numbers decode as float64; ids and years are integral
		return []string{fmt.Sprintf("%.0f", t)}

	default:
		return []string{}
	}
}

func (d esDocument) getValue(key string) string {
	return firstElementOf(d.getValues(key))
}

func (d esDocument) getIntValue(key string) *int {
	v, ok := d[key]
	if ok == false {
		return nil
	}

	if f, ok := v.(float64); ok == true {
		n := int(f)
		return &n
	}

	return nil
}

func (s *searchContext) populateRecord(hit *esHit) ManuscriptRecord {
	doc := hit.Source

	r := ManuscriptRecord{
		ID:             doc.getValue("id"),
		BibID:          doc.getValue("bib_id"),
		TitleTR:        doc.getValue("title_tr"),
		TitleAR:        doc.getValue("title_ar"),
		TitleAlt:       doc.getValue("title_alt"),
		AuthorTR:       doc.getValue("author_tr"),
		AuthorAR:       doc.getValue("author_ar"),
		Classification: doc.getValue("classification"),
		Subject:        doc.getValue("subject"),
		Library:        doc.getValue("library"),
		Collection:     doc.getValue("collection"),
		DateText:       doc.getValue("date_text"),
		DateYear:       doc.getIntValue("date_year"),
		Languages:      doc.getValues("languages"),
		ShelfMarkOld:   doc.getValue("shelfmark_old"),
		ShelfMarkNew:   doc.getValue("shelfmark_new"),
		PhysicalDesc:   doc.getValue("physical_desc"),
		ExternalURL:    doc.getValue("external_url"),
	}

	if r.ID == "" {
		r.ID = hit.ID
	}

	return r
}

func (s *searchContext) populateRecords() []ManuscriptRecord {
	records := []ManuscriptRecord{}

	for i := range s.esRes.Hits.Hits {
		record := s.populateRecord(&s.esRes.Hits.Hits[i])

		if s.client.opts.display == true {
			record = displayRecord(record)
		}

		records = append(records, record)
	}

	return records
}

// displayRecord fills absent values with a placeholder for table rendering
func displayRecord(r ManuscriptRecord) ManuscriptRecord {
	fill := func(s *string) {
		if strings.TrimSpace(*s) == "" {
			*s = displayPlaceholder
		}
	}

	fill(&r.TitleTR)
	fill(&r.TitleAR)
	fill(&r.AuthorTR)
	fill(&r.AuthorAR)
	fill(&r.Library)
	fill(&r.Collection)
	fill(&r.Subject)
	fill(&r.DateText)
	fill(&r.ShelfMarkOld)
	fill(&r.ShelfMarkNew)

	return r
}

func (s *searchContext) populateFacet(def *facetDefinition, agg esResponseAgg) Facet {
	facet := Facet{
		ID:     def.ID,
		Source: facetSourceResults,
	}

	if s.client != nil {
		facet.Label = s.client.localize(def.XID)
	}

	selected := s.state.Filters.selectedValues(def.ID)

	for _, bucket := range agg.Buckets {
		facet.Values = append(facet.Values, FacetValue{
			Value:    bucket.Key,
			Count:    bucket.DocCount,
			Selected: selected[bucket.Key],
		})
	}

	return facet
}

func (s *searchContext) populateFacetList() []Facet {
	if len(s.esRes.Aggregations) == 0 {
		return nil
	}

	var facets []Facet

	for i := range facetDefinitions {
		def := &facetDefinitions[i]

		agg, ok := s.esRes.Aggregations[def.ID]
		if ok == false {
			continue
		}

		facets = append(facets, s.populateFacet(def, agg))
	}

	return facets
}

// selectedValues indexes the committed filter values for one facet
func (f *searchFilters) selectedValues(facetID string) map[string]bool {
	var values []string

	switch facetID {
	case "collection":
		values = f.Collections
	case "subject":
		values = f.Subjects
	case "author":
		values = f.Authors
	case "language":
		values = f.Languages
	}

	selected := make(map[string]bool)
	for _, val := range values {
		selected[val] = true
	}

	return selected
}
