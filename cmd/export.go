package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// csv export of a committed search.  the export re-runs the query with an
// export-sized window and no aggregations; results beyond the export row
// limit are silently truncated, and oversized exports need an explicit
// confirmation from the caller.

var csvColumns = []string{
	"id", "bib_id",
	"title_tr", "title_ar", "title_alt",
	"author_tr", "author_ar",
	"classification", "subject",
	"library", "collection",
	"date_text", "date_year",
	"languages",
	"shelfmark_old", "shelfmark_new",
	"physical_desc", "external_url",
}

func csvCell(val string) string {
	// every cell is quote-wrapped, with embedded quotes doubled
	return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
}

func csvRow(cells []string) string {
	quoted := make([]string, len(cells))

	for i, cell := range cells {
		quoted[i] = csvCell(cell)
	}

	return strings.Join(quoted, ",")
}

func recordCells(r *ManuscriptRecord) []string {
	dateYear := ""
	if r.DateYear != nil {
		dateYear = strconv.Itoa(*r.DateYear)
	}

	return []string{
		r.ID, r.BibID,
		r.TitleTR, r.TitleAR, r.TitleAlt,
		r.AuthorTR, r.AuthorAR,
		r.Classification, r.Subject,
		r.Library, r.Collection,
		r.DateText, dateYear,
		strings.Join(r.Languages, ", "),
		r.ShelfMarkOld, r.ShelfMarkNew,
		r.PhysicalDesc, r.ExternalURL,
	}
}

func recordsToCSV(records []ManuscriptRecord) string {
	rows := []string{csvRow(csvColumns)}

	for i := range records {
		rows = append(rows, csvRow(recordCells(&records[i])))
	}

	return strings.Join(rows, "\n")
}

func exportFilename(prefix string) string {
	if prefix == "" {
		prefix = "manuscripts"
	}

	return fmt.Sprintf("%s-%s.csv", prefix, time.Now().Format("2006-01-02"))
}

func (s *searchContext) exportTotal() (int, searchResponse) {
	// cheap count-only query to learn the result total before committing
	// to the full export fetch

	opts := s.queryOptions()
	opts.requestAggs = false

	zero := 0
	opts.fromOverride = &zero
	opts.sizeOverride = &zero

	if resp := s.performQuery(opts); resp.err != nil {
		return 0, resp
	}

	return s.esRes.meta.totalRecords, searchResponse{status: http.StatusOK}
}

func (s *searchContext) handleExportRequest(c *gin.Context) searchResponse {
	if err := s.bindStateFromRequest(c); err != nil {
		return searchResponse{status: http.StatusBadRequest, err: err}
	}

	// absent fields export as empty cells, never as display placeholders
	s.client.opts.display = false

	confirmed := boolOptionWithFallback(c.Query("confirm"), false)
	rowLimit := s.svc.config.Export.RowLimit

	s.log("[EXPORT] url: [%s]  confirm: [%v]", encodeState(s.state), confirmed)

	total, resp := s.exportTotal()
	if resp.err != nil {
		return searchResponse{status: resp.status, err: fmt.Errorf("%s: %s", s.client.localize("ErrorExportFailed"), resp.err.Error())}
	}

	if total > rowLimit && confirmed == false {
		s.log("[EXPORT] refusing unconfirmed export of %d rows (limit %d)", total, rowLimit)
		return searchResponse{status: http.StatusConflict, err: fmt.Errorf("%s", s.client.localize("ErrorExportConfirm"))}
	}

	rows := total
	if rows > rowLimit {
		rows = rowLimit
	}

	records := []ManuscriptRecord{}

	if rows > 0 {
		opts := s.queryOptions()
		opts.requestAggs = false

		zero := 0
		opts.fromOverride = &zero
		opts.sizeOverride = &rows

		if resp := s.performQuery(opts); resp.err != nil {
			return searchResponse{status: resp.status, err: fmt.Errorf("%s: %s", s.client.localize("ErrorExportFailed"), resp.err.Error())}
		}

		records = s.populateRecords()
	}

	csv := recordsToCSV(records)
	filename := exportFilename(s.svc.config.Export.FilenamePrefix)

	s.log("[EXPORT] %d rows as [%s]", len(records), filename)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))

	return searchResponse{status: http.StatusOK}
}
