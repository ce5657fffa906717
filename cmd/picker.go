package main

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// candidate filtering for the searchable multi-select control: matches are
// case-insensitive, diacritic-insensitive substring matches, with the
// turkish letters folded to their ascii bases so that "su" finds "Şükrü".

const defaultPickerRows = 100

var turkishFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ş", "s", "Ş", "s",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ç", "c", "Ç", "c",
)

// removes combining marks left over after canonical decomposition
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldValue(s string) string {
	folded := turkishFold.Replace(s)

	if stripped, _, err := transform.String(markStripper, folded); err == nil {
		folded = stripped
	}

	return strings.ToLower(folded)
}

func filterFacetValues(values []FacetValue, query string) []FacetValue {
	if query == "" {
		return values
	}

	needle := foldValue(query)

	var filtered []FacetValue

	for _, val := range values {
		if strings.Contains(foldValue(val.Value), needle) == true {
			filtered = append(filtered, val)
		}
	}

	return filtered
}

// markSelected flags checked values against the full candidate set, before
// any filtering, so a hidden selection is never dropped by the view.
func markSelected(values []FacetValue, selected []string) {
	if len(selected) == 0 {
		return
	}

	checked := make(map[string]bool)
	for _, val := range selected {
		checked[val] = true
	}

	for i := range values {
		if checked[values[i].Value] == true {
			values[i].Selected = true
		}
	}
}

func windowFacetValues(values []FacetValue, start int, rows int) []FacetValue {
	if start < 0 {
		start = 0
	}

	if start >= len(values) {
		return []FacetValue{}
	}

	end := start + rows
	if rows <= 0 || end > len(values) {
		end = len(values)
	}

	return values[start:end]
}
