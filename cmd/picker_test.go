package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Şükrü", want: "sukru"},
		{in: "İstanbul", want: "istanbul"},
		{in: "Çarşı", want: "carsi"},
		{in: "Doğu", want: "dogu"},
		{in: "KİTÂB", want: "kitab"},
		{in: "Müteferrika", want: "muteferrika"},
		{in: "plain ascii", want: "plain ascii"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, foldValue(test.in), "input: %q", test.in)
	}
}

func TestFilterFacetValues(t *testing.T) {
	values := []FacetValue{
		{Value: "Şükrü Efendi"},
		{Value: "Süleymaniye"},
		{Value: "Fatih"},
	}

	// folding applies to both the candidates and the filter text
	filtered := filterFacetValues(values, "su")
	assert.Len(t, filtered, 2)
	assert.Equal(t, "Şükrü Efendi", filtered[0].Value)
	assert.Equal(t, "Süleymaniye", filtered[1].Value)

	filtered = filterFacetValues(values, "ŞÜK")
	assert.Len(t, filtered, 1)
	assert.Equal(t, "Şükrü Efendi", filtered[0].Value)

	assert.Empty(t, filterFacetValues(values, "xyzzy"))

	// empty filter passes everything through
	assert.Len(t, filterFacetValues(values, ""), 3)
}

func TestMarkSelected(t *testing.T) {
	values := []FacetValue{
		{Value: "Ayasofya"},
		{Value: "Fatih"},
		{Value: "Süleymaniye"},
	}

	markSelected(values, []string{"Fatih", "not present"})

	assert.False(t, values[0].Selected)
	assert.True(t, values[1].Selected)
	assert.False(t, values[2].Selected)
}

func TestSelectionSurvivesFiltering(t *testing.T) {
	values := []FacetValue{
		{Value: "Ayasofya"},
		{Value: "Fatih"},
	}

	// selection marking happens on the full set, so a checked value that
	// does not match the filter text is still checked when it reappears
	markSelected(values, []string{"Ayasofya"})
	filtered := filterFacetValues(values, "fatih")

	assert.Len(t, filtered, 1)
	assert.True(t, values[0].Selected)
}

func TestWindowFacetValues(t *testing.T) {
	values := []FacetValue{
		{Value: "a"}, {Value: "b"}, {Value: "c"}, {Value: "d"},
	}

	window := windowFacetValues(values, 1, 2)
	assert.Len(t, window, 2)
	assert.Equal(t, "b", window[0].Value)
	assert.Equal(t, "c", window[1].Value)

	// window past the end is shortened
	window = windowFacetValues(values, 3, 10)
	assert.Len(t, window, 1)
	assert.Equal(t, "d", window[0].Value)

	// start past the end yields nothing
	assert.Empty(t, windowFacetValues(values, 10, 2))

	// nonsense bounds fall back to everything from the start
	assert.Len(t, windowFacetValues(values, -5, 0), 4)
}
