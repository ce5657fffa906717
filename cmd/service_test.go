package main

import (
	"math/rand"
	"net/http"
	"net/http/httptest"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// shared test fixtures: an in-process service context wired to a stub
// search engine, and a gin context factory for handler-level tests.

const testMessages = `
[ServiceName]
other = "Manuscript Catalogue Search"

[ServiceDescription]
other = "service description"

[ErrorBeyondLimit]
other = "page is beyond the viewable result limit"

[ErrorSearchFailed]
other = "search failed"

[ErrorExportFailed]
other = "export failed"

[ErrorExportConfirm]
other = "export needs confirmation"

[FacetCollection]
other = "Collection"

[FacetSubject]
other = "Subject"

[FacetAuthor]
other = "Author"

[FacetLanguage]
other = "Language"

[SortDefault]
other = "Record number"

[SortDateAsc]
other = "Date (oldest first)"

[SortDateDesc]
other = "Date (newest first)"

[SortTitleTrAsc]
other = "Title, Turkish (A-Z)"

[SortTitleTrDesc]
other = "Title, Turkish (Z-A)"

[SortTitleArAsc]
other = "Title, Arabic (A-Z)"

[SortTitleArDesc]
other = "Title, Arabic (Z-A)"

[SortAuthorTrAsc]
other = "Author, Turkish (A-Z)"

[SortAuthorTrDesc]
other = "Author, Turkish (Z-A)"

[SortAuthorArAsc]
other = "Author, Arabic (A-Z)"

[SortAuthorArDesc]
other = "Author, Arabic (Z-A)"
`

func newTestService(engineURL string) *serviceContext {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.MustParseMessageFileBytes([]byte(testMessages), "en.toml")

	svc := serviceContext{
		randomSource: rand.New(rand.NewSource(1)),
		translations: serviceTranslations{bundle: bundle},
		config: &serviceConfig{
			Service: serviceConfigService{Port: "8080", DebounceMS: 300},
			Elastic: serviceConfigElastic{ResultWindow: 10000},
			Export:  serviceConfigExport{RowLimit: 2000},
		},
		elastic: serviceElastic{
			serviceClient:     http.DefaultClient,
			healthcheckClient: http.DefaultClient,
			url:               engineURL + "/manuscripts/_search",
		},
		lists: &referenceLists{
			lists: map[string][]string{
				"collection": {"Ayasofya", "Fatih", "Süleymaniye"},
				"subject":    {"Fıkıh", "Hadis", "Tefsir"},
				"language":   {"Arapça", "Farsça", "Türkçe"},
			},
		},
	}

	return &svc
}

func newTestGinContext(method string, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)

	return c, w
}

func newTestSearchContext(svc *serviceContext, c *gin.Context) *searchContext {
	cl := clientContext{}
	cl.init(svc, c)

	s := searchContext{}
	s.init(svc, &cl)

	return &s
}
