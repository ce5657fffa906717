package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

type clientOpts struct {
	debug   bool // controls whether debug info is added to search results
	verbose bool // controls whether full engine requests are logged
	display bool // controls whether absent record fields are placeholder-filled
}

type clientContext struct {
	reqID       string          // internally generated
	start       time.Time       // internally set
	opts        clientOpts      // options set by client
	localizer   *i18n.Localizer // per-request localization
	ginCtx      *gin.Context    // gin context
	acceptLang  string          // first language requested by client
	contentLang string          // actual language we are responding with
}

func boolOptionWithFallback(opt string, fallback bool) bool {
	var err error
	var val bool

	if val, err = strconv.ParseBool(opt); err != nil {
		val = fallback
	}

	return val
}

func (c *clientContext) init(svc *serviceContext, ctx *gin.Context) {
	c.ginCtx = ctx

	c.start = time.Now()
	c.reqID = fmt.Sprintf("%08x", svc.randomSource.Uint32())

	// determine client preferred language

	c.acceptLang = "en"
	if ctx != nil {
		if lang := strings.Split(ctx.GetHeader("Accept-Language"), ",")[0]; lang != "" {
			c.acceptLang = lang
		}
	}

	c.localizer = i18n.NewLocalizer(svc.translations.bundle, c.acceptLang)

	// kludge to get the response language by checking the tag value returned for a known message ID
	_, tag, _ := c.localizer.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: "ServiceName"})
	c.contentLang = tag.String()

	if ctx != nil {
		ctx.Header("Content-Language", c.contentLang)

		c.opts.debug = boolOptionWithFallback(ctx.Query("debug"), false)
		c.opts.verbose = boolOptionWithFallback(ctx.Query("verbose"), false)
		c.opts.display = boolOptionWithFallback(ctx.Query("display"), false)
	}
}

func (c *clientContext) logRequest() {
	c.log("------------------------------[ NEW REQUEST ]------------------------------")

	query := ""
	if c.ginCtx.Request.URL.RawQuery != "" {
		query = fmt.Sprintf("?%s", c.ginCtx.Request.URL.RawQuery)
	}

	c.log("[REQUEST] %s %s%s  (%s) => (%s)", c.ginCtx.Request.Method, c.ginCtx.Request.URL.Path, query, c.acceptLang, c.contentLang)
}

func (c *clientContext) logResponse(resp searchResponse) {
	msg := fmt.Sprintf("[RESPONSE] status: %d", resp.status)

	if resp.err != nil {
		msg = msg + fmt.Sprintf(", error: %s", resp.err.Error())
	}

	c.log("%s", msg)
}

func (c *clientContext) printf(prefix, format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)

	if prefix != "" {
		str = strings.Join([]string{prefix, str}, " ")
	}

	log.Printf("[%s] %s", c.reqID, str)
}

func (c *clientContext) log(format string, args ...interface{}) {
	c.printf("", format, args...)
}

func (c *clientContext) err(format string, args ...interface{}) {
	c.printf("ERROR:", format, args...)
}

func (c *clientContext) localize(id string) string {
	return c.localizer.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
}

func (c *clientContext) localizedServiceOptions(svc *serviceContext) ServiceOptions {
	opts := ServiceOptions{
		Name:        c.localize("ServiceName"),
		Description: c.localize("ServiceDescription"),
		PageSizes:   allowedPerPage,
		DebounceMS:  svc.config.Service.DebounceMS,
	}

	for _, id := range sortOptionOrder {
		opts.SortOptions = append(opts.SortOptions, SortOptionInfo{
			ID:    id,
			Label: c.localize(sortOptions[id].xid),
		})
	}

	for _, def := range facetDefinitions {
		source := facetSourceResults
		if def.ListFile != "" {
			source = facetSourceStatic
		}

		opts.Facets = append(opts.Facets, Facet{
			ID:     def.ID,
			Label:  c.localize(def.XID),
			Source: source,
		})
	}

	return opts
}
