package main

import (
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// git commit used for this build; supplied at compile time
var gitCommit string

type serviceVersion struct {
	BuildVersion string `json:"build,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
}

type serviceElastic struct {
	serviceClient     *http.Client
	healthcheckClient *http.Client
	url               string
	username          string
	password          string
}

type serviceTranslations struct {
	bundle *i18n.Bundle
}

type serviceContext struct {
	randomSource *rand.Rand
	config       *serviceConfig
	translations serviceTranslations
	version      serviceVersion
	elastic      serviceElastic
	lists        *referenceLists
}

func (svc *serviceContext) initVersion() {
	buildVersion := "unknown"
	files, _ := filepath.Glob("buildtag.*")
	if len(files) == 1 {
		buildVersion = strings.Replace(files[0], "buildtag.", "", 1)
	}

	svc.version = serviceVersion{
		BuildVersion: buildVersion,
		GoVersion:    fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		GitCommit:    gitCommit,
	}

	log.Printf("[SERVICE] version.BuildVersion = [%s]", svc.version.BuildVersion)
	log.Printf("[SERVICE] version.GoVersion    = [%s]", svc.version.GoVersion)
	log.Printf("[SERVICE] version.GitCommit    = [%s]", svc.version.GitCommit)
}

func (svc *serviceContext) initElastic() {
	// client setup

	connTimeout := timeoutWithMinimum(svc.config.Elastic.ConnTimeout, 5)
	readTimeout := timeoutWithMinimum(svc.config.Elastic.ReadTimeout, 5)

	dialer := &net.Dialer{
		Timeout:   time.Duration(connTimeout) * time.Second,
		KeepAlive: 60 * time.Second,
	}

	serviceClient := &http.Client{
		Timeout: time.Duration(readTimeout) * time.Second,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100, // we are hitting one search host, so
			MaxIdleConnsPerHost: 100, // these two values can be the same
			IdleConnTimeout:     90 * time.Second,
		},
	}

	healthcheckClient := &http.Client{
		Timeout: time.Duration(connTimeout) * time.Second,
		Transport: &http.Transport{
			DialContext: dialer.DialContext,
		},
	}

	svc.elastic = serviceElastic{
		url:               fmt.Sprintf("%s/%s/_search", svc.config.Elastic.Host, svc.config.Elastic.Index),
		serviceClient:     serviceClient,
		healthcheckClient: healthcheckClient,
		username:          svc.config.Elastic.Username,
		password:          svc.config.Elastic.Password,
	}

	log.Printf("[SERVICE] elastic.url           = [%s]", svc.elastic.url)
	log.Printf("[SERVICE] elastic.resultWindow  = [%d]", svc.config.Elastic.ResultWindow)
}

func (svc *serviceContext) initTranslations() {
	defaultLang := language.English

	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	toml, _ := filepath.Glob("i18n/*.toml")
	for _, f := range toml {
		bundle.MustLoadMessageFile(f)
	}

	svc.translations = serviceTranslations{
		bundle: bundle,
	}
}

func (svc *serviceContext) validateConfig() {
	// ensure the existence and validity of required config values and
	// translation ids

	invalid := false

	var messageIDs stringValidator
	var miscValues stringValidator

	miscValues.requireValue(svc.config.Service.Port, "service port")
	miscValues.requireValue(svc.config.Elastic.Host, "elastic host")
	miscValues.requireValue(svc.config.Elastic.Index, "elastic index")
	miscValues.requireValue(svc.config.Assets.Dir, "assets dir")
	miscValues.requireValue(svc.config.Assets.Collections, "collections list file")
	miscValues.requireValue(svc.config.Assets.Subjects, "subjects list file")
	miscValues.requireValue(svc.config.Assets.Languages, "languages list file")

	if svc.config.Elastic.ResultWindow <= 0 {
		log.Printf("[VALIDATE] elastic result window must be positive")
		invalid = true
	}

	if svc.config.Export.RowLimit <= 0 {
		log.Printf("[VALIDATE] export row limit must be positive")
		invalid = true
	}

	if svc.config.Service.DebounceMS < 0 {
		log.Printf("[VALIDATE] debounce must be non-negative")
		invalid = true
	}

	messageIDs.requireValue("ServiceName", "service name xid")
	messageIDs.requireValue("ServiceDescription", "service description xid")
	messageIDs.requireValue("ErrorBeyondLimit", "beyond limit error xid")
	messageIDs.requireValue("ErrorSearchFailed", "search failed error xid")
	messageIDs.requireValue("ErrorExportFailed", "export failed error xid")
	messageIDs.requireValue("ErrorExportConfirm", "export confirm error xid")

	for _, facet := range facetDefinitions {
		messageIDs.requireValue(facet.XID, fmt.Sprintf("facet %s xid", facet.ID))
	}

	for _, id := range sortOptionOrder {
		messageIDs.requireValue(sortOptions[id].xid, fmt.Sprintf("sort option %s xid", id))
	}

	// validate xids can actually be translated

	langs := []string{}
	tags := svc.translations.bundle.LanguageTags()

	for _, tag := range tags {
		lang := tag.String()
		langs = append(langs, lang)
		localizer := i18n.NewLocalizer(svc.translations.bundle, lang)
		for _, id := range messageIDs.Values() {
			if _, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id}); err != nil {
				log.Printf("[VALIDATE] [%s] missing translation for message ID: [%s] (%s)", lang, id, err.Error())
				invalid = true
			}
		}
	}

	// check if anything went wrong anywhere

	if invalid || messageIDs.Invalid() || miscValues.Invalid() {
		log.Printf("[VALIDATE] exiting due to missing/incorrect field value(s) above")
		os.Exit(1)
	}

	log.Printf("[SERVICE] supported languages   = [%s]", strings.Join(langs, ", "))
}

func initializeService(cfg *serviceConfig) *serviceContext {
	svc := serviceContext{}

	svc.config = cfg
	svc.randomSource = rand.New(rand.NewSource(time.Now().UnixNano()))

	svc.initTranslations()
	svc.initVersion()
	svc.initElastic()

	svc.validateConfig()

	svc.lists = newReferenceLists(cfg)

	return &svc
}
