package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
)

type serviceConfigService struct {
	Port       string `json:"port,omitempty"`
	JWTKey     string `json:"jwt_key,omitempty"`
	DebounceMS int    `json:"debounce_ms,omitempty"` // advertised filter debounce for picker clients
}

type serviceConfigElastic struct {
	Host         string `json:"host,omitempty"`
	Index        string `json:"index,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	ConnTimeout  string `json:"conn_timeout,omitempty"`
	ReadTimeout  string `json:"read_timeout,omitempty"`
	ResultWindow int    `json:"result_window,omitempty"` // index.max_result_window on the backend
}

type serviceConfigAssets struct {
	Dir         string `json:"dir,omitempty"`
	Collections string `json:"collections,omitempty"`
	Subjects    string `json:"subjects,omitempty"`
	Languages   string `json:"languages,omitempty"`
}

type serviceConfigExport struct {
	RowLimit       int    `json:"row_limit,omitempty"`
	FilenamePrefix string `json:"filename_prefix,omitempty"`
}

type serviceConfig struct {
	Service serviceConfigService `json:"service,omitempty"`
	Elastic serviceConfigElastic `json:"elastic,omitempty"`
	Assets  serviceConfigAssets  `json:"assets,omitempty"`
	Export  serviceConfigExport  `json:"export,omitempty"`
}

func getSortedJSONEnvVars() []string {
	var keys []string

	for _, keyval := range os.Environ() {
		key := strings.Split(keyval, "=")[0]
		if strings.HasPrefix(key, "CATALOG_SEARCH_WS_JSON_") {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}

func loadConfig() *serviceConfig {
	cfg := serviceConfig{}

	// json configs

	envs := getSortedJSONEnvVars()

	valid := true

	for _, env := range envs {
		log.Printf("[CONFIG] loading %s ...", env)
		if val := os.Getenv(env); val != "" {
			dec := json.NewDecoder(bytes.NewReader([]byte(val)))
			dec.DisallowUnknownFields()

			if err := dec.Decode(&cfg); err != nil {
				log.Printf("error decoding %s: %s", env, err.Error())
				valid = false
			}
		}
	}

	if valid == false {
		log.Printf("exiting due to json decode error(s) above")
		os.Exit(1)
	}

	// optional convenience override to simplify terraform config
	if host := os.Getenv("CATALOG_SEARCH_WS_ELASTIC_HOST"); host != "" {
		cfg.Elastic.Host = host
	}

	bytes, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("error encoding service config json: %s", err.Error())
		os.Exit(1)
	}

	log.Printf("[CONFIG] composite json:")
	log.Printf("\n%s", string(bytes))

	return &cfg
}
