package main

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// facet candidate sources.  until a search has executed, facets offer the
// values from static newline-delimited reference lists; once a search has
// run, fresh result aggregations take over (see handleFacetValuesRequest).

const (
	facetSourceStatic  = "static"
	facetSourceResults = "results"
)

type referenceLists struct {
	mu    sync.RWMutex
	dir   string
	files map[string]string // facet id -> list filename
	lists map[string][]string
}

func newReferenceLists(cfg *serviceConfig) *referenceLists {
	r := referenceLists{
		dir: cfg.Assets.Dir,
		files: map[string]string{
			"collection": cfg.Assets.Collections,
			"subject":    cfg.Assets.Subjects,
			"language":   cfg.Assets.Languages,
		},
		lists: make(map[string][]string),
	}

	for id := range r.files {
		r.loadList(id)
	}

	go r.monitorLists()

	return &r
}

func (r *referenceLists) loadList(id string) {
	filename := r.files[id]
	if filename == "" {
		return
	}

	path := filepath.Join(r.dir, filename)

	f, err := os.Open(path)
	if err != nil {
		log.Printf("[LISTS] open %s failed: %s", path, err.Error())
		return
	}

	defer f.Close()

	var values []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			values = append(values, line)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[LISTS] read %s failed: %s", path, err.Error())
		return
	}

	values = uniqueStrings(values)

	r.mu.Lock()
	r.lists[id] = values
	r.mu.Unlock()

	log.Printf("[LISTS] loaded %d values for facet [%s] from %s", len(values), id, path)
}

func (r *referenceLists) monitorLists() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[LISTS] watcher setup failed: %s", err.Error())
		return
	}

	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		log.Printf("[LISTS] cannot watch %s: %s", r.dir, err.Error())
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if ok == false {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			for id, filename := range r.files {
				if filepath.Base(event.Name) == filename {
					log.Printf("[LISTS] %s changed; reloading", event.Name)
					r.loadList(id)
				}
			}

		case err, ok := <-watcher.Errors:
			if ok == false {
				return
			}
			log.Printf("[LISTS] watcher error: %s", err.Error())
		}
	}
}

func (r *referenceLists) values(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lists[id]
}

func (r *referenceLists) facetValues(id string) []FacetValue {
	var values []FacetValue

	for _, val := range r.values(id) {
		values = append(values, FacetValue{Value: val})
	}

	return values
}

func facetValuesFromBuckets(buckets []esBucket) []FacetValue {
	var values []FacetValue

	for _, bucket := range buckets {
		values = append(values, FacetValue{Value: bucket.Key, Count: bucket.DocCount})
	}

	return values
}
