package endpoint

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// SampleQueries are the queries the probe runs when none is given.
var SampleQueries = map[string]string{
	"small": "SELECT * WHERE { ?s ?p ?o } LIMIT 10",
	"corporations": `PREFIX bhf: <http://belhisfirm.be/ontology#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?corporation ?name WHERE {
  ?corporation a bhf:Corporation ;
               bhf:hasName/rdfs:label ?name .
} LIMIT 50`,
	"securities": `PREFIX bhf: <http://belhisfirm.be/ontology#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?stock ?name WHERE {
  ?stock a bhf:Stock ;
         bhf:hasName/rdfs:label ?name .
} LIMIT 50`,
	"complex": `PREFIX bhf: <http://belhisfirm.be/ontology#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?corporation ?corpName ?legalForm ?address WHERE {
  ?corporation a bhf:Corporation ;
               bhf:hasName/rdfs:label ?corpName .
  OPTIONAL { ?corporation bhf:hasLegalForm/rdfs:label ?legalForm . }
  OPTIONAL { ?corporation bhf:hasAddress ?address . }
} LIMIT 100`,
}

// SampleQueryNames returns the names of SampleQueries in sorted order.
func SampleQueryNames() []string {
	names := make([]string, 0, len(SampleQueries))
	for name := range SampleQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Probe targets.
const (
	TargetDirect = "direct"
	TargetCached = "cached"
)

// ProbeResult is one request made by Probe.
type ProbeResult struct {
	Target     string        `json:"target"`
	Attempt    int           `json:"attempt"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Rows       int           `json:"rows"`
	Cache      CacheInfo     `json:"cache"`
	Err        string        `json:"error,omitempty"`
}

// OK reports whether the request succeeded.
func (r ProbeResult) OK() bool { return r.Err == "" }

// Probe sends query once to direct and repeats times to cached. A nil direct
// client skips the direct request. Probe requests are never retried, so each
// result is exactly one request. Request failures are recorded in the
// results; only a cancelled context stops the probe early.
func Probe(ctx context.Context, direct, cached *Client, query string, repeats int) ([]ProbeResult, error) {
	if cached == nil {
		return nil, fmt.Errorf("probe: cached client is required")
	}
	if repeats < 1 {
		repeats = 1
	}

	var results []ProbeResult
	if direct != nil {
		results = append(results, probeOnce(ctx, direct, TargetDirect, 1, query))
	}
	for i := 1; i <= repeats; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, probeOnce(ctx, cached, TargetCached, i, query))
	}
	return results, nil
}

func probeOnce(ctx context.Context, c *Client, target string, attempt int, query string) ProbeResult {
	start := time.Now()
	resp, err := c.selectWith(ctx, singleAttempt, "probe", query)
	if err != nil {
		r := ProbeResult{
			Target:   target,
			Attempt:  attempt,
			Duration: time.Since(start),
			Err:      err.Error(),
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			r.StatusCode = httpErr.StatusCode
		}
		return r
	}
	return ProbeResult{
		Target:     target,
		Attempt:    attempt,
		StatusCode: resp.StatusCode,
		Duration:   resp.Duration,
		Rows:       len(resp.Results.Rows()),
		Cache:      resp.Cache,
	}
}

// CacheWorking reports whether the cached requests behaved like a working
// cache: the first cached request missed and every later one hit. It returns
// false when fewer than two cached requests succeeded.
func CacheWorking(results []ProbeResult) bool {
	var cached []ProbeResult
	for _, r := range results {
		if r.Target == TargetCached {
			cached = append(cached, r)
		}
	}
	if len(cached) < 2 {
		return false
	}
	for i, r := range cached {
		if !r.OK() {
			return false
		}
		if (i == 0) == r.Cache.Hit() {
			return false
		}
	}
	return true
}
