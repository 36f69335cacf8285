package endpoint_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360studio/belhisfirm/endpoint"
	"github.com/c360studio/belhisfirm/metric"
	"github.com/c360studio/belhisfirm/queries"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/c360studio/semstreams/pkg/retry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRows = `{
  "head": {"vars": ["id", "prefLabel"]},
  "results": {"bindings": [
    {"id": {"type": "uri", "value": "http://example.org/c/1"},
     "prefLabel": {"type": "literal", "value": "Banque de Bruxelles", "xml:lang": "fr"}},
    {"id": {"type": "uri", "value": "http://example.org/c/2"},
     "prefLabel": {"type": "literal", "value": "Cockerill"}}
  ]}
}`

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

func TestClient_Select_Post(t *testing.T) {
	var gotQuery, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, endpoint.ContentTypeForm, r.Header.Get("Content-Type"))
		assert.Equal(t, endpoint.ContentTypeResultsJSON, r.Header.Get("Accept"))
		assert.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		gotRequestID = r.Header.Get("X-Request-ID")

		w.Header().Set("Content-Type", endpoint.ContentTypeResultsJSON)
		w.Header().Set(endpoint.HeaderCache, "MISS")
		w.Header().Set(endpoint.HeaderBackendHealth, "healthy")
		io.WriteString(w, twoRows)
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL)
	resp, err := client.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", gotQuery)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, gotRequestID, resp.RequestID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, "MISS", resp.Cache.Status)
	assert.False(t, resp.Cache.Hit())
	assert.Equal(t, "healthy", resp.Cache.BackendHealth)

	rows := resp.Results.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "fr", rows[0]["prefLabel"].Lang)
	assert.True(t, rows[1]["id"].IsIRI())
}

func TestClient_Select_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "ASK { ?s ?p ?o }", r.URL.Query().Get("query"))
		w.Header().Set(endpoint.HeaderCache, "HIT")
		w.Header().Set(endpoint.HeaderCacheHits, "4")
		io.WriteString(w, `{"head": {}, "boolean": true}`)
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL+"?format=json", endpoint.WithMethod("get"))
	resp, err := client.Select(context.Background(), "ASK { ?s ?p ?o }")
	require.NoError(t, err)

	require.NotNil(t, resp.Results.Boolean)
	assert.True(t, *resp.Results.Boolean)
	assert.True(t, resp.Cache.Hit())
	assert.Equal(t, 4, resp.Cache.Hits)
}

func TestClient_Select_RetryOnTransientError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, "backend sick")
			return
		}
		io.WriteString(w, twoRows)
	}))
	defer server.Close()

	m := metric.NewMetrics(nil)
	client := endpoint.NewClient(server.URL,
		endpoint.WithRetryConfig(fastRetry()),
		endpoint.WithMetrics(m))

	resp, err := client.SelectNamed(context.Background(), "companyProperties", "SELECT * WHERE { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RetriesTotal.WithLabelValues("companyProperties")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("companyProperties", metric.StatusOK)))
}

func TestClient_Select_NoRetryOnFatalError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Parse error: unexpected '}'")
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL, endpoint.WithRetryConfig(fastRetry()))
	_, err := client.Select(context.Background(), "SELECT * WHERE { ?s ?p }")
	require.Error(t, err)

	assert.Equal(t, int32(1), attempts.Load())
	assert.True(t, endpoint.IsFatal(err))
	assert.False(t, endpoint.IsTransient(err))

	var httpErr *endpoint.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "Parse error")
}

func TestClient_Select_ExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	m := metric.NewMetrics(nil)
	client := endpoint.NewClient(server.URL,
		endpoint.WithRetryConfig(fastRetry()),
		endpoint.WithMetrics(m))
	_, err := client.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)

	assert.Equal(t, int32(3), attempts.Load())
	assert.True(t, endpoint.IsTransient(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("adhoc", metric.StatusError)))
}

func TestClient_Select_ZeroAttemptsRunsOnce(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL, endpoint.WithRetryConfig(retry.Config{MaxAttempts: 0}))
	_, err := client.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)

	assert.Equal(t, int32(1), attempts.Load())
	assert.True(t, endpoint.IsTransient(err))
	assert.Contains(t, err.Error(), "status 503")
	assert.NotContains(t, err.Error(), "%!w")
}

func TestClient_Select_FatalErrorIsNotWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL, endpoint.WithRetryConfig(fastRetry()))
	_, err := client.SelectNamed(context.Background(), "companyProperties", "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.False(t, retry.IsNonRetryable(err))
	assert.Equal(t, "query companyProperties: SPARQL endpoint error (status 400)", err.Error())
}

func TestClient_Select_InvalidJSONIsFatal(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		io.WriteString(w, "<html>not json</html>")
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL, endpoint.WithRetryConfig(fastRetry()))
	_, err := client.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.True(t, endpoint.IsFatal(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Select_RejectsInput(t *testing.T) {
	client := endpoint.NewClient("http://127.0.0.1:1")

	_, err := client.Select(context.Background(), "  ")
	assert.True(t, endpoint.IsFatal(err))

	client = endpoint.NewClient("http://127.0.0.1:1", endpoint.WithMethod("PUT"))
	_, err = client.Select(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported method")
}

func TestClient_Select_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := endpoint.NewClient(server.URL, endpoint.WithRetryConfig(fastRetry()))
	_, err := client.Select(ctx, "SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Run(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		values, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		gotQuery = values.Get("query")
		io.WriteString(w, twoRows)
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL)
	resp, err := client.Run(context.Background(), queries.Default(), queries.CompanyProperties, sparql.Bindings{
		sparql.PlaceholderID: "<http://example.org/c/1>",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results.Rows(), 2)

	assert.True(t, strings.HasPrefix(gotQuery, "PREFIX "))
	assert.Contains(t, gotQuery, "BIND(<http://example.org/c/1> AS ?id)")
	assert.NotContains(t, gotQuery, "<ID>")
	assert.NotContains(t, gotQuery, "<PROPERTIES>")
}

func TestClient_Run_Errors(t *testing.T) {
	client := endpoint.NewClient("http://127.0.0.1:1")

	_, err := client.Run(context.Background(), queries.Default(), "noSuchTemplate", nil)
	assert.ErrorIs(t, err, queries.ErrNotFound)

	_, err = client.Run(context.Background(), queries.Default(), queries.CompanyProperties, nil)
	assert.ErrorIs(t, err, sparql.ErrMissingBinding)
}

func TestClient_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	client := endpoint.NewClient(server.URL)
	_, err := client.Ping(context.Background())
	assert.NoError(t, err)

	status.Store(http.StatusServiceUnavailable)
	_, err = client.Ping(context.Background())
	assert.True(t, endpoint.IsTransient(err))

	server.Close()
	_, err = client.Ping(context.Background())
	assert.True(t, endpoint.IsTransient(err))
}

func TestClient_Purge(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if r.URL.Path == "/forbidden" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		io.WriteString(w, "Purged")
	}))
	defer server.Close()

	require.NoError(t, endpoint.NewClient(server.URL).Purge(context.Background()))
	assert.Equal(t, "PURGE", method)

	err := endpoint.NewClient(server.URL + "/forbidden").Purge(context.Background())
	require.Error(t, err)
	assert.True(t, endpoint.IsFatal(err))
}
