package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/lessonplan/pkg/api"
)

func TestAsk_Success(t *testing.T) {
	var got api.AskRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(api.AskResponse{
			Response:    "# Plan",
			ContextUsed: 3,
			QueryType:   api.QueryTypeGeneral,
		})
	}))
	defer ts.Close()

	c := New(ts.URL+"/", "secret", time.Second)
	resp, err := c.Ask(context.Background(), api.AskRequest{Query: "photosynthesis for grade 5", Duration: "45 minutes"})
	require.NoError(t, err)
	assert.Equal(t, "# Plan", resp.Response)
	assert.Equal(t, 3, resp.ContextUsed)
	assert.Equal(t, "photosynthesis for grade 5", got.Query)
	assert.Equal(t, "45 minutes", got.Duration)
}

func TestAsk_NoTokenNoHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", 0).Ask(context.Background(), api.AskRequest{Query: "q"})
	require.NoError(t, err)
}

func TestAsk_HTTPErrorUsesBodyMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Query cannot be empty"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", time.Second).Ask(context.Background(), api.AskRequest{})
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Query cannot be empty", he.Error())
}

func TestAsk_HTTPErrorFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", time.Second).Ask(context.Background(), api.AskRequest{Query: "q"})
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "HTTP 502: Bad Gateway", he.Message)
}

func TestAsk_ServerErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model offline","response":""}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", time.Second).Ask(context.Background(), api.AskRequest{Query: "q"})
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "model offline", se.Message)
}

func TestAsk_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := New(url, "", time.Second).Ask(context.Background(), api.AskRequest{Query: "q"})
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestAsk_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ts.URL, "", time.Second).Ask(ctx, api.AskRequest{Query: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","chunks":12,"components":{"documents":true}}`))
	}))
	defer ts.Close()

	h, err := New(ts.URL, "", time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, 12, h.Chunks)
	assert.True(t, h.Components["documents"])
}

func TestHealth_Unhealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"unhealthy","error":"db locked"}`))
	}))
	defer ts.Close()

	h, err := New(ts.URL, "", time.Second).Health(context.Background())
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "db locked", he.Message)
	assert.Equal(t, "unhealthy", h.Status)
}
