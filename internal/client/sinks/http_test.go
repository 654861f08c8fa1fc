package sinks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink_Put(t *testing.T) {
	var gotPath, gotCT string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	s, err := NewHTTPSink(ts.URL+"/dav/", ts.Client())
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "Field_Report_2025-01-01.xlsx", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/dav/Field_Report_2025-01-01.xlsx", loc)
	assert.Equal(t, "/dav/Field_Report_2025-01-01.xlsx", gotPath)
	assert.Equal(t, xlsxContentType, gotCT)
	assert.Equal(t, []byte("x"), gotBody)
}

func TestHTTPSink_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s, err := NewHTTPSink(ts.URL, nil)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "r.xlsx", []byte("x"))
	assert.Error(t, err)
}

func TestNewHTTPSink_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host/x", "not a url", "http://"} {
		_, err := NewHTTPSink(u, nil)
		assert.Error(t, err, u)
	}
}
