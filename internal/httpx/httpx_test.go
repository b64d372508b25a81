package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetJSON_DecodesBody(t *testing.T) {
	t.Parallel()
	var gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Extra")
		w.Write([]byte(`{"hello":"world"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(5 * time.Second)
	var out map[string]string
	err := c.GetJSON(t.Context(), srv.URL, map[string]string{"X-Extra": "yes"}, &out)
	require.NoError(t, err)
	require.Equal(t, "world", out["hello"])
	require.Equal(t, "marketdata/1.0", gotUA)
	require.Equal(t, "yes", gotExtra)
}

func TestGetJSON_Non2xxIsStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := New(5 * time.Second)
	var out any
	err := c.GetJSON(t.Context(), srv.URL, nil, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusForbidden, se.Code)
}

func TestGetJSON_MalformedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	t.Cleanup(srv.Close)

	c := New(5 * time.Second)
	var out any
	require.Error(t, c.GetJSON(t.Context(), srv.URL, nil, &out))
}


