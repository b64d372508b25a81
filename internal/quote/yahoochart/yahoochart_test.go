package yahoochart

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdata/internal/httpx"
	"marketdata/internal/quote"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{Endpoint: srv.URL}, httpx.New(5*time.Second))
}

func chartBody(price, prevClose float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{
		"currency":"USD","symbol":"AAPL",
		"regularMarketPrice":%g,"chartPreviousClose":%g
	}}],"error":null}}`, price, prevClose)
}

func TestFetch_ComputesChangeFromPreviousClose(t *testing.T) {
	t.Parallel()
	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(chartBody(110, 100)))
	})

	q, err := p.Fetch(t.Context(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "/AAPL", gotPath)
	require.Equal(t, "110", q.Price.String())
	require.Equal(t, "10", q.Change.String())
	require.Equal(t, "10", q.ChangePercent.String())
}

func TestFetch_ZeroPreviousCloseGuard(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody(110, 0)))
	})

	q, err := p.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "110", q.Price.String())
	require.True(t, q.Change.IsZero(), "change must be 0 when previous close is missing")
	require.True(t, q.ChangePercent.IsZero(), "changePercent must be 0 when previous close is missing")
}

func TestFetch_FallsBackToPreviousCloseField(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{
			"regularMarketPrice":55,"previousClose":50
		}}],"error":null}}`))
	})

	q, err := p.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "5", q.Change.String())
	require.Equal(t, "10", q.ChangePercent.String())
}

func TestFetch_EmptyResultIsNoData(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})
	_, err := p.Fetch(t.Context(), "NOPE")
	require.Equal(t, quote.KindNoData, quote.KindOf(err))
}

func TestFetch_ChartErrorIsNoData(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	_, err := p.Fetch(t.Context(), "NOPE")
	require.Equal(t, quote.KindNoData, quote.KindOf(err))
}

func TestFetch_TransportFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refused connection
	p := New(Config{Endpoint: srv.URL}, httpx.New(time.Second))
	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, quote.KindTransportError, quote.KindOf(err))
}


