package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1700086400,1700000000,1700172800],
"indicators":{"quote":[{"open":[101,100,null],"high":[103,102,null],"low":[99,98,null],
"close":[102,101,null],"volume":[2000,1000,null]}]}}],"error":null}}`

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/chart/"

	bars, err := f.FetchDailyBars(context.Background(), "FPT", 30)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bar must be skipped")
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
	assert.True(t, strings.HasSuffix(gotPath, "FPT.VN"))
}

func TestYahooFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	_, err := f.FetchDailyBars(context.Background(), "VN-INDEX", 100)
	assert.Error(t, err)
}

func TestYahooSymbol(t *testing.T) {
	f := NewYahooFetcher("")
	assert.Equal(t, "^VNINDEX.VN", f.yahooSymbol("VN-INDEX"))
	assert.Equal(t, "HPG.VN", f.yahooSymbol("HPG"))
	assert.Equal(t, "AAPL.US", f.yahooSymbol("AAPL.US"))
}

func TestYahooFetcher_NoBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	_, err := f.FetchDailyBars(context.Background(), "HPG", 60)
	assert.ErrorIs(t, err, ErrNoBars)
}
