package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortplay-scraper/app/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name     string
	body     []byte
	fetchErr error
	parseErr error
	rec      Record
	panicMsg string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, title string) ([]byte, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.body, s.fetchErr
}

func (s *stubSource) Parse(title string, body []byte) (Record, error) {
	if s.parseErr != nil {
		return Record{}, s.parseErr
	}
	return s.rec, nil
}

func TestLookup_Success(t *testing.T) {
	src := &stubSource{name: "ok", rec: Record{Title: "MyShow", Plot: "synopsis"}}

	rec, ok := Lookup(context.Background(), logger.NewNop(), src, "MyShow")
	require.True(t, ok)
	assert.Equal(t, "MyShow", rec.Title)
	assert.Equal(t, "synopsis", rec.Plot)
}

func TestLookup_FailuresBecomeAbsent(t *testing.T) {
	cases := map[string]*stubSource{
		"fetch":    {name: "a", fetchErr: errors.New("connection refused")},
		"parse":    {name: "b", parseErr: errors.New("bad json")},
		"notfound": {name: "c", parseErr: ErrNotFound},
		"panic":    {name: "d", panicMsg: "boom"},
		"notitle":  {name: "e", rec: Record{Plot: "only plot"}},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			rec, ok := Lookup(context.Background(), logger.NewNop(), src, "MyShow")
			assert.False(t, ok)
			assert.Equal(t, Record{}, rec)
		})
	}
}

func TestLookup_ErrorCarriesStage(t *testing.T) {
	_, err := lookup(context.Background(), &stubSource{name: "x", fetchErr: errors.New("nope")}, "t")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "fetch", se.Stage)
	assert.Equal(t, "x", se.Source)
}

func TestSameTitle(t *testing.T) {
	assert.True(t, SameTitle("MyShow", "myshow"))
	assert.True(t, SameTitle("  My   Show ", "my show"))
	// NFD 形式的 "é" 与 NFC 形式应当视为相同
	assert.True(t, SameTitle("Cafe\u0301", "caf\u00e9"))
	assert.False(t, SameTitle("MyShow", "MyShow 2"))
	assert.False(t, SameTitle("", ""))
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{RetryMax: -1})
	defer c.Close()

	_, err := Get(context.Background(), c, srv.URL, nil, nil)
	var he *HTTPStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.StatusCode)
}

func TestGet_SendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "短剧", r.URL.Query().Get("keyword"))
		assert.Equal(t, "v", r.Header.Get("X-Test"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{RetryMax: -1})
	defer c.Close()

	body, err := Get(context.Background(), c, srv.URL, map[string]string{"keyword": "短剧"}, map[string]string{"X-Test": "v"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
