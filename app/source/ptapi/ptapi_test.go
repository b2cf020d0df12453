package ptapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shortplay-scraper/app/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New("https://pt.test/api", "", source.HTTPOptions{})
	assert.Error(t, err)
	_, err = New("", "k", source.HTTPOptions{})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	rec, err := parse("MyShow", []byte(`{"code":0,"data":[{"title":"MyShow","plot":"PT剧情简介","poster":"https://img.test/a.webp"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "PT剧情简介", rec.Plot)
	assert.Equal(t, "https://img.test/a.webp", rec.PosterURL)

	_, err = parse("MyShow", []byte(`{"code":0,"data":[]}`))
	assert.True(t, errors.Is(err, source.ErrNotFound))

	_, err = parse("MyShow", []byte(`{"code":401,"message":"invalid key"}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, source.ErrNotFound))
}

func TestFetch_SendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "MyShow", r.URL.Query().Get("keyword"))
		_, _ = w.Write([]byte(`{"code":0,"data":[{"title":"MyShow","plot":"p"}]}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL, "secret", source.HTTPOptions{RetryMax: -1})
	require.NoError(t, err)
	defer p.Close()

	body, err := p.Fetch(context.Background(), "MyShow")
	require.NoError(t, err)
	rec, err := p.Parse("MyShow", body)
	require.NoError(t, err)
	assert.Equal(t, "p", rec.Plot)
}
