package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

const samplePage = `<!doctype html>
<html><head>
<meta charset="utf-8">
<title>  Sample   Page </title>
<meta name="description" content="A page for tests">
<link rel="shortcut icon" href="/static/icon.png">
<script>var tracking = 1;</script>
</head>
<body><h1>Hello</h1><p>Some <b>bold</b> &amp; plain text.</p></body></html>`

func TestParse(t *testing.T) {
	info, err := Parse("https://example.com/docs/page", []byte(samplePage), "text/html")
	require.NoError(t, err)

	assert.Equal(t, "Sample Page", info.Title)
	assert.Equal(t, "A page for tests", info.Description)
	assert.Equal(t, "https://example.com/static/icon.png", info.Favicon)
	assert.Equal(t, "Hello Some bold & plain text.", info.Excerpt)
	assert.Equal(t, "utf-8", info.Charset)
}

func TestParseFallbacks(t *testing.T) {
	page := `<html><head><meta property="og:title" content="OG Title"><meta property="og:description" content="OG desc"></head><body>x</body></html>`
	info, err := Parse("https://example.com/a", []byte(page), "")
	require.NoError(t, err)
	assert.Equal(t, "OG Title", info.Title)
	assert.Equal(t, "OG desc", info.Description)
	assert.Equal(t, "https://example.com/favicon.ico", info.Favicon)

	info, err = Parse("https://example.com/b", []byte("<p>untitled</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b", info.Title)

	_, err = Parse("https://example.com/c", []byte("   "), "")
	assert.ErrorIs(t, err, ErrEmptyPage)
}

func TestParseDecodesDeclaredCharset(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("<html><head><title>안녕하세요</title></head><body>문서</body></html>")
	require.NoError(t, err)

	info, err := Parse("https://example.kr", []byte(encoded), "text/html; charset=euc-kr")
	require.NoError(t, err)
	assert.Equal(t, "euc-kr", info.Charset)
	assert.Equal(t, "안녕하세요", info.Title)
}

func TestExcerptTruncates(t *testing.T) {
	text := excerpt("<p>" + strings.Repeat("word ", 200) + "</p>")
	assert.True(t, strings.HasSuffix(text, "…"))
	assert.LessOrEqual(t, len([]rune(text)), ExcerptLength+1)
}

func testFetcher() *Fetcher {
	c := client.New(client.Options{Name: "web-test", Timeout: 5 * time.Second, MinWait: time.Millisecond, MaxWait: time.Millisecond}, nil)
	return NewFetcher(c, nil)
}

func TestFetchCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	f := testFetcher()
	info, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Sample Page", info.Title)
	assert.Equal(t, srv.URL+"/static/icon.png", info.Favicon)

	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	assert.Equal(t, 1, f.CacheSize())
}

func TestFetchErrors(t *testing.T) {
	f := testFetcher()

	_, err := f.Fetch(context.Background(), "ftp://example.com")
	assert.ErrorIs(t, err, ErrInvalidURL)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err = f.Fetch(context.Background(), srv.URL)
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)

	assert.Equal(t, srv.URL, f.Title(context.Background(), srv.URL))
	assert.Zero(t, f.CacheSize())
}

func TestServiceExecute(t *testing.T) {
	svc := NewService(testFetcher())

	res, err := svc.Execute(context.Background(), "web.metadata", map[string]interface{}{
		"html": samplePage,
		"url":  "https://example.com",
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Sample Page", res.Data["title"])

	res, err = svc.Execute(context.Background(), "web.fetch", map[string]interface{}{"url": "nope"}, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
}
