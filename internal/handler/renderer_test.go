package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": {Data: []byte(`{{define "base"}}<html><title>{{block "title" .}}default{{end}}</title>{{block "content" .}}{{end}}</html>{{end}}`)},
		"partials/greeting.html": {Data: []byte(`{{define "greeting"}}<p id="greeting">Olá, {{.}}</p>{{end}}`)},
		"home.html":              {Data: []byte(`{{define "title"}}Início{{end}}{{define "content"}}{{template "greeting" .}}{{end}}`)},
		"about.html":             {Data: []byte(`{{define "content"}}<p>{{formatCEP .}}</p>{{end}}`)},
	}
}

func TestRenderer_PagesAreIsolated(t *testing.T) {
	r, err := NewRenderer(testFS(), nil)
	require.NoError(t, err)

	var home, about strings.Builder
	require.NoError(t, r.Render(&home, "home", "base", "Ana"))
	require.NoError(t, r.Render(&about, "about", "base", "01310100"))

	assert.Equal(t, `<html><title>Início</title><p id="greeting">Olá, Ana</p></html>`, home.String())
	assert.Equal(t, `<html><title>default</title><p>01310-100</p></html>`, about.String())
}

func TestRenderer_RenderBlock(t *testing.T) {
	r, err := NewRenderer(testFS(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.RenderBlock(rec, "home", "greeting", "<b>Ana</b>")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<p id="greeting">Olá, &lt;b&gt;Ana&lt;/b&gt;</p>`, rec.Body.String())
}

func TestRenderer_RenderHTTPStatus(t *testing.T) {
	r, err := NewRenderer(testFS(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.RenderHTTPStatus(rec, http.StatusNotFound, "home", "Ana")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Olá, Ana")
}

func TestRenderer_Errors(t *testing.T) {
	r, err := NewRenderer(testFS(), nil)
	require.NoError(t, err)

	_, err = r.Lookup("missing")
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	r.RenderBlock(rec, "home", "no-such-block", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html>")
}

func TestNewRenderer_MissingLayout(t *testing.T) {
	_, err := NewRenderer(fstest.MapFS{"home.html": {Data: []byte(`{{define "content"}}{{end}}`)}}, nil)
	assert.Error(t, err)
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	formatCEP := funcs["formatCEP"].(func(string) string)
	assert.Equal(t, "01310-100", formatCEP("01310100"))
	assert.Equal(t, "0131", formatCEP("0131"))
}
