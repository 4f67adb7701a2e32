package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebImporterExtract(t *testing.T) {
	page := `<html><head><script>var x = 1;</script><style>p{color:red}</style></head>
	<body>
		<nav>Home About Contact and other navigation links go here somewhere</nav>
		<h1>The Lighthouse Keeper of Aran, a life spent between the sea and sky</h1>
		<p>Marcus spent forty years tending the lamp on a rock three miles off the coast, rowing out in weather that kept everyone else ashore.</p>
		<p>short</p>
		<footer>Copyright notice and assorted legal text that should not be imported</footer>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewWebImporter().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "forty years tending the lamp") {
		t.Errorf("Extract() missing article text:\n%s", got)
	}
	if !strings.Contains(got, "Lighthouse Keeper of Aran") {
		t.Errorf("Extract() missing heading:\n%s", got)
	}
	for _, banned := range []string{"var x = 1", "navigation links", "legal text", "short"} {
		if strings.Contains(got, banned) {
			t.Errorf("Extract() kept %q:\n%s", banned, got)
		}
	}
}

func TestWebImporterExtractErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/empty":
			w.Write([]byte("<html><body><script>only()</script></body></html>"))
		}
	}))
	defer srv.Close()

	if _, err := NewWebImporter().Extract(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("Extract() on 404 should fail")
	}
	if _, err := NewWebImporter().Extract(context.Background(), srv.URL+"/empty"); err == nil {
		t.Error("Extract() on empty page should fail")
	}
}

func TestWebImporterTruncates(t *testing.T) {
	long := strings.Repeat("All work and no play makes for a very long backstory paragraph. ", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer srv.Close()

	importer := NewWebImporter()
	got, err := importer.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len([]rune(got)) > importer.maxLen {
		t.Errorf("Extract() returned %d runes, max %d", len([]rune(got)), importer.maxLen)
	}
}
