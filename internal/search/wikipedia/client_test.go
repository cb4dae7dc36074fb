package wikipedia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kitbuilder587/research-bot/internal/domain"
	"github.com/kitbuilder587/research-bot/internal/search"
)

const sampleResponse = `{
  "batchcomplete": "",
  "query": {
    "searchinfo": {"totalhits": 2},
    "search": [
      {"ns": 0, "title": "Quantum computing", "snippet": "A <span class=\"searchmatch\">quantum</span> computer is a computer that exploits &quot;quantum&quot; mechanics"},
      {"ns": 0, "title": "Qubit", "snippet": "In <span class=\"searchmatch\">quantum</span> computing, a qubit"}
    ]
  }
}`

func TestClient_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			t.Errorf("path = %q, want /w/api.php", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = q.Get("srsearch")
		if q.Get("action") != "query" || q.Get("list") != "search" || q.Get("format") != "json" {
			t.Errorf("unexpected query params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil)

	resp, err := client.Search(context.Background(), search.SearchRequest{Query: "quantum computing"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "quantum computing" {
		t.Errorf("srsearch = %q, want %q", gotQuery, "quantum computing")
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}

	first := resp.Results[0]
	if first.Link != "https://en.wikipedia.org/wiki/Quantum_computing" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Snippet != `A quantum computer is a computer that exploits "quantum" mechanics` {
		t.Errorf("Snippet = %q", first.Snippet)
	}
	if first.Source != domain.SourceWikipedia || first.Position != 1 {
		t.Errorf("result = %+v, want source=wikipedia position=1", first)
	}
	if resp.Results[1].Position != 2 {
		t.Errorf("second Position = %d, want 2", resp.Results[1].Position)
	}
}

func TestClient_ArticleLink(t *testing.T) {
	client := New(Config{}, nil)

	tests := []struct {
		title string
		want  string
	}{
		{"Go (programming language)", "https://en.wikipedia.org/wiki/Go_%28programming_language%29"},
		{"AC/DC", "https://en.wikipedia.org/wiki/AC%2FDC"},
		{"Plain", "https://en.wikipedia.org/wiki/Plain"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := client.ArticleLink(tt.title); got != tt.want {
				t.Errorf("ArticleLink(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, nil)
	_, err := client.Search(context.Background(), search.SearchRequest{Query: "x"})
	if !errors.Is(err, search.ErrSearchFailed) {
		t.Errorf("Search() error = %v, want ErrSearchFailed", err)
	}
}
