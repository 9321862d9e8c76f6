package audio

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

func TestParseEndpoint(t *testing.T) {
	e, err := ParseEndpoint("json:https://kaiz-apis.gleeze.com/api/ytmp3?url={url}")
	if err != nil {
		t.Fatalf("ParseEndpoint error: %v", err)
	}
	if e.Kind != KindJSON || e.Name != "kaiz-apis.gleeze.com/api/ytmp3" {
		t.Fatalf("endpoint = %#v", e)
	}

	e, err = ParseEndpoint(" RAW : https://example.com/dl/{id} ")
	if err != nil {
		t.Fatalf("ParseEndpoint error: %v", err)
	}
	if e.Kind != KindRaw || e.Template != "https://example.com/dl/{id}" {
		t.Fatalf("endpoint = %#v", e)
	}

	for _, bad := range []string{
		"https://example.com/?url={url}",
		"xml:https://example.com/?url={url}",
		"raw:https://example.com/static",
		"raw:ftp://example.com/?url={url}",
		"raw:{url}",
	} {
		if _, err := ParseEndpoint(bad); err == nil {
			t.Errorf("ParseEndpoint(%q) expected error", bad)
		}
	}
}

func TestParseEndpoints_KeepsOrder(t *testing.T) {
	got, err := ParseEndpoints([]string{
		"json:https://a.example/x?url={url}",
		"raw:https://b.example/y?url={url}",
	})
	if err != nil {
		t.Fatalf("ParseEndpoints error: %v", err)
	}
	if got[0].Name != "a.example/x" || got[1].Name != "b.example/y" {
		t.Fatalf("order = %s, %s", got[0].Name, got[1].Name)
	}
	if _, err := ParseEndpoints([]string{"bogus"}); err == nil {
		t.Fatal("expected error for bogus spec")
	}
}

func TestEndpoint_URL(t *testing.T) {
	e := Endpoint{Kind: KindRaw, Template: "https://x.example/yt?url={url}&id={id}"}
	got, err := e.URL(testTrack)
	if err != nil {
		t.Fatalf("URL error: %v", err)
	}
	want := "https://x.example/yt?url=https%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3DYkgkThdzX-8&id=YkgkThdzX-8"
	if got != want {
		t.Fatalf("URL = %q\nwant  %q", got, want)
	}

	if _, err := e.URL(types.Track{Title: "x", SourceURL: "https://vimeo.com/1"}); err == nil {
		t.Fatal("expected error when {id} cannot be resolved")
	}
	if _, err := e.URL(types.Track{Title: "x"}); err == nil {
		t.Fatal("expected error without source URL")
	}
}

func TestVideoID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=abc123":      "abc123",
		"https://m.youtube.com/watch?v=abc123&t=10":   "abc123",
		"https://music.youtube.com/watch?v=abc123":    "abc123",
		"https://youtu.be/abc123?si=x":                "abc123",
		"https://www.youtube.com/shorts/abc123/extra": "abc123",
		"https://www.youtube.com/embed/abc123":        "abc123",
		"https://vimeo.com/123":                       "",
		"::not a url":                                 "",
	}
	for in, want := range tests {
		if got := VideoID(in); got != want {
			t.Errorf("VideoID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPProvider_Raw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") != testTrack.SourceURL {
			t.Errorf("url param = %q", r.URL.Query().Get("url"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	e, err := ParseEndpoint("raw:" + srv.URL + "/yt?url={url}")
	if err != nil {
		t.Fatalf("ParseEndpoint error: %v", err)
	}
	data, err := NewHTTPProvider(e, WithHTTPClient(srv.Client())).Fetch(context.Background(), testTrack)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestHTTPProvider_JSONFollowsDownloadURL(t *testing.T) {
	for _, field := range []string{"download_url", "downloadUrl", "url", "link"} {
		t.Run(field, func(t *testing.T) {
			var srv *httptest.Server
			srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/ytmp3":
					fmt.Fprintf(w, `{"title":"Imagine",%q:%q}`, field, srv.URL+"/file.mp3")
				case "/file.mp3":
					_, _ = w.Write([]byte("audio"))
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()

			e, _ := ParseEndpoint("json:" + srv.URL + "/api/ytmp3?url={url}")
			data, err := NewHTTPProvider(e).Fetch(context.Background(), testTrack)
			if err != nil {
				t.Fatalf("Fetch error: %v", err)
			}
			if string(data) != "audio" {
				t.Fatalf("data = %q", data)
			}
		})
	}
}

func TestHTTPProvider_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			http.Error(w, "upstream down", http.StatusBadGateway)
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/nolink":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/garbage":
			_, _ = w.Write([]byte(`<html>`))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}
	}))
	defer srv.Close()

	tests := []struct {
		spec string
		opts []HTTPOption
		want string
	}{
		{"raw:" + srv.URL + "/status?u={url}", nil, "status 502"},
		{"raw:" + srv.URL + "/empty?u={url}", nil, "empty audio body"},
		{"json:" + srv.URL + "/nolink?u={url}", nil, "no download URL"},
		{"json:" + srv.URL + "/garbage?u={url}", nil, "decode response"},
		{"raw:" + srv.URL + "/big?u={url}", []HTTPOption{WithMaxBytes(16)}, "exceeds 16 bytes"},
	}
	for _, tt := range tests {
		e, err := ParseEndpoint(tt.spec)
		if err != nil {
			t.Fatalf("ParseEndpoint(%q) error: %v", tt.spec, err)
		}
		_, err = NewHTTPProvider(e, tt.opts...).Fetch(context.Background(), testTrack)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error = %v, want %q", tt.spec, err, tt.want)
		}
	}
}
