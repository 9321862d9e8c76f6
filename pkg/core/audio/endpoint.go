package audio

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// Kind selects how an endpoint's response is interpreted.
type Kind string

const (
	// KindRaw endpoints return the audio bytes directly.
	KindRaw Kind = "raw"
	// KindJSON endpoints return a JSON document naming the audio URL.
	KindJSON Kind = "json"
)

// Endpoint is an operator-configured download provider.
//
// Template placeholders:
//
//	{url}  query-escaped source URL of the track
//	{id}   YouTube video id extracted from the source URL
type Endpoint struct {
	Name     string
	Kind     Kind
	Template string
}

// ParseEndpoint parses "kind:template", for example
// "json:https://example.com/api/mp3?url={url}".
func ParseEndpoint(spec string) (Endpoint, error) {
	spec = strings.TrimSpace(spec)
	kind, template, ok := strings.Cut(spec, ":")
	if !ok {
		return Endpoint{}, fmt.Errorf("download provider %q: expected kind:template", spec)
	}

	e := Endpoint{
		Kind:     Kind(strings.ToLower(strings.TrimSpace(kind))),
		Template: strings.TrimSpace(template),
	}
	switch e.Kind {
	case KindRaw, KindJSON:
	default:
		return Endpoint{}, fmt.Errorf("download provider %q: unknown kind %q (want raw or json)", spec, kind)
	}
	if !strings.Contains(e.Template, "{url}") && !strings.Contains(e.Template, "{id}") {
		return Endpoint{}, fmt.Errorf("download provider %q: template needs {url} or {id}", spec)
	}

	u, err := url.Parse(e.Template)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Endpoint{}, fmt.Errorf("download provider %q: template is not an http(s) URL", spec)
	}
	e.Name = u.Host + strings.TrimSuffix(path.Clean("/"+u.Path), "/")
	return e, nil
}

// ParseEndpoints parses a list of endpoint specs, keeping their order.
func ParseEndpoints(specs []string) ([]Endpoint, error) {
	out := make([]Endpoint, 0, len(specs))
	for _, spec := range specs {
		e, err := ParseEndpoint(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// URL expands the template for track.
func (e Endpoint) URL(track types.Track) (string, error) {
	if strings.TrimSpace(track.SourceURL) == "" {
		return "", fmt.Errorf("track %q has no source URL", track.Title)
	}
	out := strings.ReplaceAll(e.Template, "{url}", url.QueryEscape(track.SourceURL))
	if strings.Contains(out, "{id}") {
		id := VideoID(track.SourceURL)
		if id == "" {
			return "", fmt.Errorf("cannot extract video id from %q", track.SourceURL)
		}
		out = strings.ReplaceAll(out, "{id}", url.PathEscape(id))
	}
	return out, nil
}

// VideoID extracts the YouTube video id from a watch, short link or shorts
// URL. It returns "" when none is found.
func VideoID(source string) string {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "music.")

	switch host {
	case "youtu.be":
		return firstSegment(u.Path)
	case "youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return firstSegment(strings.TrimPrefix(u.Path, prefix))
			}
		}
	}
	return ""
}

func firstSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	return p
}
