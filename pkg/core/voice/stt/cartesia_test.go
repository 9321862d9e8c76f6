package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestSessionURL(t *testing.T) {
	c := NewCartesia("key")
	raw, err := c.sessionURL(TranscribeOptions{Language: "id"})
	if err != nil {
		t.Fatalf("sessionURL error: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("model") != "ink-whisper" || q.Get("language") != "id" || q.Get("encoding") != "pcm_s16le" || q.Get("sample_rate") != "16000" {
		t.Fatalf("query = %v", q)
	}
	if q.Get("api_key") != "key" {
		t.Fatal("api key not set")
	}
	if c.Name() != "cartesia" {
		t.Fatalf("name = %q", c.Name())
	}
}

func fakeCartesiaServer(t *testing.T, onFinalize func(conn *websocket.Conn, audioBytes int)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "key" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		received := 0
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			switch {
			case mt == websocket.BinaryMessage:
				received += len(data)
			case string(data) == "finalize":
				onFinalize(conn, received)
			case string(data) == "done":
				_ = conn.WriteJSON(map[string]any{"type": "done"})
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamingSTT_FinalizeFlow(t *testing.T) {
	srv := fakeCartesiaServer(t, func(conn *websocket.Conn, audioBytes int) {
		if audioBytes != 640 {
			t.Errorf("server received %d bytes, want 640", audioBytes)
		}
		_ = conn.WriteJSON(map[string]any{"type": "transcript", "text": "nomor", "is_final": false})
		_ = conn.WriteJSON(map[string]any{"type": "transcript", "text": "nomor dua", "is_final": true, "duration": 1.2})
		_ = conn.WriteJSON(map[string]any{"type": "flush_done"})
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := NewCartesia("key", WithURL(wsURL(srv))).Open(ctx, TranscribeOptions{})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stream.Close()

	if err := stream.SendAudio(make([]byte, 320)); err != nil {
		t.Fatalf("SendAudio error: %v", err)
	}
	if err := stream.SendAudio(make([]byte, 320)); err != nil {
		t.Fatalf("SendAudio error: %v", err)
	}
	if err := stream.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	var deltas []TranscriptDelta
	for d := range stream.Transcripts() {
		deltas = append(deltas, d)
		if d.Flushed {
			break
		}
	}
	if len(deltas) != 3 {
		t.Fatalf("deltas = %#v", deltas)
	}
	if !deltas[1].IsFinal || deltas[1].Text != "nomor dua" || deltas[1].Timestamp != 1.2 {
		t.Fatalf("final delta = %#v", deltas[1])
	}

	if err := stream.Close(); err != nil {
		t.Logf("close: %v", err)
	}
	if err := stream.SendAudio([]byte{0}); err == nil {
		t.Fatal("SendAudio after Close should fail")
	}
}

func TestStreamingSTT_ServerError(t *testing.T) {
	srv := fakeCartesiaServer(t, func(conn *websocket.Conn, _ int) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "error": "quota exceeded"})
	})
	defer srv.Close()

	stream, err := NewCartesia("key", WithURL(wsURL(srv))).Open(context.Background(), TranscribeOptions{})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stream.Close()

	_ = stream.Finalize()
	for range stream.Transcripts() {
	}
	if err := stream.Err(); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Err() = %v", err)
	}
}

func TestStreamingSTT_DialFailure(t *testing.T) {
	srv := fakeCartesiaServer(t, func(*websocket.Conn, int) {})
	defer srv.Close()

	_, err := NewCartesia("wrong", WithURL(wsURL(srv))).Open(context.Background(), TranscribeOptions{})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("error = %v, want status 401", err)
	}
}
