package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordTurn("chat")
	m.RecordTransition("normal", "music_selection")
	m.RecordListen(time.Second)
	m.RecordChatAttempt("gemini", "ok")
	m.RecordChat("gemini", time.Second)
	m.RecordSearch("yt-dlp", "ok")
	m.RecordDownloadAttempt("primary", "ok", 10)
	m.RecordPlayback("ok")
	m.RecordError("api_error")
}

func TestRecordCounters(t *testing.T) {
	m := New("test")
	m.RecordTurn("chat")
	m.RecordTurn("chat")
	m.RecordDownloadAttempt("primary", "failed", 0)
	m.RecordDownloadAttempt("secondary", "ok", 1024)

	if got := testutil.ToFloat64(m.TurnsTotal.WithLabelValues("chat")); got != 2 {
		t.Fatalf("turns_total{chat} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DownloadAttemptsTotal.WithLabelValues("primary", "failed")); got != 1 {
		t.Fatalf("download_attempts_total{primary,failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DownloadBytesTotal.WithLabelValues("secondary")); got != 1024 {
		t.Fatalf("download_bytes_total{secondary} = %v, want 1024", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New("")
	m.RecordPlayback("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "assistant_playbacks_total") {
		t.Fatalf("metrics body missing playbacks counter:\n%s", rec.Body.String())
	}
}
