// Package stt provides streaming speech-to-text for the listener.
package stt

import "context"

// Streamer opens live transcription sessions.
type Streamer interface {
	// Name returns the provider identifier.
	Name() string

	// Open starts a session that accepts PCM audio and emits transcripts.
	Open(ctx context.Context, opts TranscribeOptions) (Stream, error)
}

// Stream is one live transcription session.
type Stream interface {
	SendAudio(data []byte) error
	Finalize() error
	Transcripts() <-chan TranscriptDelta
	Err() error
	Close() error
}

// TranscribeOptions configures transcription.
type TranscribeOptions struct {
	Model      string // Provider-specific model (default: "ink-whisper")
	Language   string // ISO language code (default: "en")
	Encoding   string // PCM encoding (default: "pcm_s16le")
	SampleRate int    // Audio sample rate in Hz (default: 16000)
}

// TranscriptDelta is a streaming transcript update.
type TranscriptDelta struct {
	Text      string  // Transcript segment
	IsFinal   bool    // True if this segment will not be revised
	Flushed   bool    // True once all audio sent before Finalize is transcribed
	Timestamp float64 // Audio duration in seconds
}
