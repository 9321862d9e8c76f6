package voice

import "time"

// Event is the endpointer's verdict for one audio frame.
type Event int

const (
	// EventNone means nothing changed.
	EventNone Event = iota
	// EventSpeechStart marks the first loud frame of a phrase.
	EventSpeechStart
	// EventSpeechEnd marks the end of a phrase.
	EventSpeechEnd
	// EventDiscard means the phrase was too short to be speech.
	EventDiscard
)

// String returns a human-readable event name.
func (e Event) String() string {
	switch e {
	case EventNone:
		return "NONE"
	case EventSpeechStart:
		return "SPEECH_START"
	case EventSpeechEnd:
		return "SPEECH_END"
	case EventDiscard:
		return "DISCARD"
	default:
		return "UNKNOWN"
	}
}

// EndpointConfig configures phrase detection.
type EndpointConfig struct {
	EnergyThreshold float64       // RMS on the 16-bit sample scale
	PauseThreshold  time.Duration // silence that ends a phrase
	MinSpeech       time.Duration // shorter phrases are discarded
	MaxPhrase       time.Duration // phrases are cut at this length
	SampleRate      int
}

// DefaultEndpointConfig returns the listener defaults.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		EnergyThreshold: 300,
		PauseThreshold:  time.Second,
		MinSpeech:       250 * time.Millisecond,
		MaxPhrase:       15 * time.Second,
		SampleRate:      DefaultSampleRate,
	}
}

// Endpointer splits a frame stream into phrases by energy.
type Endpointer struct {
	cfg      EndpointConfig
	speaking bool
	voiced   time.Duration
	silence  time.Duration
	phrase   time.Duration
}

// NewEndpointer creates an endpointer. Zero fields take defaults.
func NewEndpointer(cfg EndpointConfig) *Endpointer {
	def := DefaultEndpointConfig()
	if cfg.EnergyThreshold <= 0 {
		cfg.EnergyThreshold = def.EnergyThreshold
	}
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = def.PauseThreshold
	}
	if cfg.MinSpeech < 0 {
		cfg.MinSpeech = 0
	}
	if cfg.MaxPhrase <= 0 {
		cfg.MaxPhrase = def.MaxPhrase
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	return &Endpointer{cfg: cfg}
}

// Speaking reports whether a phrase is in progress.
func (e *Endpointer) Speaking() bool {
	return e.speaking
}

// Push classifies the next frame.
func (e *Endpointer) Push(frame []byte) Event {
	d := PCMDuration(len(frame), e.cfg.SampleRate)
	loud := CalculateRMSEnergy(frame) >= e.cfg.EnergyThreshold

	if !e.speaking {
		if !loud {
			return EventNone
		}
		e.speaking = true
		e.voiced, e.silence, e.phrase = d, 0, d
		return EventSpeechStart
	}

	e.phrase += d
	if loud {
		e.voiced += d
		e.silence = 0
	} else {
		e.silence += d
	}

	switch {
	case e.phrase >= e.cfg.MaxPhrase:
		e.Reset()
		return EventSpeechEnd
	case e.silence >= e.cfg.PauseThreshold:
		short := e.voiced < e.cfg.MinSpeech
		e.Reset()
		if short {
			return EventDiscard
		}
		return EventSpeechEnd
	}
	return EventNone
}

// Reset returns to the waiting state.
func (e *Endpointer) Reset() {
	e.speaking = false
	e.voiced, e.silence, e.phrase = 0, 0, 0
}
