package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// Output format for the speaker: 16-bit signed little-endian stereo.
const (
	outputChannels = 2
	outputRate     = 44100
)

// decode turns an mp3 or PCM WAV clip into interleaved s16le stereo at the
// returned sample rate.
func decode(audio []byte) ([]byte, int, error) {
	if len(audio) == 0 {
		return nil, 0, errors.New("empty audio")
	}
	if isWAV(audio) {
		return decodeWAV(audio)
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	if len(pcm) == 0 {
		return nil, 0, errors.New("decode mp3: no samples")
	}
	return pcm, dec.SampleRate(), nil
}

func isWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

// decodeWAV reads 16-bit PCM WAV, widening mono to stereo.
func decodeWAV(b []byte) ([]byte, int, error) {
	var (
		channels, bits uint16
		rate           uint32
		haveFmt        bool
	)
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(b) {
			end = len(b)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, 0, errors.New("decode wav: short fmt chunk")
			}
			if format := binary.LittleEndian.Uint16(b[body:]); format != 1 {
				return nil, 0, fmt.Errorf("decode wav: unsupported format %d", format)
			}
			channels = binary.LittleEndian.Uint16(b[body+2:])
			rate = binary.LittleEndian.Uint32(b[body+4:])
			bits = binary.LittleEndian.Uint16(b[body+14:])
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, errors.New("decode wav: data before fmt")
			}
			if bits != 16 || (channels != 1 && channels != 2) {
				return nil, 0, fmt.Errorf("decode wav: unsupported %d-bit %d-channel audio", bits, channels)
			}
			data := b[body:end]
			if channels == 2 {
				return data, int(rate), nil
			}
			return monoToStereo(data), int(rate), nil
		}
		pos = body + size + size%2
	}
	return nil, 0, errors.New("decode wav: no data chunk")
}

func monoToStereo(pcm []byte) []byte {
	out := make([]byte, 0, len(pcm)*2)
	for i := 0; i+1 < len(pcm); i += 2 {
		out = append(out, pcm[i], pcm[i+1], pcm[i], pcm[i+1])
	}
	return out
}

// resample converts s16le stereo between sample rates by linear
// interpolation.
func resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 {
		return pcm
	}
	const frameBytes = 2 * outputChannels
	inFrames := len(pcm) / frameBytes
	if inFrames == 0 {
		return nil
	}
	outFrames := int(int64(inFrames) * int64(to) / int64(from))
	out := make([]byte, outFrames*frameBytes)

	sample := func(frame, ch int) float64 {
		if frame >= inFrames {
			frame = inFrames - 1
		}
		i := frame*frameBytes + ch*2
		return float64(int16(binary.LittleEndian.Uint16(pcm[i:])))
	}

	for f := 0; f < outFrames; f++ {
		srcPos := float64(f) * float64(from) / float64(to)
		i := int(srcPos)
		frac := srcPos - float64(i)
		for ch := 0; ch < outputChannels; ch++ {
			v := sample(i, ch)*(1-frac) + sample(i+1, ch)*frac
			binary.LittleEndian.PutUint16(out[f*frameBytes+ch*2:], uint16(int16(v)))
		}
	}
	return out
}
