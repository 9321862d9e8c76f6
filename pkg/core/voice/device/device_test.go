package device

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/vango-go/vai-assistant/pkg/core"
)

func wavClip(channels uint16, rate uint32, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&data, binary.LittleEndian, s)
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+data.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, channels)
	_ = binary.Write(&b, binary.LittleEndian, rate)
	_ = binary.Write(&b, binary.LittleEndian, rate*uint32(channels)*2)
	_ = binary.Write(&b, binary.LittleEndian, channels*2)
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestDecode_WAVMonoWidensToStereo(t *testing.T) {
	pcm, rate, err := decode(wavClip(1, 22050, []int16{1, -2}))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rate != 22050 {
		t.Fatalf("rate = %d", rate)
	}
	want := []byte{1, 0, 1, 0, 0xfe, 0xff, 0xfe, 0xff}
	if !bytes.Equal(pcm, want) {
		t.Fatalf("pcm = %v, want %v", pcm, want)
	}
}

func TestDecode_WAVStereoPassesThrough(t *testing.T) {
	pcm, rate, err := decode(wavClip(2, 44100, []int16{5, 6, 7, 8}))
	if err != nil || rate != 44100 || len(pcm) != 8 {
		t.Fatalf("decode = %v, %d, %v", pcm, rate, err)
	}
}

func TestDecode_Rejects(t *testing.T) {
	for name, clip := range map[string][]byte{
		"empty":     nil,
		"not audio": []byte("this is not an mp3 file at all"),
		"no data":   []byte("RIFF\x04\x00\x00\x00WAVE"),
	} {
		if _, _, err := decode(clip); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestResample(t *testing.T) {
	in := make([]byte, 0, 16)
	for _, v := range []int16{0, 0, 100, 100, 200, 200, 300, 300} {
		in = binary.LittleEndian.AppendUint16(in, uint16(v))
	}

	if got := resample(in, 44100, 44100); !bytes.Equal(got, in) {
		t.Fatal("same-rate resample should be a no-op")
	}

	up := resample(in, 1, 2)
	if len(up) != 2*len(in) {
		t.Fatalf("upsampled len = %d, want %d", len(up), 2*len(in))
	}
	if mid := int16(binary.LittleEndian.Uint16(up[4:])); mid != 50 {
		t.Fatalf("interpolated sample = %d, want 50", mid)
	}

	down := resample(in, 2, 1)
	if len(down) != len(in)/2 {
		t.Fatalf("downsampled len = %d", len(down))
	}
}

func TestFFplaySink(t *testing.T) {
	var gotName string
	var gotStdin []byte
	sink := NewFFplaySink("").WithRunner(func(ctx context.Context, stdin []byte, name string, args ...string) error {
		gotName = name
		gotStdin = stdin
		return nil
	})

	if err := sink.Play(context.Background(), []byte("mp3")); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	if gotName != "ffplay" || string(gotStdin) != "mp3" {
		t.Fatalf("ran %q with %q", gotName, gotStdin)
	}

	if err := sink.Play(context.Background(), nil); !core.IsErrorType(err, core.ErrPlayback) {
		t.Fatalf("empty clip error = %v, want playback error", err)
	}

	sink.WithRunner(func(context.Context, []byte, string, ...string) error { return errors.New("exit status 1") })
	if err := sink.Play(context.Background(), []byte("x")); !core.IsErrorType(err, core.ErrPlayback) {
		t.Fatalf("runner failure = %v, want playback error", err)
	}
}

func TestOtoSink_DecodeFailureIsPlaybackError(t *testing.T) {
	err := NewOtoSink().Play(context.Background(), []byte("garbage"))
	if !core.IsErrorType(err, core.ErrPlayback) {
		t.Fatalf("error = %v, want playback error", err)
	}
}
