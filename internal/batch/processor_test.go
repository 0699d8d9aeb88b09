package batch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavtools/wavtrim/internal/wavio"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestWAV encodes samples to path with format f, creating parent
// directories as needed.
func writeTestWAV(t *testing.T, path string, samples []int16, f wavio.Format) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wavio.Encode(out, samples, f))
	require.NoError(t, out.Close())
}

func constant(n int, v int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// paddedSignal is one window of silence, one of signal, one of silence.
func paddedSignal() []int16 {
	s := make([]int16, 0, 2400)
	s = append(s, make([]int16, 800)...)
	s = append(s, constant(800, 1000)...)
	s = append(s, make([]int16, 800)...)
	return s
}

func TestRun_MixedValidity(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "good.wav"), paddedSignal(), wavio.Required)
	badFormat := wavio.Format{Channels: 1, SampleRate: 8000, BitDepth: 16, AudioFormat: 1}
	writeTestWAV(t, filepath.Join(in, "bad.wav"), constant(1600, 1000), badFormat)

	var errBuf bytes.Buffer
	p := New(discardLogger(), WithErrorWriter(&errBuf))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.Failed)
	assert.Len(t, sum.Results, 2)

	assert.Contains(t, errBuf.String(), "Error processing ")
	assert.Contains(t, errBuf.String(), filepath.Join(in, "bad.wav"))
	assert.NotContains(t, errBuf.String(), "good.wav")

	// Only the valid file gets a trimmed mirrored copy.
	got, f, err := wavio.DecodeFile(filepath.Join(out, "good.wav"))
	require.NoError(t, err)
	assert.Equal(t, wavio.Required, f)
	assert.Equal(t, constant(800, 1000), got)

	_, err = os.Stat(filepath.Join(out, "bad.wav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NestedTreeMirrored(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rel := filepath.Join("voices", "day1", "take.wav")
	writeTestWAV(t, filepath.Join(in, rel), paddedSignal(), wavio.Required)

	p := New(discardLogger(), WithErrorWriter(io.Discard))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)

	got, _, err := wavio.DecodeFile(filepath.Join(out, rel))
	require.NoError(t, err)
	assert.Equal(t, constant(800, 1000), got)
}

func TestRun_MissingInputDir(t *testing.T) {
	p := New(discardLogger())
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir())
	assert.ErrorIs(t, err, ErrInputDirNotFound)
}

func TestRun_SelectsOnlyLowercaseWAV(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "clip.wav"), paddedSignal(), wavio.Required)
	writeTestWAV(t, filepath.Join(in, "CLIP.WAV"), paddedSignal(), wavio.Required)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("not audio"), 0o600))

	p := New(discardLogger(), WithErrorWriter(io.Discard))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.Failed)

	_, err = os.Stat(filepath.Join(out, "clip.wav"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "CLIP.WAV"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(out, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_UnreadableSubtreeIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind for root, skipping test")
	}

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "ok.wav"), paddedSignal(), wavio.Required)
	locked := filepath.Join(in, "locked")
	writeTestWAV(t, filepath.Join(locked, "unreachable.wav"), paddedSignal(), wavio.Required)
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o750) })

	// The unreadable subtree is skipped; the rest of the batch runs.
	p := New(discardLogger(), WithErrorWriter(io.Discard))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.Failed)

	_, err = os.Stat(filepath.Join(out, "ok.wav"))
	assert.NoError(t, err)
}

func TestRun_IgnoresBareDotWAV(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "clip.wav"), paddedSignal(), wavio.Required)
	writeTestWAV(t, filepath.Join(in, ".wav"), paddedSignal(), wavio.Required)

	p := New(discardLogger(), WithErrorWriter(io.Discard))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	_, err = os.Stat(filepath.Join(out, ".wav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_AllSilenceProducesEmptyWAV(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "quiet.wav"), make([]int16, 2400), wavio.Required)

	p := New(discardLogger(), WithErrorWriter(io.Discard))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)

	got, f, err := wavio.DecodeFile(filepath.Join(out, "quiet.wav"))
	require.NoError(t, err)
	assert.Equal(t, wavio.Required, f)
	assert.Empty(t, got)
}

func TestRun_ThresholdOption(t *testing.T) {
	// Signal at RMS 50 survives -60 dBFS but is all silence at -40.
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	quietSignal := make([]int16, 0, 2400)
	quietSignal = append(quietSignal, make([]int16, 800)...)
	quietSignal = append(quietSignal, constant(800, 50)...)
	quietSignal = append(quietSignal, make([]int16, 800)...)
	writeTestWAV(t, filepath.Join(in, "soft.wav"), quietSignal, wavio.Required)

	p := New(discardLogger(), WithErrorWriter(io.Discard), WithThreshold(-60))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)
	require.Equal(t, 1, sum.Processed)

	got, _, err := wavio.DecodeFile(filepath.Join(out, "soft.wav"))
	require.NoError(t, err)
	assert.Len(t, got, 800)

	out2 := filepath.Join(t.TempDir(), "out2")
	p = New(discardLogger(), WithErrorWriter(io.Discard), WithThreshold(-40))
	sum, err = p.Run(context.Background(), in, out2)
	require.NoError(t, err)
	require.Equal(t, 1, sum.Processed)

	got, _, err = wavio.DecodeFile(filepath.Join(out2, "soft.wav"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRun_ParallelWorkersSameCounts(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	badFormat := wavio.Format{Channels: 1, SampleRate: 44100, BitDepth: 16, AudioFormat: 1}
	for _, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav", "f.wav"} {
		writeTestWAV(t, filepath.Join(in, name), paddedSignal(), wavio.Required)
	}
	writeTestWAV(t, filepath.Join(in, "x.wav"), constant(800, 1000), badFormat)
	writeTestWAV(t, filepath.Join(in, "y.wav"), constant(800, 1000), badFormat)

	var errBuf bytes.Buffer
	p := New(discardLogger(), WithErrorWriter(&errBuf), WithWorkers(4))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Processed)
	assert.Equal(t, 2, sum.Failed)
	assert.Len(t, sum.Results, 8)
	assert.Contains(t, errBuf.String(), "x.wav")
	assert.Contains(t, errBuf.String(), "y.wav")
}

// fakeUploader records uploaded keys and optionally fails.
type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeUploader) UploadFile(_ context.Context, key, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "mem://" + key, nil
}

func TestRun_MirrorsUploads(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "sub", "clip.wav"), paddedSignal(), wavio.Required)

	up := &fakeUploader{}
	p := New(discardLogger(), WithErrorWriter(io.Discard), WithUploader(up))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, []string{"sub/clip.wav"}, up.keys)
}

func TestRun_UploadFailureIsPerFile(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWAV(t, filepath.Join(in, "clip.wav"), paddedSignal(), wavio.Required)

	var errBuf bytes.Buffer
	up := &fakeUploader{err: assert.AnError}
	p := New(discardLogger(), WithErrorWriter(&errBuf), WithUploader(up))
	sum, err := p.Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Processed)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, errBuf.String(), "mirror to remote storage")

	// The local copy was already written before the upload attempt.
	_, statErr := os.Stat(filepath.Join(out, "clip.wav"))
	assert.NoError(t, statErr)
}
