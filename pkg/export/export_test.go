package export_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/export"
	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

type item struct {
	Name string
	Size float64
	Kids []*item
}

func sample() *item {
	return &item{Name: "root", Size: 10, Kids: []*item{
		{Name: "a", Size: 6, Kids: []*item{{Name: "a1", Size: 1}, {Name: "a2", Size: 2}}},
		{Name: "b", Size: 3},
	}}
}

func newViz(t *testing.T) (*weightedtree.Viz[*item], *transition.ManualClock) {
	t.Helper()

	clock := transition.NewManualClock(time.Unix(0, 0))
	cfg := weightedtree.DefaultConfig[*item]()
	cfg.Data = sample()
	cfg.Children = func(d *item) []*item { return d.Kids }
	cfg.Value = func(d *item) float64 { return d.Size }
	cfg.Label = func(d *item) string { return d.Name }
	cfg.Key = func(d *item) string { return d.Name }
	cfg.Clock = clock

	viz := weightedtree.New(cfg)
	require.NoError(t, viz.Update(false))

	return viz, clock
}

func TestSVG(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)
	require.NoError(t, export.Settle(viz, clock))
	assert.False(t, viz.Busy())

	var buf bytes.Buffer
	require.NoError(t, export.SVG(&buf, viz))
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))
	assert.Contains(t, buf.String(), `data-key="a"`)
}

func TestHTML(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)
	require.NoError(t, export.Settle(viz, clock))

	var buf bytes.Buffer
	require.NoError(t, export.HTML(&buf, viz, export.PageOptions{Title: "Sample", Theme: plotpage.ThemeLight}))

	html := buf.String()
	assert.Contains(t, html, "<title>Sample</title>")
	assert.Contains(t, html, "<svg")
	assert.Contains(t, html, "Explorer")
	assert.Contains(t, html, "3 visible nodes")
}

func TestFrames(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)
	require.True(t, viz.Busy())

	var frames [][]byte

	n, err := export.Frames(viz, clock, 30, export.FrameSinkFunc(func(i int, frame []byte) error {
		assert.Equal(t, len(frames), i)
		frames = append(frames, frame)

		return nil
	}))
	require.NoError(t, err)
	assert.Len(t, frames, n)
	assert.Greater(t, n, 15)
	assert.False(t, viz.Busy())

	var final bytes.Buffer
	require.NoError(t, viz.WriteSVG(&final))
	assert.Equal(t, final.Bytes(), frames[n-1])
	assert.NotEqual(t, frames[0], frames[n-1])
}

func TestFrames_InvalidFPS(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)

	_, err := export.Frames(viz, clock, 0, export.DirSink{Dir: t.TempDir()})
	require.ErrorIs(t, err, export.ErrInvalidFPS)
}

func TestFrames_IdleWritesOneFrame(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)
	require.NoError(t, export.Settle(viz, clock))

	dir := t.TempDir()

	n, err := export.Frames(viz, clock, 24, export.DirSink{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(dir, "frame-00000.svg"))
	require.NoError(t, err)
}

func TestLZ4FrameRoundTrip(t *testing.T) {
	t.Parallel()

	viz, clock := newViz(t)

	var (
		stream bytes.Buffer
		want   [][]byte
	)

	writer := export.NewLZ4FrameWriter(&stream)
	tee := export.FrameSinkFunc(func(i int, frame []byte) error {
		want = append(want, frame)

		return writer.WriteFrame(i, frame)
	})

	n, err := export.Frames(viz, clock, 20, tee)
	require.NoError(t, err)

	summary := writer.Summary()
	assert.Equal(t, n, summary.Frames)
	assert.Less(t, summary.Ratio(), 1.0)
	assert.Equal(t, int64(stream.Len()), summary.StoredBytes)

	var got [][]byte

	require.NoError(t, export.ReadLZ4Frames(&stream, func(i int, frame []byte) error {
		assert.Equal(t, len(got), i)
		got = append(got, frame)

		return nil
	}))
	assert.Equal(t, want, got)
}

func TestLZ4Frame_Incompressible(t *testing.T) {
	t.Parallel()

	noise := make([]byte, 256)
	_, err := rand.Read(noise)
	require.NoError(t, err)

	var stream bytes.Buffer

	writer := export.NewLZ4FrameWriter(&stream)
	require.NoError(t, writer.WriteFrame(0, noise))

	var got []byte

	require.NoError(t, export.ReadLZ4Frames(&stream, func(_ int, frame []byte) error {
		got = frame

		return nil
	}))
	assert.Equal(t, noise, got)
}

func TestReadLZ4Frames_Corrupt(t *testing.T) {
	t.Parallel()

	noop := func(int, []byte) error { return nil }

	err := export.ReadLZ4Frames(strings.NewReader("nope!"), noop)
	require.ErrorIs(t, err, export.ErrCorruptStream)

	var stream bytes.Buffer
	require.NoError(t, export.NewLZ4FrameWriter(&stream).WriteFrame(0, []byte(strings.Repeat("<g/>", 64))))

	truncated := stream.Bytes()[:stream.Len()-3]
	err = export.ReadLZ4Frames(bytes.NewReader(truncated), noop)
	require.ErrorIs(t, err, export.ErrCorruptStream)
}

func TestSummaryString(t *testing.T) {
	t.Parallel()

	s := export.Summary{Format: "svg", Visible: 1234, StoredBytes: 2048}
	assert.Equal(t, "svg: 1,234 visible nodes, 2.0 kB", s.String())

	s = export.Summary{Format: "frames+lz4", Frames: 12, RawBytes: 10000, StoredBytes: 2500}
	assert.Equal(t, "frames+lz4, 12 frames, 2.5 kB (10 kB raw, 25%)", s.String())
}

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cw := &export.CountingWriter{W: &buf}
	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), cw.N)
}
