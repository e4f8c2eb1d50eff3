package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/wtree/pkg/svg"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// FrameSink receives encoded frames in order.
type FrameSink interface {
	WriteFrame(index int, frame []byte) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(index int, frame []byte) error

// WriteFrame calls f.
func (f FrameSinkFunc) WriteFrame(index int, frame []byte) error { return f(index, frame) }

// Frames renders the pending transitions of viz as a frame sequence. The
// first frame is the current scene; every following frame advances clock by
// 1/fps and ticks until no transition is left. It returns the frame count.
func Frames[D any](viz *weightedtree.Viz[D], clock *transition.ManualClock, fps int, sink FrameSink) (int, error) {
	step, err := frameStep(fps)
	if err != nil {
		return 0, err
	}

	limit := int(viz.Config().Duration/step) + settleSlack + 1

	frames := 0

	emit := func() error {
		buf, encErr := encode(viz.Scene())
		if encErr != nil {
			return encErr
		}

		writeErr := sink.WriteFrame(frames, buf)
		if writeErr != nil {
			return fmt.Errorf("write frame %d: %w", frames, writeErr)
		}

		frames++

		return nil
	}

	err = emit()
	if err != nil {
		return frames, err
	}

	for viz.Busy() {
		if frames > limit {
			return frames, fmt.Errorf("%w after %d frames", ErrUnsettled, frames)
		}

		clock.Advance(step)
		viz.Tick()

		err = emit()
		if err != nil {
			return frames, err
		}
	}

	return frames, nil
}

func encode(scene *svg.Element) ([]byte, error) {
	var buf bytes.Buffer

	err := scene.Encode(&buf)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return buf.Bytes(), nil
}

// DirSink writes every frame to its own numbered SVG file.
type DirSink struct {
	Dir string
}

// WriteFrame writes frame-NNNNN.svg into the sink directory.
func (d DirSink) WriteFrame(index int, frame []byte) error {
	name := filepath.Join(d.Dir, fmt.Sprintf("frame-%05d.svg", index))

	err := os.WriteFile(name, frame, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}
