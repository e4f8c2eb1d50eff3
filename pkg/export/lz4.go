package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Stream layout: magic, then one record per frame. A record is a mode byte,
// the raw length and the stored length as little-endian uint32, then the
// stored bytes. Frames that do not compress are stored raw.
const (
	streamMagic = "WTRF\x01"
	modeRaw     = 0
	modeLZ4     = 1
	recordHead  = 9
	// maxFrameSize guards the decoder against corrupt length fields.
	maxFrameSize = 64 << 20
)

// ErrCorruptStream is returned when a frame stream cannot be decoded.
var ErrCorruptStream = errors.New("corrupt frame stream")

// LZ4FrameWriter packs frames into a single stream, compressing each one as
// an LZ4 block.
type LZ4FrameWriter struct {
	w       io.Writer
	started bool
	summary Summary
}

// NewLZ4FrameWriter returns a FrameSink writing to w.
func NewLZ4FrameWriter(w io.Writer) *LZ4FrameWriter {
	return &LZ4FrameWriter{w: w, summary: Summary{Format: "frames+lz4"}}
}

// WriteFrame appends one frame record.
func (f *LZ4FrameWriter) WriteFrame(_ int, frame []byte) error {
	if !f.started {
		_, err := io.WriteString(f.w, streamMagic)
		if err != nil {
			return fmt.Errorf("write stream header: %w", err)
		}

		f.started = true
		f.summary.StoredBytes += int64(len(streamMagic))
	}

	mode, payload := byte(modeRaw), frame

	compressed := make([]byte, lz4.CompressBlockBound(len(frame)))

	written, err := lz4.CompressBlock(frame, compressed, nil)
	if err == nil && written > 0 && written < len(frame) {
		mode, payload = modeLZ4, compressed[:written]
	}

	var head [recordHead]byte

	head[0] = mode
	binary.LittleEndian.PutUint32(head[1:5], uint32(len(frame)))   //nolint:gosec // frames are far below 4 GiB
	binary.LittleEndian.PutUint32(head[5:9], uint32(len(payload))) //nolint:gosec // same bound as above

	_, err = f.w.Write(head[:])
	if err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}

	_, err = f.w.Write(payload)
	if err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}

	f.summary.Frames++
	f.summary.RawBytes += int64(len(frame))
	f.summary.StoredBytes += int64(recordHead + len(payload))

	return nil
}

// Summary reports what has been written so far.
func (f *LZ4FrameWriter) Summary() Summary {
	return f.summary
}

// ReadLZ4Frames decodes a stream written by LZ4FrameWriter and calls fn for
// every frame in order.
func ReadLZ4Frames(r io.Reader, fn func(index int, frame []byte) error) error {
	br := bufio.NewReader(r)

	magic := make([]byte, len(streamMagic))

	_, err := io.ReadFull(br, magic)
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrCorruptStream, err)
	}

	if string(magic) != streamMagic {
		return fmt.Errorf("%w: bad magic %q", ErrCorruptStream, magic)
	}

	var head [recordHead]byte

	for index := 0; ; index++ {
		_, err = io.ReadFull(br, head[:])
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: frame %d: %w", ErrCorruptStream, index, err)
		}

		frame, decErr := readRecord(br, head)
		if decErr != nil {
			return fmt.Errorf("%w: frame %d: %w", ErrCorruptStream, index, decErr)
		}

		err = fn(index, frame)
		if err != nil {
			return err
		}
	}
}

func readRecord(r io.Reader, head [recordHead]byte) ([]byte, error) {
	rawLen := binary.LittleEndian.Uint32(head[1:5])
	storedLen := binary.LittleEndian.Uint32(head[5:9])

	if rawLen > maxFrameSize || storedLen > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d", rawLen)
	}

	stored := make([]byte, storedLen)

	_, err := io.ReadFull(r, stored)
	if err != nil {
		return nil, err
	}

	switch head[0] {
	case modeRaw:
		return stored, nil
	case modeLZ4:
		raw := make([]byte, rawLen)

		n, uncompressErr := lz4.UncompressBlock(stored, raw)
		if uncompressErr != nil {
			return nil, uncompressErr
		}

		return raw[:n], nil
	default:
		return nil, fmt.Errorf("unknown mode %d", head[0])
	}
}
