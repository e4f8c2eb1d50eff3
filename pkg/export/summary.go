package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const percent = 100

// Summary describes one export run for the CLI.
type Summary struct {
	Format      string
	Frames      int
	Visible     int
	RawBytes    int64
	StoredBytes int64
}

// Ratio returns stored over raw bytes, or 1 when nothing was compressed.
func (s Summary) Ratio() float64 {
	if s.RawBytes == 0 || s.StoredBytes == 0 {
		return 1
	}

	return float64(s.StoredBytes) / float64(s.RawBytes)
}

func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(s.Format)

	if s.Visible > 0 {
		fmt.Fprintf(&sb, ": %s visible nodes", humanize.Comma(int64(s.Visible)))
	}

	if s.Frames > 0 {
		fmt.Fprintf(&sb, ", %s frames", humanize.Comma(int64(s.Frames)))
	}

	stored := humanize.Bytes(uint64(max(s.StoredBytes, 0))) //nolint:gosec // clamped
	fmt.Fprintf(&sb, ", %s", stored)

	if s.RawBytes > 0 && s.RawBytes != s.StoredBytes {
		raw := humanize.Bytes(uint64(s.RawBytes)) //nolint:gosec // positive in this branch
		fmt.Fprintf(&sb, " (%s raw, %.0f%%)", raw, s.Ratio()*percent)
	}

	return sb.String()
}

// CountingWriter counts bytes passed to the wrapped writer.
type CountingWriter struct {
	W io.Writer
	N int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.N += int64(n)

	return n, err
}
