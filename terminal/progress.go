package terminal

import (
	"fmt"
	"io"
	"time"
)

// DrawProgress renders a single progress line, overwriting the current one.
// The signature matches the transfer progress callback; speed is in bytes
// per second.
func DrawProgress(out io.Writer, transferred, total int64, speed float64, elapsed time.Duration) {
	progress := 100.0
	if total > 0 {
		progress = float64(transferred) / float64(total) * 100
	}
	if progress > 100 {
		progress = 100
	}

	fmt.Fprintf(out, "\rProgress: [%s] %.1f%% %.2f MB/s Time: %ds",
		progressBar(progress),
		progress,
		speed/1024/1024,
		int(elapsed.Seconds()))
}

// ClearProgress erases a progress line drawn by DrawProgress.
func ClearProgress(out io.Writer) {
	fmt.Fprint(out, "\r\033[K")
}

func progressBar(progress float64) string {
	const width = 50
	pos := int(float64(width) * progress / 100)
	bar := make([]rune, width)
	for i := range bar {
		switch {
		case i < pos:
			bar[i] = '='
		case i == pos:
			bar[i] = '>'
		default:
			bar[i] = ' '
		}
	}
	return string(bar)
}
