package transfer

import (
	"io"
	"time"
)

// ProgressReader wraps an io.Reader to report transfer progress. Callbacks
// are throttled to one every 100ms so tight read loops stay cheap.
type ProgressReader struct {
	Reader      io.Reader
	Total       int64
	Transferred int64
	StartTime   time.Time
	LastUpdate  time.Time
	LastBytes   int64
	OnProgress  func(transferred, total int64, speed float64, elapsed time.Duration)
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	if pr.StartTime.IsZero() {
		pr.StartTime = time.Now()
		pr.LastUpdate = pr.StartTime
		pr.LastBytes = 0
	}

	n, err = pr.Reader.Read(p)
	if n > 0 {
		pr.Transferred += int64(n)

		now := time.Now()
		if now.Sub(pr.LastUpdate) >= 100*time.Millisecond {
			bytesDiff := pr.Transferred - pr.LastBytes
			timeDiff := now.Sub(pr.LastUpdate).Seconds()
			speed := float64(bytesDiff) / timeDiff

			if pr.OnProgress != nil {
				pr.OnProgress(pr.Transferred, pr.Total, speed, now.Sub(pr.StartTime))
			}

			pr.LastUpdate = now
			pr.LastBytes = pr.Transferred
		}
	}
	return
}
