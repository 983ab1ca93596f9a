package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"ftpmirror/mirror"
)

// MetricsHeader defines the CSV header for per file transfer metrics
const MetricsHeader = "Timestamp,RemotePath,LocalPath,Outcome,Bytes,Seconds,ThroughputMBps,Detail\n"

// CSVSink appends one CSV row per finished file transfer.
type CSVSink struct {
	path string
}

// NewCSVSink creates a sink that writes metrics rows to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Emit records FileResult events; all other events are ignored.
func (s *CSVSink) Emit(ev mirror.Event) {
	fr, ok := ev.(mirror.FileResult)
	if !ok {
		return
	}
	if err := s.append(fr.Result); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to log metrics: %v\n", err)
	}
}

func (s *CSVSink) append(res mirror.TransferResult) error {
	// Check if file exists to determine if we need to write header
	fileExists := true
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %v", s.path, err)
	}
	defer file.Close()

	if !fileExists {
		if _, err := file.WriteString(MetricsHeader); err != nil {
			return fmt.Errorf("failed to write header: %v", err)
		}
	}

	seconds := res.Duration.Seconds()
	throughput := 0.0
	if seconds > 0 && res.Bytes > 0 {
		throughput = float64(res.Bytes) / (1024 * 1024) / seconds
	}

	writer := csv.NewWriter(file)
	record := []string{
		time.Now().Format(time.RFC3339),
		res.RemotePath,
		res.LocalPath,
		res.Outcome.String(),
		strconv.FormatInt(res.Bytes, 10),
		strconv.FormatFloat(seconds, 'f', 3, 64),
		strconv.FormatFloat(throughput, 'f', 2, 64),
		res.Detail,
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %v", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %v", err)
	}

	return nil
}
