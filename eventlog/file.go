package eventlog

import (
	"fmt"
	"os"
	"time"

	"ftpmirror/mirror"
)

// timestampLayout is the prefix format of every log line.
const timestampLayout = "2006-01-02 15:04:05"

// FileSink appends one timestamped line per event to a plain text log file.
type FileSink struct {
	f *os.File
}

// NewFileSink opens (or creates) the log file for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %v", path, err)
	}
	return &FileSink{f: f}, nil
}

// Emit appends the event as a log line.
func (s *FileSink) Emit(ev mirror.Event) {
	line := logLine(ev)
	if line == "" {
		return
	}
	fmt.Fprintf(s.f, "%s - %s\n", time.Now().Format(timestampLayout), line)
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.f.Close()
}

func logLine(ev mirror.Event) string {
	switch e := ev.(type) {
	case mirror.RunStarted:
		if e.DeleteRemote {
			return "Starting FTP mirror (download and delete)"
		}
		return "Starting FTP mirror (download only)"
	case mirror.Connected:
		return fmt.Sprintf("Connected to %s", e.Addr)
	case mirror.DirEntered:
		return fmt.Sprintf("Processing directory: %s", e.Path)
	case mirror.DirListFailed:
		return fmt.Sprintf("Listing failed, skipping subtree: %v", e.Err)
	case mirror.EntrySkipped:
		return fmt.Sprintf("Skipped %s: %s", e.Path, e.Reason)
	case mirror.FileResult:
		return resultLine(e.Result)
	case mirror.RunFinished:
		sum := e.Summary
		return fmt.Sprintf("Run completed: %d files processed, %d failed, %d deleted, %d delete failures (%s)",
			sum.FilesProcessed, sum.FilesFailed, sum.DeletionsPerformed, sum.DeletionsFailed,
			sum.Duration().Round(time.Millisecond))
	}
	return ""
}

func resultLine(res mirror.TransferResult) string {
	switch res.Outcome {
	case mirror.OutcomeDownloaded:
		return fmt.Sprintf("Downloaded: %s", res.RemotePath)
	case mirror.OutcomeDownloadedAndDeleted:
		return fmt.Sprintf("Downloaded and deleted: %s", res.RemotePath)
	case mirror.OutcomeDownloadFailed:
		return fmt.Sprintf("Download failed: %s (%s)", res.RemotePath, res.Detail)
	case mirror.OutcomeDeleteFailed:
		return fmt.Sprintf("Delete failed: %s (%s), local copy kept at %s", res.RemotePath, res.Detail, res.LocalPath)
	}
	return ""
}
