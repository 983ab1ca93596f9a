package eventlog

import (
	"io"
	"time"

	"ftpmirror/mirror"
	"ftpmirror/terminal"
)

// ConsoleSink prints run events to a terminal using the active theme.
type ConsoleSink struct {
	out   io.Writer
	theme *terminal.ThemeManager
}

// NewConsoleSink creates a console sink writing to out.
func NewConsoleSink(out io.Writer, theme *terminal.ThemeManager) *ConsoleSink {
	return &ConsoleSink{out: out, theme: theme}
}

// Emit writes a human readable line for the event.
func (s *ConsoleSink) Emit(ev mirror.Event) {
	switch e := ev.(type) {
	case mirror.RunStarted:
		if e.DeleteRemote {
			s.theme.GetInfoColor().Fprintln(s.out, "Starting FTP mirror (download and delete)")
			s.theme.GetWarningColor().Fprintln(s.out, "⚠️  WARNING: Remote files will be DELETED after download!")
		} else {
			s.theme.GetInfoColor().Fprintln(s.out, "Starting FTP mirror (download only)")
			s.theme.GetInfoColor().Fprintln(s.out, "ℹ️  Safe mode: Files will be downloaded but NOT deleted from remote server")
		}
	case mirror.Connected:
		s.theme.GetSuccessColor().Fprintf(s.out, "Connected to %s\n", e.Addr)
	case mirror.DirEntered:
		s.theme.GetInfoColor().Fprintf(s.out, "Processing directory: %s\n", e.Path)
	case mirror.DirListFailed:
		s.theme.GetErrorColor().Fprintf(s.out, "Listing failed, skipping subtree: %v\n", e.Err)
	case mirror.EntrySkipped:
		s.theme.GetTextColor().Fprintf(s.out, "Skipped %s: %s\n", e.Path, e.Reason)
	case mirror.FileResult:
		s.fileResult(e.Result)
	case mirror.RunFinished:
		sum := e.Summary
		s.theme.GetInfoColor().Fprintf(s.out, "Run completed in %s: %d files processed, %d failed, %d deleted, %d delete failures\n",
			sum.Duration().Round(time.Millisecond),
			sum.FilesProcessed, sum.FilesFailed, sum.DeletionsPerformed, sum.DeletionsFailed)
	}
}

func (s *ConsoleSink) fileResult(res mirror.TransferResult) {
	switch res.Outcome {
	case mirror.OutcomeDownloaded:
		s.theme.GetSuccessColor().Fprintf(s.out, "Downloaded: %s\n", res.RemotePath)
	case mirror.OutcomeDownloadedAndDeleted:
		s.theme.GetSuccessColor().Fprintf(s.out, "Downloaded and deleted: %s\n", res.RemotePath)
	case mirror.OutcomeDownloadFailed:
		s.theme.GetErrorColor().Fprintf(s.out, "Download failed: %s (%s)\n", res.RemotePath, res.Detail)
	case mirror.OutcomeDeleteFailed:
		s.theme.GetErrorColor().Fprintf(s.out, "Delete failed: %s (%s), local copy kept at %s\n",
			res.RemotePath, res.Detail, res.LocalPath)
	}
}
