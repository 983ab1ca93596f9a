package mirror

import "time"

// Outcome is the terminal state of one processed file.
type Outcome int

const (
	// OutcomeDownloaded means the file was downloaded and verified; the
	// remote copy was left in place (safe mode).
	OutcomeDownloaded Outcome = iota

	// OutcomeDownloadFailed means the download did not complete or the
	// local copy failed verification. The remote file is untouched.
	OutcomeDownloadFailed

	// OutcomeDownloadedAndDeleted means the file was downloaded, verified
	// and then removed from the server.
	OutcomeDownloadedAndDeleted

	// OutcomeDeleteFailed means the download was verified but the remote
	// delete failed. The local copy is still valid.
	OutcomeDeleteFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "Downloaded"
	case OutcomeDownloadFailed:
		return "DownloadFailed"
	case OutcomeDownloadedAndDeleted:
		return "DownloadedAndDeleted"
	case OutcomeDeleteFailed:
		return "DeleteFailed"
	default:
		return "Unknown"
	}
}

// TransferResult describes what happened to one remote file.
type TransferResult struct {
	RemotePath string
	LocalPath  string
	Outcome    Outcome
	Detail     string // underlying error message, empty on success
	Bytes      int64
	Duration   time.Duration
}

// RunSummary accumulates counters across a whole run.
type RunSummary struct {
	FilesProcessed     int
	FilesFailed        int
	DeletionsPerformed int
	DeletionsFailed    int
	StartedAt          time.Time
	FinishedAt         time.Time
}

// Duration returns the wall-clock time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
