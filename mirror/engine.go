package mirror

import (
	"fmt"
	"path"
	"time"

	"ftpmirror/config"
	"ftpmirror/transfer"
)

// TransferClient is the remote-side surface the engine drives. It is
// satisfied by transfer.FTPClient; tests substitute a fake.
type TransferClient interface {
	List(dirPath string) ([]transfer.RemoteEntry, error)
	Size(remotePath string) (int64, error)
	Retrieve(remotePath, localPath string) error
	Delete(remotePath string) error
}

// Engine walks a remote directory tree depth-first, downloads every file
// and optionally deletes remote copies whose download was verified.
// Processing is strictly sequential, so a delete decision always sees the
// verification outcome of its own file.
type Engine struct {
	cfg    config.SyncConfig
	client TransferClient
	sink   EventSink
	sum    RunSummary
}

// NewEngine builds an engine for one run. The client must already be
// connected; a nil sink discards all events.
func NewEngine(cfg config.SyncConfig, client TransferClient, sink EventSink) *Engine {
	if sink == nil {
		sink = discardSink{}
	}
	return &Engine{cfg: cfg, client: client, sink: sink}
}

// Run mirrors the configured remote tree and returns the final counters.
// Failures below the connection level never abort the walk; they are
// reported through the sink and counted.
func (e *Engine) Run() RunSummary {
	e.sum = RunSummary{StartedAt: time.Now()}
	e.walk(e.cfg.RemoteRoot)
	e.sum.FinishedAt = time.Now()
	e.sink.Emit(RunFinished{Summary: e.sum})
	return e.sum
}

func (e *Engine) walk(dir string) {
	e.sink.Emit(DirEntered{Path: dir})

	entries, err := e.client.List(dir)
	if err != nil {
		e.sink.Emit(DirListFailed{Path: dir, Err: err})
		return
	}

	for _, entry := range entries {
		switch entry.Kind {
		case transfer.EntryKindDir:
			e.walk(path.Join(dir, entry.Name))
		case transfer.EntryKindFile:
			e.processFile(dir, entry.Name)
		default:
			e.sink.Emit(EntrySkipped{
				Path:   path.Join(dir, entry.Name),
				Reason: "not a regular file or directory",
			})
		}
	}
}

// processFile drives one file to a terminal outcome. The remote delete is
// attempted only when the flag is set and the local copy verified.
func (e *Engine) processFile(dir, name string) {
	remotePath := path.Join(dir, name)
	res := TransferResult{
		RemotePath: remotePath,
		LocalPath:  MapPath(dir, name, e.cfg.RemoteRoot, e.cfg.LocalRoot, e.cfg.Flatten),
	}
	start := time.Now()

	size, err := e.client.Size(remotePath)
	if err == nil {
		err = e.client.Retrieve(remotePath, res.LocalPath)
	}

	switch {
	case err != nil:
		res.Outcome = OutcomeDownloadFailed
		res.Detail = err.Error()
	case !Verify(res.LocalPath, size):
		res.Outcome = OutcomeDownloadFailed
		res.Detail = fmt.Sprintf("verification failed: local copy is not %d bytes", size)
	case !e.cfg.DeleteRemote:
		res.Outcome = OutcomeDownloaded
		res.Bytes = size
	default:
		res.Bytes = size
		if delErr := e.client.Delete(remotePath); delErr != nil {
			res.Outcome = OutcomeDeleteFailed
			res.Detail = delErr.Error()
		} else {
			res.Outcome = OutcomeDownloadedAndDeleted
		}
	}
	res.Duration = time.Since(start)

	e.sum.FilesProcessed++
	switch res.Outcome {
	case OutcomeDownloadFailed:
		e.sum.FilesFailed++
	case OutcomeDownloadedAndDeleted:
		e.sum.DeletionsPerformed++
	case OutcomeDeleteFailed:
		e.sum.DeletionsFailed++
	}

	e.sink.Emit(FileResult{Result: res})
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
