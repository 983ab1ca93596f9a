package mirror

// Event is a structured notification emitted during a run. The set of
// events is closed; sinks switch on the concrete types.
type Event interface {
	isEvent()
}

// RunStarted announces a run before the connection is made.
type RunStarted struct {
	DeleteRemote bool
}

// Connected is emitted once after a successful login.
type Connected struct {
	Addr string
}

// DirEntered is emitted when the walk descends into a directory.
type DirEntered struct {
	Path string
}

// DirListFailed is emitted when a directory listing fails. The subtree is
// skipped; siblings continue.
type DirListFailed struct {
	Path string
	Err  error
}

// EntrySkipped is emitted for entries that are neither plain files nor
// directories.
type EntrySkipped struct {
	Path   string
	Reason string
}

// FileResult is emitted once per processed file.
type FileResult struct {
	Result TransferResult
}

// RunFinished carries the final counters, emitted once after the walk.
type RunFinished struct {
	Summary RunSummary
}

func (RunStarted) isEvent()    {}
func (Connected) isEvent()     {}
func (DirEntered) isEvent()    {}
func (DirListFailed) isEvent() {}
func (EntrySkipped) isEvent()  {}
func (FileResult) isEvent()    {}
func (RunFinished) isEvent()   {}

// EventSink receives run events. Implementations may drop events freely;
// the engine never depends on delivery succeeding.
type EventSink interface {
	Emit(Event)
}
