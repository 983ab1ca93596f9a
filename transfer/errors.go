package transfer

import "fmt"

// ConnError reports a failed dial or login. A run cannot start without a
// connection, so callers treat it as fatal.
type ConnError struct {
	Addr string
	Err  error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// ListError reports a failed directory listing. The directory's subtree is
// skipped; siblings keep processing.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// StatError reports a failed remote size lookup.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to get size of %s: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// TransferError reports a failed download. The file counts as failed and
// is never deleted remotely.
type TransferError struct {
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DeleteError reports a failed remote delete. The local copy stays valid.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
