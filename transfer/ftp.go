package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"ftpmirror/config"
)

var errNotConnected = errors.New("not connected to FTP server")

// FTPClient is a session against one FTP server. It provides the listing,
// download, size and delete operations the mirror engine drives, plus the
// directory navigation the interactive shell needs.
type FTPClient struct {
	cfg  config.LoginConfig
	conn *ftp.ServerConn
	dir  string

	// Progress, when set, receives byte progress while Retrieve copies data.
	Progress func(transferred, total int64, speed float64, elapsed time.Duration)
}

// NewFTPClient returns an unconnected client for the given login settings.
func NewFTPClient(cfg config.LoginConfig) *FTPClient {
	return &FTPClient{cfg: cfg, dir: "/"}
}

// Connect dials the server and logs in. The dial is retried with
// exponential backoff; a login rejection fails immediately.
func (c *FTPClient) Connect() error {
	var conn *ftp.ServerConn
	err := RetryWithExponentialBackoff("connect to "+c.cfg.Address, func() error {
		var dialErr error
		conn, dialErr = ftp.Dial(c.cfg.Address, ftp.DialWithTimeout(c.cfg.Timeout))
		return dialErr
	})
	if err != nil {
		return &ConnError{Addr: c.cfg.Address, Err: err}
	}

	if err := conn.Login(c.cfg.Username, c.cfg.Password); err != nil {
		conn.Quit()
		return &ConnError{Addr: c.cfg.Address, Err: fmt.Errorf("login failed: %w", err)}
	}

	c.conn = conn
	c.dir = "/"
	return nil
}

// IsConnected reports whether a session is established.
func (c *FTPClient) IsConnected() bool {
	return c.conn != nil
}

// Quit ends the session.
func (c *FTPClient) Quit() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Quit()
	c.conn = nil
	return err
}

// List returns the entries of a remote directory. "." and ".." are
// filtered out.
func (c *FTPClient) List(dirPath string) ([]RemoteEntry, error) {
	if c.conn == nil {
		return nil, &ListError{Path: dirPath, Err: errNotConnected}
	}

	entries, err := c.conn.List(dirPath)
	if err != nil {
		return nil, &ListError{Path: dirPath, Err: err}
	}

	out := make([]RemoteEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		out = append(out, entryFromFTP(entry))
	}
	return out, nil
}

// Size returns the remote file size in bytes.
func (c *FTPClient) Size(remotePath string) (int64, error) {
	if c.conn == nil {
		return 0, &StatError{Path: remotePath, Err: errNotConnected}
	}

	size, err := c.conn.FileSize(remotePath)
	if err != nil {
		return 0, &StatError{Path: remotePath, Err: err}
	}
	return size, nil
}

// Retrieve downloads remotePath into localPath, creating parent directories
// as needed. An interrupted transfer leaves a partial file behind; the
// post-download size check catches it.
func (c *FTPClient) Retrieve(remotePath, localPath string) error {
	if c.conn == nil {
		return &TransferError{Path: remotePath, Err: errNotConnected}
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return &TransferError{Path: remotePath, Err: fmt.Errorf("failed to create directories: %w", err)}
	}

	var total int64
	if c.Progress != nil {
		total, _ = c.conn.FileSize(remotePath)
	}

	resp, err := c.conn.Retr(remotePath)
	if err != nil {
		return &TransferError{Path: remotePath, Err: err}
	}
	defer func() {
		if closeErr := resp.Close(); closeErr != nil {
			// some servers report a 2xx status on close; not a failure
			if !strings.Contains(closeErr.Error(), "200") && !strings.Contains(closeErr.Error(), "226") {
				fmt.Printf("Warning: failed to close response: %v\n", closeErr)
			}
		}
	}()

	local, err := os.Create(localPath)
	if err != nil {
		return &TransferError{Path: remotePath, Err: fmt.Errorf("failed to create local file: %w", err)}
	}
	defer local.Close()

	if TryExclusiveLock(local) {
		defer UnlockFile(local)
	}

	var src io.Reader = resp
	if c.Progress != nil {
		src = &ProgressReader{Reader: resp, Total: total, OnProgress: c.Progress}
	}

	if _, err := io.Copy(local, src); err != nil {
		return &TransferError{Path: remotePath, Err: err}
	}
	return nil
}

// Delete removes a remote file.
func (c *FTPClient) Delete(remotePath string) error {
	if c.conn == nil {
		return &DeleteError{Path: remotePath, Err: errNotConnected}
	}

	if err := c.conn.Delete(remotePath); err != nil {
		return &DeleteError{Path: remotePath, Err: err}
	}
	return nil
}

// ChangeDir switches the session's working directory. Relative paths
// resolve against the current directory.
func (c *FTPClient) ChangeDir(dir string) error {
	if c.conn == nil {
		return errNotConnected
	}

	newPath := c.resolve(dir)
	if err := c.conn.ChangeDir(newPath); err != nil {
		return fmt.Errorf("failed to change directory: %w", err)
	}
	c.dir = newPath
	return nil
}

// CurrentDir returns the session's working directory.
func (c *FTPClient) CurrentDir() string {
	return c.dir
}

func (c *FTPClient) resolve(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(c.dir, p)
}

func entryFromFTP(entry *ftp.Entry) RemoteEntry {
	kind := EntryKindOther
	switch entry.Type {
	case ftp.EntryTypeFile:
		kind = EntryKindFile
	case ftp.EntryTypeFolder:
		kind = EntryKindDir
	}
	return RemoteEntry{
		Name:     entry.Name,
		Kind:     kind,
		Size:     int64(entry.Size),
		Modified: entry.Time,
	}
}
