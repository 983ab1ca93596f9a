package mirror

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftpmirror/config"
	"ftpmirror/transfer"
)

// fakeClient serves a canned remote tree from memory and records the
// operations performed against it.
type fakeClient struct {
	tree  map[string][]transfer.RemoteEntry
	files map[string][]byte

	listErrs     map[string]error
	sizeErrs     map[string]error
	retrieveErrs map[string]error
	deleteErrs   map[string]error

	retrieved []string
	deleted   []string

	// retrieveFunc, when set, replaces the default retrieve behavior.
	retrieveFunc func(remotePath, localPath string) error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		tree:         make(map[string][]transfer.RemoteEntry),
		files:        make(map[string][]byte),
		listErrs:     make(map[string]error),
		sizeErrs:     make(map[string]error),
		retrieveErrs: make(map[string]error),
		deleteErrs:   make(map[string]error),
	}
}

func (f *fakeClient) addDir(remotePath string) {
	parent := path.Dir(remotePath)
	f.tree[parent] = append(f.tree[parent], transfer.RemoteEntry{
		Name: path.Base(remotePath),
		Kind: transfer.EntryKindDir,
	})
	if _, ok := f.tree[remotePath]; !ok {
		f.tree[remotePath] = nil
	}
}

func (f *fakeClient) addFile(remotePath, content string) {
	dir := path.Dir(remotePath)
	f.tree[dir] = append(f.tree[dir], transfer.RemoteEntry{
		Name: path.Base(remotePath),
		Kind: transfer.EntryKindFile,
		Size: int64(len(content)),
	})
	f.files[remotePath] = []byte(content)
}

func (f *fakeClient) addOther(remotePath string) {
	dir := path.Dir(remotePath)
	f.tree[dir] = append(f.tree[dir], transfer.RemoteEntry{
		Name: path.Base(remotePath),
		Kind: transfer.EntryKindOther,
	})
}

func (f *fakeClient) List(dirPath string) ([]transfer.RemoteEntry, error) {
	if err := f.listErrs[dirPath]; err != nil {
		return nil, err
	}
	entries, ok := f.tree[dirPath]
	if !ok {
		return nil, errors.New("no such directory")
	}
	return entries, nil
}

func (f *fakeClient) Size(remotePath string) (int64, error) {
	if err := f.sizeErrs[remotePath]; err != nil {
		return 0, err
	}
	content, ok := f.files[remotePath]
	if !ok {
		return 0, errors.New("no such file")
	}
	return int64(len(content)), nil
}

func (f *fakeClient) Retrieve(remotePath, localPath string) error {
	f.retrieved = append(f.retrieved, remotePath)
	if f.retrieveFunc != nil {
		return f.retrieveFunc(remotePath, localPath)
	}
	if err := f.retrieveErrs[remotePath]; err != nil {
		return err
	}
	content, ok := f.files[remotePath]
	if !ok {
		return errors.New("no such file")
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(localPath, content, 0644)
}

func (f *fakeClient) Delete(remotePath string) error {
	if err := f.deleteErrs[remotePath]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, remotePath)
	return nil
}

// recordSink keeps every emitted event for inspection.
type recordSink struct {
	events []Event
}

func (s *recordSink) Emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordSink) results() []TransferResult {
	var out []TransferResult
	for _, ev := range s.events {
		if fr, ok := ev.(FileResult); ok {
			out = append(out, fr.Result)
		}
	}
	return out
}

func (s *recordSink) resultFor(remotePath string) (TransferResult, bool) {
	for _, res := range s.results() {
		if res.RemotePath == remotePath {
			return res, true
		}
	}
	return TransferResult{}, false
}

func TestRunMirrorsTree(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.addFile("/b.txt", "bravo bravo")
	fc.addDir("/docs")
	fc.addFile("/docs/c.txt", "charlie")

	localRoot := t.TempDir()
	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  localRoot,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 3, sum.FilesProcessed)
	assert.Equal(t, 0, sum.FilesFailed)
	assert.Equal(t, 0, sum.DeletionsPerformed)
	assert.Equal(t, 0, sum.DeletionsFailed)

	for _, res := range sink.results() {
		assert.Equal(t, OutcomeDownloaded, res.Outcome)
		assert.Empty(t, res.Detail)
	}

	data, err := os.ReadFile(filepath.Join(localRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	data, err = os.ReadFile(filepath.Join(localRoot, "docs", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "charlie", string(data))
}

func TestRunDeleteAfterVerifiedDownload(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.addFile("/b.txt", "bravo")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot:   "/",
		LocalRoot:    t.TempDir(),
		DeleteRemote: true,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 2, sum.FilesProcessed)
	assert.Equal(t, 0, sum.FilesFailed)
	assert.Equal(t, 2, sum.DeletionsPerformed)
	assert.Equal(t, 0, sum.DeletionsFailed)
	assert.ElementsMatch(t, []string{"/a.txt", "/b.txt"}, fc.deleted)

	for _, res := range sink.results() {
		assert.Equal(t, OutcomeDownloadedAndDeleted, res.Outcome)
		assert.Equal(t, int64(5), res.Bytes)
	}
}

func TestRunSafeModeNeverDeletes(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")

	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  t.TempDir(),
	}, fc, &recordSink{})

	engine.Run()

	assert.Empty(t, fc.deleted)
}

func TestRunDownloadFailureSkipsDelete(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/good.txt", "fine")
	fc.addFile("/bad.txt", "broken")
	fc.retrieveErrs["/bad.txt"] = errors.New("connection reset")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot:   "/",
		LocalRoot:    t.TempDir(),
		DeleteRemote: true,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 2, sum.FilesProcessed)
	assert.Equal(t, 1, sum.FilesFailed)
	assert.Equal(t, 1, sum.DeletionsPerformed)
	assert.Equal(t, 0, sum.DeletionsFailed)

	assert.Equal(t, []string{"/good.txt"}, fc.deleted)

	res, ok := sink.resultFor("/bad.txt")
	require.True(t, ok)
	assert.Equal(t, OutcomeDownloadFailed, res.Outcome)
	assert.Contains(t, res.Detail, "connection reset")
}

func TestRunVerificationFailureSkipsDelete(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "the whole content")
	fc.retrieveFunc = func(remotePath, localPath string) error {
		// Simulate a truncated transfer that still returns success.
		return os.WriteFile(localPath, []byte("the"), 0644)
	}

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot:   "/",
		LocalRoot:    t.TempDir(),
		DeleteRemote: true,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 1, sum.FilesProcessed)
	assert.Equal(t, 1, sum.FilesFailed)
	assert.Equal(t, 0, sum.DeletionsPerformed)
	assert.Empty(t, fc.deleted)

	res, ok := sink.resultFor("/a.txt")
	require.True(t, ok)
	assert.Equal(t, OutcomeDownloadFailed, res.Outcome)
	assert.Contains(t, res.Detail, "verification failed")
}

func TestRunDeleteFailureKeepsLocalCopy(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.deleteErrs["/a.txt"] = errors.New("550 permission denied")

	localRoot := t.TempDir()
	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot:   "/",
		LocalRoot:    localRoot,
		DeleteRemote: true,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 1, sum.FilesProcessed)
	assert.Equal(t, 0, sum.FilesFailed)
	assert.Equal(t, 0, sum.DeletionsPerformed)
	assert.Equal(t, 1, sum.DeletionsFailed)

	res, ok := sink.resultFor("/a.txt")
	require.True(t, ok)
	assert.Equal(t, OutcomeDeleteFailed, res.Outcome)
	assert.Contains(t, res.Detail, "550")

	// The verified local copy survives a failed remote delete.
	data, err := os.ReadFile(filepath.Join(localRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

func TestRunSizeFailureSkipsDownload(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.sizeErrs["/a.txt"] = errors.New("SIZE not supported")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot:   "/",
		LocalRoot:    t.TempDir(),
		DeleteRemote: true,
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 1, sum.FilesFailed)
	assert.Empty(t, fc.retrieved)
	assert.Empty(t, fc.deleted)

	res, ok := sink.resultFor("/a.txt")
	require.True(t, ok)
	assert.Equal(t, OutcomeDownloadFailed, res.Outcome)
}

func TestRunListFailureSkipsSubtreeOnly(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.addDir("/broken")
	fc.addDir("/docs")
	fc.addFile("/docs/c.txt", "charlie")
	fc.listErrs["/broken"] = errors.New("425 cannot open data connection")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  t.TempDir(),
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 2, sum.FilesProcessed)
	assert.Equal(t, 0, sum.FilesFailed)

	var listFailures []DirListFailed
	for _, ev := range sink.events {
		if lf, ok := ev.(DirListFailed); ok {
			listFailures = append(listFailures, lf)
		}
	}
	require.Len(t, listFailures, 1)
	assert.Equal(t, "/broken", listFailures[0].Path)
}

func TestRunSkipsSpecialEntries(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.addOther("/socket")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  t.TempDir(),
	}, fc, sink)

	sum := engine.Run()

	assert.Equal(t, 1, sum.FilesProcessed)

	var skipped []EntrySkipped
	for _, ev := range sink.events {
		if es, ok := ev.(EntrySkipped); ok {
			skipped = append(skipped, es)
		}
	}
	require.Len(t, skipped, 1)
	assert.Equal(t, "/socket", skipped[0].Path)
}

func TestRunFlattenLayout(t *testing.T) {
	fc := newFakeClient()
	fc.addDir("/uploads")
	fc.addDir("/uploads/2024")
	fc.addFile("/uploads/2024/file1.txt", "data")

	localRoot := t.TempDir()
	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/uploads",
		LocalRoot:  localRoot,
		Flatten:    true,
	}, fc, sink)

	sum := engine.Run()

	require.Equal(t, 1, sum.FilesProcessed)
	res, ok := sink.resultFor("/uploads/2024/file1.txt")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(localRoot, "2024_file1.txt"), res.LocalPath)
	assert.FileExists(t, res.LocalPath)
}

func TestRunEventOrder(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")
	fc.addFile("/b.txt", "bravo")
	fc.addDir("/docs")
	fc.addFile("/docs/c.txt", "charlie")

	sink := &recordSink{}
	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  t.TempDir(),
	}, fc, sink)

	sum := engine.Run()

	require.Len(t, sink.events, 6)
	assert.Equal(t, DirEntered{Path: "/"}, sink.events[0])
	assert.Equal(t, "/a.txt", sink.events[1].(FileResult).Result.RemotePath)
	assert.Equal(t, "/b.txt", sink.events[2].(FileResult).Result.RemotePath)
	assert.Equal(t, DirEntered{Path: "/docs"}, sink.events[3])
	assert.Equal(t, "/docs/c.txt", sink.events[4].(FileResult).Result.RemotePath)

	fin, ok := sink.events[5].(RunFinished)
	require.True(t, ok)
	assert.Equal(t, sum, fin.Summary)
	assert.False(t, fin.Summary.FinishedAt.Before(fin.Summary.StartedAt))
}

func TestRunTwiceOverwritesCleanly(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")

	localRoot := t.TempDir()
	cfg := config.SyncConfig{RemoteRoot: "/", LocalRoot: localRoot}

	first := NewEngine(cfg, fc, &recordSink{}).Run()
	second := NewEngine(cfg, fc, &recordSink{}).Run()

	assert.Equal(t, first.FilesProcessed, second.FilesProcessed)
	assert.Equal(t, 0, second.FilesFailed)

	data, err := os.ReadFile(filepath.Join(localRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

func TestRunNilSinkIsSafe(t *testing.T) {
	fc := newFakeClient()
	fc.addFile("/a.txt", "alpha")

	engine := NewEngine(config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  t.TempDir(),
	}, fc, nil)

	sum := engine.Run()
	assert.Equal(t, 1, sum.FilesProcessed)
}
