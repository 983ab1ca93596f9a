package mirror

import (
	"path/filepath"
	"strings"
)

// MapPath computes the local destination for a remote file. remoteDir must
// be remoteRoot or a directory below it, both cleaned (no trailing slash).
//
// Without flatten the remote directory structure below remoteRoot is
// preserved under localRoot. With flatten the path components below
// remoteRoot are joined with underscores into a single file name directly
// under localRoot, so files with equal names in different remote
// directories cannot collide. A file sitting directly in remoteRoot
// flattens to its plain name.
func MapPath(remoteDir, fileName, remoteRoot, localRoot string, flatten bool) string {
	rel := strings.TrimPrefix(remoteDir, remoteRoot)
	rel = strings.Trim(rel, "/")

	if flatten {
		name := fileName
		if rel != "" {
			name = strings.ReplaceAll(rel, "/", "_") + "_" + fileName
		}
		return filepath.Join(localRoot, name)
	}

	if rel == "" {
		return filepath.Join(localRoot, fileName)
	}
	return filepath.Join(localRoot, filepath.FromSlash(rel), fileName)
}
