package mirror

import "os"

// Verify reports whether the file at localPath exists and is exactly
// expectedSize bytes long. Filesystem errors count as verification
// failure; they never abort the walk.
func Verify(localPath string, expectedSize int64) bool {
	info, err := os.Stat(localPath)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	return info.Size() == expectedSize
}
