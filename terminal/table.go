package terminal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"ftpmirror/journal"
	"ftpmirror/mirror"
	"ftpmirror/transfer"
)

// FileInfo represents a file or directory entry
type FileInfo struct {
	Name      string
	Type      string
	Size      int64
	Modified  time.Time
	IsDir     bool
	IsSymlink bool
}

// TableFormatter handles formatted table output
type TableFormatter struct {
	out   io.Writer
	table *tablewriter.Table
}

// NewTableFormatter creates a new table formatter writing to out
func NewTableFormatter(out io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(out)
	table.Header("Name", "Type", "Size", "Modified")
	table.Options(
		tablewriter.WithRendition(tw.Rendition{Borders: tw.Border{Left: tw.Pending, Right: tw.Pending, Top: tw.Pending, Bottom: tw.Pending}}),
		tablewriter.WithPadding(tw.Padding{Left: "\t", Right: "\t"}),
	)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.MaxWidth = 0 // No max width
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
		cfg.Behavior = tw.Behavior{}
	})

	return &TableFormatter{
		out:   out,
		table: table,
	}
}

// FormatLocalDirectory formats a local directory listing
func (tf *TableFormatter) FormatLocalDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	var files []FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		fileType := "file"
		if entry.IsDir() {
			fileType = "dir"
		} else if info.Mode()&os.ModeSymlink != 0 {
			fileType = "link"
		}

		files = append(files, FileInfo{
			Name:      entry.Name(),
			Type:      fileType,
			Size:      info.Size(),
			Modified:  info.ModTime(),
			IsDir:     entry.IsDir(),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
		})
	}

	return tf.renderTable(files)
}

// FormatRemoteDirectory formats a remote directory listing
func (tf *TableFormatter) FormatRemoteDirectory(entries []transfer.RemoteEntry) error {
	var files []FileInfo
	for _, entry := range entries {
		files = append(files, FileInfo{
			Name:     entry.Name,
			Type:     entry.Kind.String(),
			Size:     entry.Size,
			Modified: entry.Modified,
			IsDir:    entry.Kind == transfer.EntryKindDir,
		})
	}

	return tf.renderTable(files)
}

// RenderSummary renders the final counters of a mirror run
func (tf *TableFormatter) RenderSummary(sum mirror.RunSummary) error {
	tf.table.Reset()
	tf.table.Header("Metric", "Value")

	rows := [][]string{
		{"Files processed", fmt.Sprintf("%d", sum.FilesProcessed)},
		{"Files failed", fmt.Sprintf("%d", sum.FilesFailed)},
		{"Deletions performed", fmt.Sprintf("%d", sum.DeletionsPerformed)},
		{"Deletions failed", fmt.Sprintf("%d", sum.DeletionsFailed)},
		{"Duration", sum.Duration().Round(time.Millisecond).String()},
	}
	for _, row := range rows {
		tf.table.Append(row)
	}

	return tf.table.Render()
}

// RenderHistory renders stored run records, newest first
func (tf *TableFormatter) RenderHistory(records []journal.RunRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(tf.out, "No runs recorded yet")
		return nil
	}

	tf.table.Reset()
	tf.table.Header("Started", "Remote", "Local", "Mode", "Processed", "Failed", "Deleted")

	for _, rec := range records {
		mode := "download"
		if rec.DeleteRemote {
			mode = "delete"
		}
		tf.table.Append([]string{
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.RemoteRoot,
			rec.LocalRoot,
			mode,
			fmt.Sprintf("%d", rec.FilesProcessed),
			fmt.Sprintf("%d", rec.FilesFailed),
			fmt.Sprintf("%d", rec.DeletionsPerformed),
		})
	}

	return tf.table.Render()
}

// renderTable renders the table with the given file information
func (tf *TableFormatter) renderTable(files []FileInfo) error {
	if len(files) == 0 {
		fmt.Fprintln(tf.out, "Directory is empty")
		return nil
	}

	// Reset table
	tf.table.Reset()

	// Set headers again after reset
	tf.table.Header("Name", "Type", "Size", "Modified")

	// Add rows
	for _, file := range files {
		// Format size
		size := FormatSize(file.Size)
		if file.IsDir {
			size = "-"
		}

		// Format modified time
		modified := file.Modified.Format("Jan 02 15:04")

		// Format name with type indicator
		name := file.Name
		if file.IsDir {
			name = name + "/"
		} else if file.IsSymlink {
			name = name + "@"
		}

		// Truncate long names
		if len(name) > 50 {
			name = name[:47] + "..."
		}

		// Format type to show extension in caps
		fileType := file.Type
		if !file.IsDir && !file.IsSymlink {
			ext := filepath.Ext(name)
			if ext != "" {
				fileType = strings.ToUpper(strings.TrimPrefix(ext, "."))
			}
		}

		tf.table.Append([]string{
			name,
			fileType,
			size,
			modified,
		})
	}

	// Render table
	return tf.table.Render()
}

// FormatSize formats a file size in human-readable format
func FormatSize(size int64) string {
	const unit = 1024
	if size < 0 {
		return "-"
	}
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
