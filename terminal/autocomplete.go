package terminal

import (
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"

	"ftpmirror/transfer"
)

// RemoteLister is the subset of the FTP client the completer needs.
type RemoteLister interface {
	List(path string) ([]transfer.RemoteEntry, error)
	IsConnected() bool
	CurrentDir() string
}

// CommandCompleter handles command and argument completion
type CommandCompleter struct {
	shellCommands    []prompt.Suggest
	settingKeys      []prompt.Suggest
	remoteFiles      []string
	remoteDirs       []string
	lastUpdate       time.Time
	client           RemoteLister
	cacheTimeout     time.Duration
	localDirCache    map[string][]string // Cache for local subdirectories by directory
	localDirCacheAge map[string]time.Time
}

// NewCommandCompleter creates a new command completer
func NewCommandCompleter() *CommandCompleter {
	return &CommandCompleter{
		shellCommands: []prompt.Suggest{
			{Text: "connect", Description: "Connect to FTP server"},
			{Text: "ls", Description: "List remote directory"},
			{Text: "cd", Description: "Change remote directory"},
			{Text: "pwd", Description: "Show current remote directory"},
			{Text: "lls", Description: "List local directory"},
			{Text: "lcd", Description: "Change local directory"},
			{Text: "lpwd", Description: "Show current local directory"},
			{Text: "get", Description: "Download one remote file"},
			{Text: "mirror", Description: "Mirror the remote tree to the local directory"},
			{Text: "set", Description: "Change mirror settings"},
			{Text: "history", Description: "Show recorded mirror runs"},
			{Text: "theme", Description: "Change terminal theme"},
			{Text: "clear", Description: "Clear terminal screen"},
			{Text: "help", Description: "Show help information"},
			{Text: "exit", Description: "Quit the shell"},
		},
		settingKeys: []prompt.Suggest{
			{Text: "delete", Description: "Delete remote files after verified download (on/off)"},
			{Text: "flatten", Description: "Flatten the local layout (on/off)"},
			{Text: "local", Description: "Local destination directory"},
			{Text: "remote", Description: "Remote root directory"},
			{Text: "log", Description: "Log file path"},
		},
		lastUpdate:       time.Now(),
		cacheTimeout:     15 * time.Second, // 15 second cache
		localDirCache:    make(map[string][]string),
		localDirCacheAge: make(map[string]time.Time),
	}
}

// SetClient sets the FTP client for remote file operations
func (c *CommandCompleter) SetClient(client RemoteLister) {
	c.client = client
}

// UpdateRemoteFiles updates the cached remote files and directories
func (c *CommandCompleter) UpdateRemoteFiles(files, dirs []string) {
	c.remoteFiles = files
	c.remoteDirs = dirs
	c.lastUpdate = time.Now()
}

// Completer returns suggestions for the current input
func (c *CommandCompleter) Completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	// If we're at the start of a new command
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return c.suggestCommands(words)
	}

	// If we're suggesting arguments for a command
	return c.suggestArguments(words)
}

// suggestCommands returns suggestions for commands
func (c *CommandCompleter) suggestCommands(words []string) []prompt.Suggest {
	if len(words) == 0 {
		return c.shellCommands
	}

	prefix := strings.ToLower(words[0])
	var filtered []prompt.Suggest
	for _, s := range c.shellCommands {
		if strings.HasPrefix(s.Text, prefix) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// suggestArguments returns suggestions for command arguments
func (c *CommandCompleter) suggestArguments(words []string) []prompt.Suggest {
	if len(words) == 0 {
		return nil
	}

	cmd := strings.ToLower(words[0])
	lastWord := words[len(words)-1]

	// Only suggest if we have at least one character typed
	if len(lastWord) == 0 {
		return nil
	}

	switch cmd {
	case "cd", "mirror":
		return c.suggestRemoteDirectories(lastWord)
	case "get":
		return c.suggestRemoteFiles(lastWord)
	case "lcd":
		return c.suggestLocalDirectories(lastWord)
	case "ls":
		// Suggest both files and directories for ls
		suggestions := c.suggestRemoteDirectories(lastWord)
		suggestions = append(suggestions, c.suggestRemoteFiles(lastWord)...)
		return suggestions
	case "set":
		return c.suggestSettings(words[1:])
	case "theme":
		return []prompt.Suggest{
			{Text: "dark", Description: "Dark theme"},
			{Text: "light", Description: "Light theme"},
		}
	default:
		return nil
	}
}

// suggestSettings returns suggestions for the set command
func (c *CommandCompleter) suggestSettings(args []string) []prompt.Suggest {
	if len(args) <= 1 {
		prefix := ""
		if len(args) == 1 {
			prefix = strings.ToLower(args[0])
		}
		var filtered []prompt.Suggest
		for _, s := range c.settingKeys {
			if strings.HasPrefix(s.Text, prefix) {
				filtered = append(filtered, s)
			}
		}
		return filtered
	}

	switch strings.ToLower(args[0]) {
	case "delete", "flatten":
		return []prompt.Suggest{
			{Text: "on", Description: "Enable"},
			{Text: "off", Description: "Disable"},
		}
	}
	return nil
}

// suggestRemoteDirectories returns remote directory suggestions
func (c *CommandCompleter) suggestRemoteDirectories(prefix string) []prompt.Suggest {
	var suggestions []prompt.Suggest

	// Try to refresh cache if stale
	if time.Since(c.lastUpdate) > c.cacheTimeout {
		c.refreshRemoteCache()
	}

	// Filter suggestions
	for _, dir := range c.remoteDirs {
		// Skip hidden directories unless explicitly requested
		if strings.HasPrefix(dir, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(dir), strings.ToLower(prefix)) {
			suggestions = append(suggestions, prompt.Suggest{
				Text:        dir,
				Description: "Remote directory",
			})
		}
	}

	return suggestions
}

// suggestRemoteFiles returns remote file suggestions
func (c *CommandCompleter) suggestRemoteFiles(prefix string) []prompt.Suggest {
	var suggestions []prompt.Suggest

	// Try to refresh cache if stale
	if time.Since(c.lastUpdate) > c.cacheTimeout {
		c.refreshRemoteCache()
	}

	// Filter suggestions
	for _, file := range c.remoteFiles {
		// Skip hidden files unless explicitly requested
		if strings.HasPrefix(file, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(file), strings.ToLower(prefix)) {
			suggestions = append(suggestions, prompt.Suggest{
				Text:        file,
				Description: "Remote file",
			})
		}
	}

	return suggestions
}

// suggestLocalDirectories returns local directory suggestions for lcd
func (c *CommandCompleter) suggestLocalDirectories(prefix string) []prompt.Suggest {
	var suggestions []prompt.Suggest

	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}

	// Check if we have cached directories for this location
	if cached, exists := c.localDirCache[cwd]; exists && time.Since(c.localDirCacheAge[cwd]) < 10*time.Second {
		for _, dir := range cached {
			if strings.HasPrefix(dir, ".") && !strings.HasPrefix(prefix, ".") {
				continue
			}
			if strings.HasPrefix(strings.ToLower(dir), strings.ToLower(prefix)) {
				suggestions = append(suggestions, prompt.Suggest{
					Text:        dir,
					Description: "Local directory",
				})
			}
		}
		return suggestions
	}

	// Read directory and cache subdirectories
	entries, err := os.ReadDir(cwd)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirs = append(dirs, entry.Name())

		// Skip hidden directories unless explicitly requested
		if strings.HasPrefix(entry.Name(), ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(entry.Name()), strings.ToLower(prefix)) {
			suggestions = append(suggestions, prompt.Suggest{
				Text:        entry.Name(),
				Description: "Local directory",
			})
		}
	}

	// Cache the directories
	c.localDirCache[cwd] = dirs
	c.localDirCacheAge[cwd] = time.Now()

	return suggestions
}

// refreshRemoteCache attempts to refresh the remote file cache
func (c *CommandCompleter) refreshRemoteCache() {
	if c.client == nil || !c.client.IsConnected() {
		return
	}

	// Get current remote directory
	currentDir := c.client.CurrentDir()
	if currentDir == "" {
		currentDir = "/"
	}

	// List directory contents
	entries, err := c.client.List(currentDir)
	if err != nil {
		return // Silent failure, keep using old cache
	}

	// Update cache
	var files []string
	var dirs []string
	for _, entry := range entries {
		if entry.Kind == transfer.EntryKindDir {
			dirs = append(dirs, entry.Name)
		} else {
			files = append(files, entry.Name)
		}
	}

	c.UpdateRemoteFiles(files, dirs)
}

// InvalidateLocal clears cached local suggestions after a directory change.
func (c *CommandCompleter) InvalidateLocal() {
	c.localDirCache = make(map[string][]string)
	c.localDirCacheAge = make(map[string]time.Time)
}

// ClearCache clears all cached suggestions
func (c *CommandCompleter) ClearCache() {
	c.remoteFiles = nil
	c.remoteDirs = nil
	c.localDirCache = make(map[string][]string)
	c.localDirCacheAge = make(map[string]time.Time)
	c.lastUpdate = time.Time{}
}
