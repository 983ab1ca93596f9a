package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/c-bata/go-prompt"

	"ftpmirror/config"
	"ftpmirror/eventlog"
	"ftpmirror/journal"
	"ftpmirror/mirror"
	"ftpmirror/terminal"
	"ftpmirror/transfer"
)

// Shell state shared by the prompt callbacks.
var (
	shellClient *transfer.FTPClient

	shellSync = config.SyncConfig{
		RemoteRoot: "/",
		LocalRoot:  "downloads",
	}
	shellLogFile     = "ftpmirror.log"
	shellHistoryFile string

	// Terminal components
	themeManager     *terminal.ThemeManager
	commandCompleter *terminal.CommandCompleter
	tableFormatter   *terminal.TableFormatter
)

// Command represents a parsed command
type Command struct {
	name string
	args []string
}

func runShell(configPath string, opts *ShellCmd) error {
	var err error
	themeManager, err = terminal.NewThemeManager()
	if err != nil {
		return fmt.Errorf("failed to initialize theme manager: %v", err)
	}

	commandCompleter = terminal.NewCommandCompleter() // autocomplete
	tableFormatter = terminal.NewTableFormatter(os.Stdout)

	if configPath != "" {
		fileOpts, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		applyFileOptions(fileOpts)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT)
	go func() {
		<-sigChan
		if shellClient != nil && shellClient.IsConnected() {
			fmt.Println("\nDisconnecting from FTP server...")
			shellClient.Quit()
		}
		fmt.Println("\nExiting...")
		os.Exit(0)
	}()

	// Welcome message
	themeManager.GetPromptColor().Println("ftpmirror interactive shell")
	themeManager.GetTextColor().Println("Type 'help' for available commands")
	fmt.Println()

	if opts.Host != "" {
		connectOnStartup(opts)
	}

	p := prompt.New(
		executor,
		commandCompleter.Completer,
		prompt.OptionTitle("ftpmirror shell"),
		prompt.OptionLivePrefix(livePrefix),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionCompletionWordSeparator(" "),
		// Exit cleanly on Ctrl+C
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(buf *prompt.Buffer) {
				if shellClient != nil && shellClient.IsConnected() {
					fmt.Println("\nDisconnecting from FTP server...")
					shellClient.Quit()
				}
				fmt.Println("\nExiting...")
				os.Exit(0)
			},
		}),
	)

	p.Run()
	return nil
}

func connectOnStartup(opts *ShellCmd) {
	addr := opts.Host
	if opts.Port != 0 {
		addr = fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	} else if !strings.Contains(addr, ":") {
		addr += ":21"
	}

	username := opts.Username
	if username == "" {
		u, err := promptLine("Username: ")
		if err != nil {
			fmt.Printf("Failed to read username: %v\n", err)
			return
		}
		username = u
	}

	password := opts.Password
	if password == "" {
		pw, err := promptPassword(username)
		if err != nil {
			fmt.Printf("%v\n", err)
			return
		}
		password = pw
	}

	doConnect(addr, username, password)
}

func livePrefix() (string, bool) {
	if shellClient != nil && shellClient.IsConnected() {
		return "[FTP] " + shellClient.CurrentDir() + "> ", true
	}
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return dir + "> ", true
}

// executor handles command execution
func executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if input == "exit" {
		if shellClient != nil && shellClient.IsConnected() {
			shellClient.Quit()
		}
		os.Exit(0)
	}

	cmd := parseCommand(input)
	processCommand(cmd)
}

func parseCommand(input string) Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Command{}
	}

	cmd := Command{
		name: parts[0],
		args: parts[1:],
	}

	// Handle quoted arguments
	for i := 0; i < len(cmd.args); i++ {
		if strings.HasPrefix(cmd.args[i], "\"") {
			// Find the closing quote
			for j := i + 1; j < len(cmd.args); j++ {
				if strings.HasSuffix(cmd.args[j], "\"") {
					// Combine all parts between quotes
					cmd.args[i] = strings.Trim(cmd.args[i], "\"") + " " + strings.Join(cmd.args[i+1:j+1], " ")
					cmd.args[i] = strings.Trim(cmd.args[i], "\"")
					// Remove the combined parts
					cmd.args = append(cmd.args[:i+1], cmd.args[j+1:]...)
					break
				}
			}
		}
	}

	return cmd
}

func processCommand(cmd Command) {
	commands := map[string]func([]string){
		"connect": cmdConnect,
		"ls":      cmdList,
		"cd":      cmdChangeDir,
		"pwd": func(args []string) {
			if !connected() {
				return
			}
			fmt.Println(shellClient.CurrentDir())
		},
		"lls": func(args []string) {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if err := tableFormatter.FormatLocalDirectory(dir); err != nil {
				themeManager.GetErrorColor().Printf("Failed to list %s: %v\n", dir, err)
			}
		},
		"lcd": func(args []string) {
			if len(args) == 0 {
				fmt.Println("Usage: lcd <path>")
				return
			}
			if err := os.Chdir(args[0]); err != nil {
				themeManager.GetErrorColor().Printf("Failed to change directory: %v\n", err)
				return
			}
			commandCompleter.InvalidateLocal()
		},
		"lpwd": func(args []string) {
			dir, err := os.Getwd()
			if err != nil {
				themeManager.GetErrorColor().Printf("%v\n", err)
				return
			}
			fmt.Println(dir)
		},
		"get":     cmdGet,
		"mirror":  cmdMirror,
		"set":     cmdSet,
		"history": cmdHistory,
		"theme":   cmdTheme,
		"clear": func(args []string) {
			if runtime.GOOS == "windows" {
				exec.Command("cmd", "/C", "cls").Run()
			} else {
				exec.Command("clear").Run()
			}
		},
		"help": func(args []string) {
			showHelp()
		},
	}

	handler, ok := commands[strings.ToLower(cmd.name)]
	if !ok {
		fmt.Printf("Unknown command: %s\n", cmd.name)
		fmt.Println("Type 'help' for available commands")
		return
	}
	handler(cmd.args)
}

func connected() bool {
	if shellClient == nil || !shellClient.IsConnected() {
		fmt.Println("Not connected to FTP server. Use 'connect <host>' first.")
		return false
	}
	return true
}

func cmdConnect(args []string) {
	if shellClient != nil && shellClient.IsConnected() {
		fmt.Println("Already connected to FTP server.")
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: connect <host[:port]> [username]")
		return
	}

	addr := args[0]
	if !strings.Contains(addr, ":") {
		addr += ":21"
	}

	username := ""
	if len(args) > 1 {
		username = args[1]
	}
	if username == "" {
		u, err := promptLine("Username: ")
		if err != nil {
			fmt.Printf("Failed to read username: %v\n", err)
			return
		}
		username = u
	}

	password, err := promptPassword(username)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	doConnect(addr, username, password)
}

func doConnect(addr, username, password string) {
	client := transfer.NewFTPClient(config.LoginConfig{
		Address:  addr,
		Username: username,
		Password: password,
		Timeout:  60 * time.Second,
	})
	if err := client.Connect(); err != nil {
		themeManager.GetErrorColor().Printf("Connection failed: %v\n", err)
		return
	}

	shellClient = client
	commandCompleter.SetClient(client)
	commandCompleter.ClearCache()
	themeManager.GetSuccessColor().Printf("Connected to %s\n", addr)
}

func cmdList(args []string) {
	if !connected() {
		return
	}

	dir := shellClient.CurrentDir()
	if len(args) > 0 {
		dir = args[0]
	}

	entries, err := shellClient.List(dir)
	if err != nil {
		themeManager.GetErrorColor().Printf("%v\n", err)
		return
	}
	if err := tableFormatter.FormatRemoteDirectory(entries); err != nil {
		themeManager.GetErrorColor().Printf("Failed to render listing: %v\n", err)
	}
}

func cmdChangeDir(args []string) {
	if !connected() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: cd <path>")
		return
	}

	if err := shellClient.ChangeDir(args[0]); err != nil {
		themeManager.GetErrorColor().Printf("%v\n", err)
		return
	}
	commandCompleter.ClearCache()
}

func cmdGet(args []string) {
	if !connected() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: get <remote-file> [local-path]")
		return
	}

	remotePath := args[0]
	if !path.IsAbs(remotePath) {
		remotePath = path.Join(shellClient.CurrentDir(), remotePath)
	}
	localPath := path.Base(remotePath)
	if len(args) > 1 {
		localPath = args[1]
	}

	size, err := shellClient.Size(remotePath)
	if err != nil {
		themeManager.GetErrorColor().Printf("%v\n", err)
		return
	}

	shellClient.Progress = func(transferred, total int64, speed float64, elapsed time.Duration) {
		terminal.DrawProgress(os.Stdout, transferred, total, speed, elapsed)
	}
	defer func() { shellClient.Progress = nil }()

	start := time.Now()
	if err := shellClient.Retrieve(remotePath, localPath); err != nil {
		terminal.ClearProgress(os.Stdout)
		themeManager.GetErrorColor().Printf("Download failed: %v\n", err)
		return
	}
	terminal.ClearProgress(os.Stdout)

	if !mirror.Verify(localPath, size) {
		themeManager.GetErrorColor().Printf("Verification failed: %s is not %d bytes\n", localPath, size)
		return
	}

	themeManager.GetSuccessColor().Printf("Downloaded: %s (%s in %s)\n",
		localPath, terminal.FormatSize(size), time.Since(start).Round(time.Millisecond))
}

func cmdMirror(args []string) {
	if !connected() {
		return
	}

	sync := shellSync
	if len(args) > 0 {
		root := args[0]
		if !path.IsAbs(root) {
			root = path.Join(shellClient.CurrentDir(), root)
		}
		sync.RemoteRoot = path.Clean(root)
	}

	runMirror(sync)
}

// runMirror drives one mirror run over the shell's connection.
func runMirror(sync config.SyncConfig) {
	sinks := eventlog.MultiSink{
		progressClearSink{inner: eventlog.NewConsoleSink(os.Stdout, themeManager)},
	}

	if shellLogFile != "" {
		if fs, err := eventlog.NewFileSink(shellLogFile); err != nil {
			fmt.Printf("Warning: file log disabled: %v\n", err)
		} else {
			sinks = append(sinks, fs)
			defer fs.Close()
		}
	}

	historyPath := shellHistoryFile
	if historyPath == "" {
		historyPath = journal.DefaultPath()
	}
	if j, err := journal.Open(historyPath); err != nil {
		fmt.Printf("Warning: run history disabled: %v\n", err)
	} else {
		sinks = append(sinks, journal.NewRecorder(j, sync))
		defer j.Close()
	}

	sinks.Emit(mirror.RunStarted{DeleteRemote: sync.DeleteRemote})

	shellClient.Progress = func(transferred, total int64, speed float64, elapsed time.Duration) {
		terminal.DrawProgress(os.Stdout, transferred, total, speed, elapsed)
	}
	defer func() { shellClient.Progress = nil }()

	engine := mirror.NewEngine(sync, shellClient, sinks)
	sum := engine.Run()

	if err := tableFormatter.RenderSummary(sum); err != nil {
		fmt.Printf("Failed to render summary: %v\n", err)
	}
}

// progressClearSink erases a pending progress bar before result lines print.
type progressClearSink struct {
	inner mirror.EventSink
}

func (s progressClearSink) Emit(ev mirror.Event) {
	if _, ok := ev.(mirror.FileResult); ok {
		terminal.ClearProgress(os.Stdout)
	}
	s.inner.Emit(ev)
}

func cmdSet(args []string) {
	if len(args) == 0 {
		fmt.Printf("delete:  %v\n", shellSync.DeleteRemote)
		fmt.Printf("flatten: %v\n", shellSync.Flatten)
		fmt.Printf("local:   %s\n", shellSync.LocalRoot)
		fmt.Printf("remote:  %s\n", shellSync.RemoteRoot)
		fmt.Printf("log:     %s\n", shellLogFile)
		return
	}
	if len(args) < 2 {
		fmt.Println("Usage: set <delete|flatten|local|remote|log> <value>")
		return
	}

	key := strings.ToLower(args[0])
	value := args[1]
	switch key {
	case "delete":
		on, err := parseOnOff(value)
		if err != nil {
			fmt.Println(err)
			return
		}
		shellSync.DeleteRemote = on
		if on {
			themeManager.GetWarningColor().Println("⚠️  WARNING: Remote files will be DELETED after download!")
		} else {
			fmt.Println("Delete mode off")
		}
	case "flatten":
		on, err := parseOnOff(value)
		if err != nil {
			fmt.Println(err)
			return
		}
		shellSync.Flatten = on
	case "local":
		shellSync.LocalRoot = value
	case "remote":
		shellSync.RemoteRoot = path.Clean(value)
	case "log":
		shellLogFile = value
	default:
		fmt.Printf("Unknown setting: %s\n", key)
	}
}

func parseOnOff(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", v)
}

func cmdHistory(args []string) {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("Usage: history [count]")
			return
		}
		limit = n
	}

	historyPath := shellHistoryFile
	if historyPath == "" {
		historyPath = journal.DefaultPath()
	}
	j, err := journal.Open(historyPath)
	if err != nil {
		themeManager.GetErrorColor().Printf("%v\n", err)
		return
	}
	defer j.Close()

	records, err := j.Runs(limit)
	if err != nil {
		themeManager.GetErrorColor().Printf("%v\n", err)
		return
	}
	if err := tableFormatter.RenderHistory(records); err != nil {
		fmt.Printf("Failed to render history: %v\n", err)
	}
}

func cmdTheme(args []string) {
	if len(args) == 0 {
		fmt.Printf("Current theme: %s\n", themeManager.GetThemeName())
		fmt.Println("Usage: theme <dark|light>")
		return
	}
	if err := themeManager.SetTheme(args[0]); err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	fmt.Printf("Theme set to %s\n", args[0])
}

func showHelp() {
	themeManager.GetTextColor().Println("\nConnection:")
	themeManager.GetTextColor().Println("connect <host[:port]> [username] - Connect to FTP server")
	themeManager.GetTextColor().Println("exit - Disconnect and quit")
	themeManager.GetTextColor().Println("\nRemote:")
	themeManager.GetTextColor().Println("ls [path] - List remote directory")
	themeManager.GetTextColor().Println("cd <path> - Change remote directory")
	themeManager.GetTextColor().Println("pwd - Show current remote directory")
	themeManager.GetTextColor().Println("get <file> [local] - Download one file")
	themeManager.GetTextColor().Println("\nLocal:")
	themeManager.GetTextColor().Println("lls [path] - List local directory")
	themeManager.GetTextColor().Println("lcd <path> - Change local directory")
	themeManager.GetTextColor().Println("lpwd - Show current local directory")
	themeManager.GetTextColor().Println("\nMirroring:")
	themeManager.GetTextColor().Println("mirror [remote-dir] - Download the remote tree (uses 'set' settings)")
	themeManager.GetTextColor().Println("set - Show mirror settings")
	themeManager.GetTextColor().Println("set <key> <value> - Change a setting (delete, flatten, local, remote, log)")
	themeManager.GetTextColor().Println("history [count] - Show recorded mirror runs")
	themeManager.GetTextColor().Println("\nOther:")
	themeManager.GetTextColor().Println("theme <dark|light> - Change terminal theme")
	themeManager.GetTextColor().Println("clear - Clear terminal screen")
	themeManager.GetTextColor().Println("help - Show this help")
	fmt.Println()
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func applyFileOptions(opts config.Options) {
	if opts.RemoteDir != "" {
		shellSync.RemoteRoot = path.Clean(opts.RemoteDir)
	}
	if opts.LocalDir != "" {
		shellSync.LocalRoot = opts.LocalDir
	}
	shellSync.DeleteRemote = opts.DeleteRemote
	shellSync.Flatten = opts.Flatten
	if opts.LogFile != "" {
		shellLogFile = opts.LogFile
	}
	if opts.HistoryFile != "" {
		shellHistoryFile = opts.HistoryFile
	}
}
