package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"ftpmirror/config"
	"ftpmirror/eventlog"
	"ftpmirror/journal"
	"ftpmirror/mirror"
	"ftpmirror/terminal"
	"ftpmirror/transfer"
)

var version = "1.0.0"

// CLI is the top-level command line layout. With no subcommand the mirror
// command runs.
type CLI struct {
	Config string `help:"Path to a YAML config file." short:"c" type:"path"`

	Mirror  MirrorCmd  `cmd:"" default:"withargs" help:"Mirror a remote FTP directory tree into a local directory."`
	Shell   ShellCmd   `cmd:"" help:"Start the interactive shell."`
	History HistoryCmd `cmd:"" help:"Show recorded mirror runs."`
	Version VersionCmd `cmd:"" help:"Print version and exit."`
}

// MirrorCmd runs one download (and optional delete) pass over the remote tree.
type MirrorCmd struct {
	Host        string `help:"FTP server host." env:"FTPMIRROR_HOST"`
	Port        int    `help:"FTP server port." env:"FTPMIRROR_PORT"`
	Username    string `help:"FTP username." short:"u" env:"FTPMIRROR_USER"`
	Password    string `help:"FTP password (prompted for when empty)." env:"FTPMIRROR_PASSWORD"`
	RemoteDir   string `help:"Remote directory to start from." env:"FTPMIRROR_REMOTE_DIR"`
	LocalDir    string `help:"Local directory to save files." short:"l" env:"FTPMIRROR_LOCAL_DIR"`
	Delete      bool   `name:"delete-remote" help:"Delete remote files after successful download (DESTRUCTIVE)." env:"FTPMIRROR_DELETE"`
	Flatten     bool   `help:"Write every file into the top of the local directory." env:"FTPMIRROR_FLATTEN"`
	Timeout     int    `help:"Connect timeout in seconds." env:"FTPMIRROR_TIMEOUT"`
	LogFile     string `help:"Log file path." env:"FTPMIRROR_LOG_FILE"`
	MetricsFile string `help:"Append per-file CSV metrics to this file." env:"FTPMIRROR_METRICS_FILE"`
	HistoryFile string `help:"Run history database path." env:"FTPMIRROR_HISTORY_FILE"`
	Quiet       bool   `help:"Suppress console output." short:"q"`
}

func (m *MirrorCmd) options() config.Options {
	return config.Options{
		Host:           m.Host,
		Port:           m.Port,
		Username:       m.Username,
		Password:       m.Password,
		TimeoutSeconds: m.Timeout,
		RemoteDir:      m.RemoteDir,
		LocalDir:       m.LocalDir,
		DeleteRemote:   m.Delete,
		Flatten:        m.Flatten,
		LogFile:        m.LogFile,
		MetricsFile:    m.MetricsFile,
		HistoryFile:    m.HistoryFile,
	}
}

func (m *MirrorCmd) Run(cli *CLI) error {
	cfg, err := config.Resolve(cli.Config, m.options())
	if err != nil {
		return err
	}

	if cfg.Login.Password == "" {
		pw, err := promptPassword(cfg.Login.Username)
		if err != nil {
			return err
		}
		cfg.Login.Password = pw
	}

	sink, closeSinks, err := buildSinks(cfg, m.Quiet)
	if err != nil {
		return err
	}
	defer closeSinks()

	sink.Emit(mirror.RunStarted{DeleteRemote: cfg.Sync.DeleteRemote})

	client := transfer.NewFTPClient(cfg.Login)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Quit()

	sink.Emit(mirror.Connected{Addr: cfg.Login.Address})

	engine := mirror.NewEngine(cfg.Sync, client, sink)
	sum := engine.Run()

	if !m.Quiet {
		tf := terminal.NewTableFormatter(os.Stdout)
		if err := tf.RenderSummary(sum); err != nil {
			return err
		}
	}

	if sum.FilesFailed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.FilesFailed, sum.FilesProcessed)
	}
	return nil
}

// ShellCmd starts the interactive prompt.
type ShellCmd struct {
	Host     string `help:"FTP server host to connect to on startup." env:"FTPMIRROR_HOST"`
	Port     int    `help:"FTP server port." env:"FTPMIRROR_PORT"`
	Username string `help:"FTP username." short:"u" env:"FTPMIRROR_USER"`
	Password string `help:"FTP password (prompted for when empty)." env:"FTPMIRROR_PASSWORD"`
}

func (s *ShellCmd) Run(cli *CLI) error {
	return runShell(cli.Config, s)
}

// HistoryCmd prints recorded runs, newest first.
type HistoryCmd struct {
	Limit int    `help:"Maximum number of runs to show." default:"20"`
	File  string `help:"Run history database path." env:"FTPMIRROR_HISTORY_FILE"`
}

func (h *HistoryCmd) Run(cli *CLI) error {
	historyPath := h.File
	if historyPath == "" {
		historyPath = journal.DefaultPath()
	}

	j, err := journal.Open(historyPath)
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.Runs(h.Limit)
	if err != nil {
		return err
	}

	return terminal.NewTableFormatter(os.Stdout).RenderHistory(records)
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (VersionCmd) Run(cli *CLI) error {
	fmt.Printf("ftpmirror %s\n", version)
	return nil
}

// buildSinks assembles the event sinks for one mirror run. The returned
// close function flushes file-backed sinks.
func buildSinks(cfg *config.Config, quiet bool) (mirror.EventSink, func(), error) {
	var sinks eventlog.MultiSink
	var closers []func()

	if !quiet {
		theme, err := terminal.NewThemeManager()
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, eventlog.NewConsoleSink(os.Stdout, theme))
	}

	if cfg.LogFile != "" {
		fs, err := eventlog.NewFileSink(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fs)
		closers = append(closers, func() { fs.Close() })
	}

	if cfg.MetricsFile != "" {
		sinks = append(sinks, eventlog.NewCSVSink(cfg.MetricsFile))
	}

	historyPath := cfg.HistoryFile
	if historyPath == "" {
		historyPath = journal.DefaultPath()
	}
	if j, err := journal.Open(historyPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history disabled: %v\n", err)
	} else {
		sinks = append(sinks, journal.NewRecorder(j, cfg.Sync))
		closers = append(closers, func() { j.Close() })
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return sinks, closeAll, nil
}

// promptPassword reads a password without echoing it. When stdin is not a
// terminal it falls back to a plain line read.
func promptPassword(username string) (string, error) {
	if username != "" {
		fmt.Printf("Password for %s: ", username)
	} else {
		fmt.Print("Password: ")
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %v", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	// Values from a .env file feed the env-tagged flags below.
	godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ftpmirror"),
		kong.Description("Recursively download files from an FTP server with optional deletion."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
