package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/robottwo/sawsh/internal/completion"
	"github.com/robottwo/sawsh/internal/config"
	"github.com/robottwo/sawsh/internal/core"
	"github.com/robottwo/sawsh/internal/docs"
	"github.com/robottwo/sawsh/internal/grammar"
	"github.com/robottwo/sawsh/internal/history"
	"github.com/robottwo/sawsh/internal/resource"
	"github.com/robottwo/sawsh/internal/shortcut"
)

var BUILD_VERSION = "dev"

var command = flag.String("c", "", "run a command")
var resetHistory = flag.Bool("reset-history", false, "delete stored command history and exit")

var helpFlag bool
var versionFlag bool

func init() {
	flag.BoolVar(&helpFlag, "h", false, "display help information")
	flag.BoolVar(&helpFlag, "help", false, "display help information")

	flag.BoolVar(&versionFlag, "v", false, "display build version")
	flag.BoolVar(&versionFlag, "version", false, "display build version")

	if err := zap.RegisterSink("zstd", newCompressedSink); err != nil {
		panic(fmt.Sprintf("failed to register zstd sink: %v", err))
	}
}

func main() {
	flag.Parse()

	if versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if helpFlag {
		printUsage()
		return
	}

	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := initializeLogger(logLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg := config.Load(logger)
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		logLevel.SetLevel(level.Level())
	} else {
		logger.Warn("invalid log level in config", zap.String("log_level", cfg.LogLevel))
	}

	logger.Info("-------- new sawsh session --------", zap.Any("args", os.Args))

	store, err := grammar.Load(grammar.SpecData)
	if err != nil {
		panic(fmt.Sprintf("failed to load command grammar: %v", err))
	}

	shortcuts, err := shortcut.Load(shortcut.Defaults, append(store.Commands(), store.Root()), logger)
	if err != nil {
		panic(fmt.Sprintf("failed to load shortcuts: %v", err))
	}

	cache := resource.NewCache(resource.NewCLIFetcher(), resource.Kinds(), cfg.FetchTimeout(), logger)

	historyManager, err := history.NewManager(core.HistoryFile())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize history: %v", err))
	}
	defer func() {
		if err := historyManager.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close history: %v\n", err)
		}
	}()

	if *resetHistory {
		if err := historyManager.Reset(); err != nil {
			panic(fmt.Sprintf("failed to reset history: %v", err))
		}
		fmt.Println("history cleared")
		return
	}

	runner, err := interp.New(
		interp.Interactive(true),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
	)
	if err != nil {
		panic(err)
	}

	shell := &core.Shell{
		Store:     store,
		Shortcuts: shortcuts,
		Engine:    completion.NewEngine(store, shortcuts, cache, logger),
		Resources: cache,
		Docs:      docs.NewHandler(store, logger, nil),
		History:   historyManager,
		Config:    cfg,
		Runner:    runner,
		Logger:    logger,
	}

	err = run(shell, runner)

	if code, ok := interp.IsExitStatus(err); ok {
		os.Exit(int(code))
	}
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		os.Exit(1)
	}
}

func run(shell *core.Shell, runner *interp.Runner) error {
	ctx := context.Background()

	// sawsh -c "aws s3 ls"
	if *command != "" {
		return runScript(ctx, runner, *command)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return shell.Run(ctx)
	}

	// Piped input runs as a script.
	script, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return runScript(ctx, runner, string(script))
}

func runScript(ctx context.Context, runner *interp.Runner, script string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "sawsh")
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	return runner.Run(ctx, file)
}

func printUsage() {
	fmt.Println("Usage: sawsh [flags]")
	fmt.Println("\nAn interactive AWS CLI front-end with context-aware completion.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -c <command>      run a single command and exit")
	fmt.Println("  -reset-history    delete stored command history and exit")
	fmt.Println("  -h, -help         display help information")
	fmt.Println("  -v, -version      display build version")
	fmt.Println()
	fmt.Println("Keyboard Shortcuts:")
	fmt.Println("  Tab               complete commands, options and resources")
	fmt.Println("  F2                toggle fuzzy matching")
	fmt.Println("  F3                toggle shortcut expansion")
	fmt.Println("  F5                refresh cached AWS resources")
	fmt.Println("  F9                open reference docs for the current line")
	fmt.Println("  F10 / Ctrl+D      exit")
}

func initializeLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = level
	loggerConfig.OutputPaths = []string{
		"zstd://" + core.LogFile(),
	}
	return loggerConfig.Build()
}

// newCompressedSink creates a zap sink that writes zstd-compressed log
// frames. Appending a fresh frame to an existing compressed file keeps it
// decodable.
func newCompressedSink(u *url.URL) (zap.Sink, error) {
	filePath := u.Path

	flags := os.O_CREATE | os.O_WRONLY
	fileInfo, err := os.Stat(filePath)
	if err == nil && fileInfo.Size() > 0 {
		if isValidZstdFile(filePath) {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &compressedSink{file: file, encoder: encoder}, nil
}

// isValidZstdFile checks whether the file starts with the zstd magic
// number.
func isValidZstdFile(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer func() {
		_ = file.Close()
	}()

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil || n < 4 {
		return false
	}
	return buf[0] == 0x28 && buf[1] == 0xB5 && buf[2] == 0x2F && buf[3] == 0xFD
}

type compressedSink struct {
	file    *os.File
	encoder *zstd.Encoder
}

// Write reports len(p) on success to satisfy the io.Writer contract,
// regardless of how many compressed bytes hit the file.
func (s *compressedSink) Write(p []byte) (int, error) {
	if _, err := s.encoder.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *compressedSink) Sync() error {
	if err := s.encoder.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *compressedSink) Close() error {
	encErr := s.encoder.Close()
	fileErr := s.file.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}
