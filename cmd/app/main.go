package main

import (
	"ascolt/internal/config"
	"ascolt/internal/gen"
	"ascolt/internal/manifest"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	// Version is the current version of the ascolt binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// generator config vars
	configPath string
	suffix     string
	cache      bool
	force      bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// generator config
	flag.StringVar(&configPath, "config", "", "Path to the config file (default .ascolt.yaml when present)")
	flag.StringVar(&suffix, "suffix", "", "Suffix for generated files (overrides config)")
	flag.BoolVar(&cache, "cache", false, "Enable the generation manifest cache")
	flag.BoolVar(&force, "force", false, "Regenerate even when the manifest marks inputs current")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ascolt: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(cfg.Log.Level),
	}
	logWriter := configureLogWriter(cfg.Log.File)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	opts := gen.Options{
		Suffix: cfg.Output.Suffix,
		Header: cfg.Output.Header,
	}
	if cfg.Cache.Enabled && !force {
		store, err := manifest.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ascolt: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		opts.Manifest = store
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	g := gen.New(opts)
	var written int
	for _, path := range paths {
		outs, err := g.Process(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ascolt: %v\n", err)
			os.Exit(1)
		}
		written += len(outs)
	}
	slog.Info("generation complete", slog.Int("files", written))
}

func applyFlags(cfg *config.Config) {
	if suffix != "" {
		cfg.Output.Suffix = suffix
	}
	if cache {
		cfg.Cache.Enabled = true
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("ascolt version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: ascolt [options] [path ...]

Options:
  -config <path>     Path to the config file. Default is '.ascolt.yaml' when present.
  -suffix <suffix>   Suffix for generated files. Default is '_gen.go'.
  -cache             Enable the generation manifest cache.
  -force             Regenerate even when the manifest marks inputs current.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
ascolt generates actor handler bindings from annotated Go declarations.
Handler definitions live in files tagged '//go:build ascolt' and carry
'//ascolt:ask_handler' or '//ascolt:tell_handler' markers; actor types carry
'//ascolt:actor error=<Type>'. Each path argument is a file or a directory
tree to process; the default is the current directory.

Examples:
  ascolt .                     Generate for the current directory tree
  ascolt -cache ./internal     Generate with the manifest cache enabled
  ascolt -log-level=debug .    Generate with debug logging

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
