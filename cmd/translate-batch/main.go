package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voice-translate-go/internal/audio"
	"voice-translate-go/internal/batch"
	"voice-translate-go/internal/config"
	"voice-translate-go/internal/logger"
	"voice-translate-go/internal/pipeline"
	"voice-translate-go/internal/transcription"
	"voice-translate-go/internal/translation"
	"voice-translate-go/internal/workspace"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	inputDir   string
	outputDir  string
	workers    int
	srcLang    string
	destLang   string
	chunkSecs  int
	report     string
	logFile    string
}

func newRootCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "translate-batch",
		Short:         "Transcribe and translate every recording in a directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	fs.StringVarP(&f.inputDir, "input", "i", "", "directory containing audio files")
	fs.StringVarP(&f.outputDir, "output", "o", "", "directory for translation documents")
	fs.IntVarP(&f.workers, "workers", "w", 0, "maximum files processed concurrently")
	fs.StringVar(&f.srcLang, "src", "", "source language code")
	fs.StringVar(&f.destLang, "dest", "", "destination language code")
	fs.IntVar(&f.chunkSecs, "chunk-seconds", 0, "chunk window length in seconds")
	fs.StringVar(&f.report, "report", "", "write an XLSX batch report to this path")
	fs.StringVar(&f.logFile, "log-file", "", "append-only log file")
	return cmd
}

// resolveConfig layers explicitly set flags over file and environment values.
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.InputDir = f.inputDir
	}
	if changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("src") {
		cfg.SrcLang = f.srcLang
	}
	if changed("dest") {
		cfg.DestLang = f.destLang
	}
	if changed("chunk-seconds") {
		cfg.ChunkSeconds = f.chunkSecs
	}
	if changed("report") {
		cfg.ReportXLSX = f.report
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.NewWithOptions(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Console: true})
	if err != nil {
		return err
	}
	defer log.Close()
	log.Component("main").WithField("service", "translate-batch").Info("starting batch translation")

	ws, err := workspace.Acquire(cfg.WorkspaceDir, log.Entry)
	if err != nil {
		return &batch.SetupError{Op: "acquire workspace", Err: err}
	}
	if err := ws.Lock(); err != nil {
		return &batch.SetupError{Op: "lock workspace", Err: err}
	}
	defer ws.Unlock()

	rec, err := newRecognizer(cfg, log)
	if err != nil {
		return err
	}
	tr, err := newTranslator(cfg, log)
	if err != nil {
		return err
	}

	p := pipeline.New(audio.NewFFmpegDecoder(cfg.FFmpegPath), rec, tr, ws, log.Entry, pipeline.Options{
		ChunkDuration:  cfg.ChunkDuration(),
		DecodeAttempts: cfg.DecodeAttempts,
		DecodeDelay:    cfg.DecodeRetryDelay(),
	})
	runner := batch.NewRunner(p, ws, log.Entry, batch.Options{
		SrcLang:    cfg.SrcLang,
		DestLang:   cfg.DestLang,
		Extensions: cfg.Extensions,
		LogPath:    cfg.LogFile,
		ReportPath: cfg.ReportXLSX,
	})

	fmt.Println("Starting batch translation process...")
	_, err = runner.Run(ctx, cfg.InputDir, cfg.OutputDir, cfg.Workers)
	return err
}

func newRecognizer(cfg config.Config, log *logger.Logger) (transcription.Recognizer, error) {
	if cfg.Recognizer.Mock {
		log.Info("mock recognizer mode ON")
		return transcription.MockRecognizer{}, nil
	}
	return transcription.NewHTTPRecognizer(transcription.Config{
		URL:     cfg.Recognizer.URL,
		APIKey:  cfg.Recognizer.APIKey,
		Model:   cfg.Recognizer.Model,
		Timeout: cfg.Recognizer.Timeout(),
	}, log.Entry)
}

func newTranslator(cfg config.Config, log *logger.Logger) (translation.Translator, error) {
	if cfg.Translator.Mock {
		log.Info("mock translator mode ON")
		return translation.MockTranslator{}, nil
	}
	return translation.NewLLMTranslator(translation.Config{
		URL:     cfg.Translator.URL,
		APIKey:  cfg.Translator.APIKey,
		Model:   cfg.Translator.Model,
		Timeout: cfg.Translator.Timeout(),
	}, log.Entry)
}
