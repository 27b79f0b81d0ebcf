// Package config resolves runtime settings from (in increasing precedence) built-in
// defaults, an optional TOML file, a .env file / environment, and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"voice-translate-go/internal/language"
)

// Service holds connection settings for one external HTTP service.
type Service struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Mock           bool   `toml:"mock"`
}

// Timeout returns the configured request timeout, or 0 for the client default.
func (s Service) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type Config struct {
	InputDir     string   `toml:"input_dir"`
	OutputDir    string   `toml:"output_dir"`
	WorkspaceDir string   `toml:"workspace_dir"`
	Workers      int      `toml:"workers"`
	SrcLang      string   `toml:"src_lang"`
	DestLang     string   `toml:"dest_lang"`
	Extensions   []string `toml:"extensions"`

	ChunkSeconds       int `toml:"chunk_seconds"`
	DecodeAttempts     int `toml:"decode_attempts"`
	DecodeRetryDelayMS int `toml:"decode_retry_delay_ms"`

	FFmpegPath string `toml:"ffmpeg_path"`
	LogFile    string `toml:"log_file"`
	LogLevel   string `toml:"log_level"`
	ReportXLSX string `toml:"report_xlsx"`

	Recognizer Service `toml:"recognizer"`
	Translator Service `toml:"translator"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		InputDir:           "mp3",
		OutputDir:          "output",
		WorkspaceDir:       "temp_files",
		Workers:            4,
		SrcLang:            "es",
		DestLang:           "en",
		Extensions:         []string{".mp3"},
		ChunkSeconds:       30,
		DecodeAttempts:     3,
		DecodeRetryDelayMS: 1000,
		FFmpegPath:         "ffmpeg",
		LogFile:            "translation_batch.log",
		LogLevel:           "info",
		Recognizer: Service{
			Model:          "whisper-1",
			TimeoutSeconds: 60,
		},
		Translator: Service{
			TimeoutSeconds: 25,
		},
	}
}

// Load builds the config: defaults, then path (if non-empty), then .env and the
// process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	_ = godotenv.Load() // loads .env
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("INPUT_DIR", &c.InputDir)
	str("OUTPUT_DIR", &c.OutputDir)
	str("WORKSPACE_DIR", &c.WorkspaceDir)
	str("SRC_LANG", &c.SrcLang)
	str("DEST_LANG", &c.DestLang)
	str("FFMPEG_PATH", &c.FFmpegPath)
	str("LOG_FILE", &c.LogFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("REPORT_XLSX", &c.ReportXLSX)
	str("TRANSCRIBE_URL", &c.Recognizer.URL)
	str("TRANSCRIBE_API_KEY", &c.Recognizer.APIKey)
	str("TRANSCRIBE_MODEL", &c.Recognizer.Model)
	str("LLM_GATEWAY_URL", &c.Translator.URL)
	str("LLM_API_KEY", &c.Translator.APIKey)
	str("LLM_MODEL", &c.Translator.Model)
	if v := strings.TrimSpace(getenv("AUDIO_EXTENSIONS")); v != "" {
		c.Extensions = strings.Split(v, ",")
	}
	if getenv("USE_MOCK_TRANSCRIBE") == "true" {
		c.Recognizer.Mock = true
	}
	if getenv("USE_MOCK_TRANSLATE") == "true" {
		c.Translator.Mock = true
	}

	return errors.Join(
		num("WORKERS", &c.Workers),
		num("CHUNK_SECONDS", &c.ChunkSeconds),
		num("DECODE_ATTEMPTS", &c.DecodeAttempts),
		num("DECODE_RETRY_DELAY_MS", &c.DecodeRetryDelayMS),
	)
}

// Validate checks the values and normalizes language codes in place.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.InputDir) == "" {
		errs = append(errs, errors.New("input_dir is required"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.ChunkSeconds <= 0 {
		errs = append(errs, fmt.Errorf("chunk_seconds must be positive, got %d", c.ChunkSeconds))
	}
	if c.DecodeAttempts <= 0 {
		errs = append(errs, fmt.Errorf("decode_attempts must be positive, got %d", c.DecodeAttempts))
	}
	if c.DecodeRetryDelayMS < 0 {
		errs = append(errs, fmt.Errorf("decode_retry_delay_ms must not be negative, got %d", c.DecodeRetryDelayMS))
	}
	if src, err := language.Normalize(c.SrcLang); err != nil {
		errs = append(errs, fmt.Errorf("src_lang: %w", err))
	} else {
		c.SrcLang = src
	}
	if dest, err := language.Normalize(c.DestLang); err != nil {
		errs = append(errs, fmt.Errorf("dest_lang: %w", err))
	} else {
		c.DestLang = dest
	}
	if !c.Recognizer.Mock && strings.TrimSpace(c.Recognizer.URL) == "" {
		errs = append(errs, errors.New("recognizer url not set (TRANSCRIBE_URL or USE_MOCK_TRANSCRIBE=true)"))
	}
	if !c.Translator.Mock && strings.TrimSpace(c.Translator.URL) == "" {
		errs = append(errs, errors.New("translator url not set (LLM_GATEWAY_URL or USE_MOCK_TRANSLATE=true)"))
	}
	return errors.Join(errs...)
}

func (c Config) ChunkDuration() time.Duration {
	return time.Duration(c.ChunkSeconds) * time.Second
}

func (c Config) DecodeRetryDelay() time.Duration {
	return time.Duration(c.DecodeRetryDelayMS) * time.Millisecond
}
