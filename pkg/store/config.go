package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/moodlog/pkg/logging"
)

// Config is the resolved client configuration.
type Config interface {
	// BasePath is the directory holding the persisted session and logs.
	BasePath() string
	// BaseURL selects the API host. Empty means the client default.
	BaseURL() string
	Timeout() time.Duration
	RateLimit() float64
	VoiceCommand() string
	Logging() logging.Options
}

// ConfigPathEnv names a directory searched for .moodlog.yaml before ./.
const ConfigPathEnv = "MOODLOG_CONFIG_PATH"

const (
	defaultPath = "~/.moodlog"
	logFileName = "moodlog.log"
)

// LoadConfig reads .moodlog.yaml from ./ or $MOODLOG_CONFIG_PATH and
// MOODLOG_* environment variables. A .env file in the working directory is
// loaded into the environment first.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("path", defaultPath)
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.stderr", false)
	v.SetDefault("voice.command", "")
	v.SetConfigName(".moodlog") // .yaml is implicit
	v.SetEnvPrefix("MOODLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // log.level -> MOODLOG_LOG_LEVEL
	v.AutomaticEnv()

	if override := os.Getenv(ConfigPathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, err
	}

	logFile := v.GetString("log.file")
	if logFile == "" {
		logFile = filepath.Join(path, logFileName)
	} else if logFile, err = homedir.Expand(logFile); err != nil {
		return nil, err
	}

	return &fileConfig{
		Path:     path,
		URL:      v.GetString("base_url"),
		Wait:     v.GetDuration("timeout"),
		Rate:     v.GetFloat64("rate_limit"),
		Voice:    v.GetString("voice.command"),
		LogLevel: v.GetString("log.level"),
		LogFile:  logFile,
		LogErr:   v.GetBool("log.stderr"),
	}, nil
}

// NewConfig builds a Config without reading files or the environment.
func NewConfig(basePath, baseURL string) Config {
	return &fileConfig{Path: basePath, URL: baseURL}
}

type fileConfig struct {
	Path     string        `json:"path"`
	URL      string        `json:"base_url"`
	Wait     time.Duration `json:"timeout"`
	Rate     float64       `json:"rate_limit"`
	Voice    string        `json:"voice_command"`
	LogLevel string        `json:"log_level"`
	LogFile  string        `json:"log_file"`
	LogErr   bool          `json:"log_stderr"`
}

func (f *fileConfig) BasePath() string       { return f.Path }
func (f *fileConfig) BaseURL() string        { return f.URL }
func (f *fileConfig) Timeout() time.Duration { return f.Wait }
func (f *fileConfig) RateLimit() float64     { return f.Rate }
func (f *fileConfig) VoiceCommand() string   { return f.Voice }

func (f *fileConfig) Logging() logging.Options {
	return logging.Options{Level: f.LogLevel, File: f.LogFile, Stderr: f.LogErr}
}
