// Package config resolves recipebox settings from layered JSONC files, a
// .env file, the environment and command-line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"go.uber.org/zap/zapcore"
)

// File names looked up in the work directory.
const (
	FileName    = ".recipebox.json"
	DotEnvFile  = ".env"
	appDirName  = "recipebox"
	envDataFile = "RECIPEBOX_DATA_FILE"
	envLogLevel = "RECIPEBOX_LOG_LEVEL"
)

var (
	ErrFileNotFound  = errors.New("config file not found")
	ErrFileRead      = errors.New("cannot read config file")
	ErrInvalid       = errors.New("invalid config file")
	ErrDataFileEmpty = errors.New("data_file cannot be empty")
	ErrLogLevel      = errors.New("invalid log_level")
	ErrLockTimeout   = errors.New("invalid lock_timeout")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataFile    string `json:"data_file"`
	LogFile     string `json:"log_file,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	LockTimeout string `json:"lock_timeout,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd     string        `json:"-"`
	DataFileAbs      string        `json:"-"`
	LogFileAbs       string        `json:"-"`
	LockTimeoutValue time.Duration `json:"-"`

	Sources Sources `json:"-"`
}

// Sources tracks which files contributed to a Config.
type Sources struct {
	Global  string
	Project string
	DotEnv  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataFile:    filepath.Join("data", "recipes.xml"),
		LogLevel:    "info",
		LockTimeout: "5s",
	}
}

// Input holds the inputs for [Load].
type Input struct {
	WorkDirOverride  string            // -C/--cwd; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config
	DataFileOverride string            // --data-file; empty means no override
	Env              map[string]string // process environment
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global config ($XDG_CONFIG_HOME/recipebox/config.json or ~/.config/recipebox/config.json)
//  3. Project config (.recipebox.json in the work dir, if it exists)
//  4. Explicit config file via ConfigPath
//  5. Environment (RECIPEBOX_DATA_FILE, RECIPEBOX_LOG_LEVEL), where a .env
//     file in the work dir fills in variables the process does not set
//  6. CLI overrides
//
// Paths in the returned Config are resolved against the work dir.
func Load(input Input) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalPath, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	env, dotEnvPath, err := Environ(workDir, input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.DotEnv = dotEnvPath

	if v := env[envDataFile]; v != "" {
		cfg.DataFile = v
	}

	if v := env[envLogLevel]; v != "" {
		cfg.LogLevel = v
	}

	if input.DataFileOverride != "" {
		cfg.DataFile = input.DataFileOverride
	}

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.DataFileAbs = absolute(workDir, cfg.DataFile)

	if cfg.LogFile != "" {
		cfg.LogFileAbs = absolute(workDir, cfg.LogFile)
	}

	return cfg, nil
}

// Environ returns env with variables from workDir/.env added where env does
// not already define them. The path of the .env file is returned when one
// was read.
func Environ(workDir string, env map[string]string) (map[string]string, string, error) {
	merged := make(map[string]string, len(env))
	for k, v := range env {
		merged[k] = v
	}

	path := filepath.Join(workDir, DotEnvFile)

	fromFile, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return merged, "", nil
	}

	if err != nil {
		return nil, "", fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	for k, v := range fromFile {
		if _, set := merged[k]; !set {
			merged[k] = v
		}
	}

	return merged, path, nil
}

func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, appDirName, "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", appDirName, "config.json")
	}

	return ""
}

func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	return loadFile(path, false)
}

// loadProject loads the explicit config file if given, otherwise the
// optional project file in workDir.
func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		return loadFile(filepath.Join(workDir, FileName), false)
	}

	path := absolute(workDir, configPath)

	if _, err := os.Stat(path); err != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrFileNotFound, configPath)
	}

	return loadFile(path, true)
}

// loadFile returns the parsed file and its path, or a zero Config and ""
// when an optional file does not exist.
func loadFile(path string, mustExist bool) (Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, "", nil
		}

		return Config{}, "", fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}

	cfg, explicitEmpty, err := parse(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	if explicitEmpty["data_file"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrInvalid, path, ErrDataFileEmpty)
	}

	return cfg, path, nil
}

// parse decodes JSONC and reports which string keys were set to "".
func parse(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	for key, val := range raw {
		if s, ok := val.(string); ok && s == "" {
			explicitEmpty[key] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func merge(base, overlay Config) Config {
	if overlay.DataFile != "" {
		base.DataFile = overlay.DataFile
	}

	if overlay.LogFile != "" {
		base.LogFile = overlay.LogFile
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.LockTimeout != "" {
		base.LockTimeout = overlay.LockTimeout
	}

	return base
}

func validate(cfg *Config) error {
	if cfg.DataFile == "" {
		return ErrDataFileEmpty
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w %q", ErrLogLevel, cfg.LogLevel)
	}

	timeout, err := time.ParseDuration(cfg.LockTimeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("%w %q: want a positive duration like \"5s\"", ErrLockTimeout, cfg.LockTimeout)
	}

	cfg.LockTimeoutValue = timeout

	return nil
}

func absolute(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
