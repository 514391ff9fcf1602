package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/recipebox/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// isolatedEnv points global config lookups at an empty directory.
func isolatedEnv(t *testing.T) map[string]string {
	t.Helper()

	return map[string]string{"XDG_CONFIG_HOME": t.TempDir()}
}

func Test_Load_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.Input{WorkDirOverride: dir, Env: isolatedEnv(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.DataFileAbs, filepath.Join(dir, "data", "recipes.xml"); got != want {
		t.Errorf("DataFileAbs=%q, want %q", got, want)
	}

	if cfg.LogLevel != "info" || cfg.LockTimeoutValue != 5*time.Second || cfg.LogFileAbs != "" {
		t.Errorf("defaults=(%q, %s, %q), want (info, 5s, \"\")", cfg.LogLevel, cfg.LockTimeoutValue, cfg.LogFileAbs)
	}

	if diff := cmp.Diff(config.Sources{}, cfg.Sources); diff != "" {
		t.Errorf("Sources (-want +got):\n%s", diff)
	}
}

func Test_Load_Layers_Global_Project_Env_And_Flag_In_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := isolatedEnv(t)

	globalFile := filepath.Join(env["XDG_CONFIG_HOME"], "recipebox", "config.json")
	writeFile(t, globalFile, `{"data_file": "global.xml", "log_level": "debug", "lock_timeout": "2s"}`)

	projectFile := filepath.Join(dir, config.FileName)
	writeFile(t, projectFile, `{
		// project wins over global
		"data_file": "project.xml",
		"log_file": "logs/recipes.log",
	}`)

	cfg, err := config.Load(config.Input{WorkDirOverride: dir, Env: env})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataFileAbs != filepath.Join(dir, "project.xml") {
		t.Errorf("DataFileAbs=%q, want project.xml", cfg.DataFileAbs)
	}

	if cfg.LogLevel != "debug" || cfg.LockTimeoutValue != 2*time.Second {
		t.Errorf("global values=(%q, %s), want (debug, 2s)", cfg.LogLevel, cfg.LockTimeoutValue)
	}

	if cfg.LogFileAbs != filepath.Join(dir, "logs", "recipes.log") {
		t.Errorf("LogFileAbs=%q", cfg.LogFileAbs)
	}

	if diff := cmp.Diff(config.Sources{Global: globalFile, Project: projectFile}, cfg.Sources); diff != "" {
		t.Errorf("Sources (-want +got):\n%s", diff)
	}

	env["RECIPEBOX_DATA_FILE"] = "/srv/env.xml"

	cfg, err = config.Load(config.Input{WorkDirOverride: dir, Env: env})
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}

	if cfg.DataFileAbs != "/srv/env.xml" {
		t.Errorf("env DataFileAbs=%q, want /srv/env.xml", cfg.DataFileAbs)
	}

	cfg, err = config.Load(config.Input{WorkDirOverride: dir, Env: env, DataFileOverride: "flag.xml"})
	if err != nil {
		t.Fatalf("Load with flag: %v", err)
	}

	if cfg.DataFileAbs != filepath.Join(dir, "flag.xml") {
		t.Errorf("flag DataFileAbs=%q, want flag.xml", cfg.DataFileAbs)
	}
}

func Test_Load_Reads_DotEnv_But_Process_Env_Wins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "RECIPEBOX_DATA_FILE=dotenv.xml\nRECIPEBOX_LOG_LEVEL=warn\n")

	env := isolatedEnv(t)
	env["RECIPEBOX_LOG_LEVEL"] = "error"

	cfg, err := config.Load(config.Input{WorkDirOverride: dir, Env: env})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataFileAbs != filepath.Join(dir, "dotenv.xml") {
		t.Errorf("DataFileAbs=%q, want dotenv.xml", cfg.DataFileAbs)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel=%q, want process env value error", cfg.LogLevel)
	}

	if cfg.Sources.DotEnv != filepath.Join(dir, ".env") {
		t.Errorf("Sources.DotEnv=%q", cfg.Sources.DotEnv)
	}

	if _, set := env["RECIPEBOX_DATA_FILE"]; set {
		t.Error("Load mutated the caller's env map")
	}
}

func Test_Load_Returns_Error_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty data_file", `{"data_file": ""}`, config.ErrDataFileEmpty},
		{"bad jsonc", `{"data_file": `, config.ErrInvalid},
		{"bad level", `{"log_level": "loud"}`, config.ErrLogLevel},
		{"bad timeout", `{"lock_timeout": "soon"}`, config.ErrLockTimeout},
		{"zero timeout", `{"lock_timeout": "0s"}`, config.ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.FileName), tt.content)

			_, err := config.Load(config.Input{WorkDirOverride: dir, Env: isolatedEnv(t)})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load: err=%v, want %v", err, tt.want)
			}
		})
	}
}

func Test_Load_Returns_ErrFileNotFound_When_Explicit_Config_Missing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.Input{WorkDirOverride: t.TempDir(), ConfigPath: "nope.json", Env: isolatedEnv(t)})
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Fatalf("Load: err=%v, want %v", err, config.ErrFileNotFound)
	}
}

func Test_Load_Uses_Explicit_Config_Instead_Of_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"data_file": "project.xml"}`)
	writeFile(t, filepath.Join(dir, "alt.json"), `{"data_file": "alt.xml"}`)

	cfg, err := config.Load(config.Input{WorkDirOverride: dir, ConfigPath: "alt.json", Env: isolatedEnv(t)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataFileAbs != filepath.Join(dir, "alt.xml") {
		t.Fatalf("DataFileAbs=%q, want alt.xml", cfg.DataFileAbs)
	}
}
