// Package cli implements the recipes command line: flag parsing, command
// dispatch and the interactive shell, on top of the query service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/calvinalkan/recipebox/internal/config"
	"github.com/calvinalkan/recipebox/internal/logging"
	"github.com/calvinalkan/recipebox/internal/query"
	"github.com/calvinalkan/recipebox/internal/store"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

const helpFlag = "--help"

// app is everything a command needs, built once per Run.
type app struct {
	cfg    config.Config
	store  *store.Store
	svc    *query.Service
	viewer query.Viewer
	log    *zap.Logger
	stdin  io.Reader

	// historyPath is where the interactive shell keeps its history; empty
	// disables it.
	historyPath string
}

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal on it cancels the context passed to the
// running command and ends an interactive shell.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)

	flags, err := parseGlobalFlags(args[min(1, len(args)):])
	if err != nil {
		o.ErrPrintln("error:", err)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(out)
		return 0
	}

	cfg, err := config.Load(config.Input{
		WorkDirOverride:  flags.workDir,
		ConfigPath:       flags.configPath,
		DataFileOverride: flags.dataFile,
		Env:              env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	logger, closeLog, err := logging.New(cfg, errOut)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	defer func() { _ = closeLog() }()

	st, err := store.Open(cfg.DataFileAbs, store.Options{
		Logger:      logger.Named("store"),
		LockTimeout: cfg.LockTimeoutValue,
	})
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	a := &app{
		cfg:   cfg,
		store: st,
		svc:   query.New(st, logger.Named("query")),
		viewer: query.Viewer{
			UserID: flags.user,
			Name:   flags.displayName(),
			Admin:  flags.admin,
		},
		log:         logger,
		stdin:       stdin,
		historyPath: historyPath(env),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return a.dispatch(ctx, o, flags.remaining)
}

// requireUser fails with a hint when no --user was given.
func (a *app) requireUser() error {
	if !a.viewer.SignedIn() {
		return fmt.Errorf("%w: pass --user <id>", query.ErrUnauthenticated)
	}

	return nil
}

// commands returns the command table, in help order.
func (a *app) commands() []*Command {
	return []*Command{
		ListCmd(a),
		ShowCmd(a),
		SaveCmd(a),
		DeleteCmd(a),
		RateCmd(a),
		ReviewCmd(a),
		ApproveCmd(a),
		RepairCmd(a),
		PrintConfigCmd(a),
		ShellCmd(a),
	}
}

// dispatch runs one command line (command name first) and returns its exit
// code.
func (a *app) dispatch(ctx context.Context, o *IO, args []string) int {
	name := args[0]

	for _, cmd := range a.commands() {
		if cmd.Name() == name {
			code := cmd.Run(ctx, o, args[1:])
			a.log.Debug("command finished", zap.String("command", name), zap.Int("exit_code", code))

			return code
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o.errOut)

	return 1
}

func historyPath(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".recipes_history")
	}

	return ""
}

type globalFlags struct {
	workDir    string
	configPath string
	dataFile   string
	user       string
	name       string
	admin      bool
	remaining  []string
}

// displayName falls back to the user id when --name is not given.
func (g globalFlags) displayName() string {
	if g.name != "" {
		return g.name
	}

	return g.user
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// valueFlags maps every spelling of a global flag taking a value to its
// destination.
func valueFlags(flags *globalFlags) map[string]*string {
	return map[string]*string{
		"-C":          &flags.workDir,
		"--cwd":       &flags.workDir,
		"-c":          &flags.configPath,
		"--config":    &flags.configPath,
		"--data-file": &flags.dataFile,
		"-u":          &flags.user,
		"--user":      &flags.user,
		"--name":      &flags.name,
	}
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args
// consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	if arg == "--admin" {
		flags.admin = true
		return 1, nil
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}
		return len(args) - idx, nil
	}

	targets := valueFlags(flags)

	if dst, ok := targets[arg]; ok {
		if idx+1 >= len(args) {
			return 0, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		*dst = args[idx+1]

		return 2, nil
	}

	if name, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "--") {
		if dst, known := targets[name]; known {
			*dst = value
			return 1, nil
		}
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return 0, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	return 0, nil
}

func printUsage(w io.Writer) {
	o := NewIO(w, w)

	o.Println(`recipes - recipe collection manager

Usage: recipes [options] <command> [args]

Options:
  -C, --cwd <dir>         Run as if started in <dir>
  -c, --config <file>     Use specified config file
      --data-file <path>  Override the recipe document location
  -u, --user <id>         Act as this user
      --name <name>       Display name used as author and reviewer
      --admin             Act with admin rights

Commands:`)

	for _, cmd := range (&app{}).commands() {
		o.Println(cmd.HelpLine())
	}
}
