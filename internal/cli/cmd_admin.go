package cli

import (
	"context"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recipebox/internal/config"
)

// RepairCmd returns the repair command.
func RepairCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("repair", flag.ContinueOnError),
		Usage: "repair",
		Short: "Move a corrupt recipe document aside",
		Long: `Check that the recipe document parses. If it does not, rename it to
<document>.corrupt-<millis> and start an empty document. A healthy document
is left alone.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			backup, err := a.store.Repair()
			if err != nil {
				return err
			}

			if backup == "" {
				o.Println("Document OK:", a.store.Path())
				return nil
			}

			o.Println("Moved corrupt document to", backup)

			return nil
		},
	}
}

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			cfg := a.cfg

			o.Println("effective_cwd=" + cfg.EffectiveCwd)
			o.Println("data_file=" + cfg.DataFileAbs)
			o.Println("log_level=" + cfg.LogLevel)
			o.Println("lock_timeout=" + cfg.LockTimeoutValue.Round(time.Millisecond).String())

			if cfg.LogFileAbs != "" {
				o.Println("log_file=" + cfg.LogFileAbs)
			}

			o.Println("")
			o.Println("# sources")

			if cfg.Sources == (config.Sources{}) {
				o.Println("(defaults only)")
				return nil
			}

			for _, src := range [][2]string{
				{"global_config", cfg.Sources.Global},
				{"project_config", cfg.Sources.Project},
				{"dotenv", cfg.Sources.DotEnv},
			} {
				if src[1] != "" {
					o.Println(src[0] + "=" + src[1])
				}
			}

			return nil
		},
	}
}
