package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Args:  []string{"id"},
		Short: "Show recipe details",
		Long:  "Display a recipe with its ingredients, steps and reviews.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			r, err := a.svc.Visible(a.viewer, args[0])
			if err != nil {
				return err
			}

			printRecipe(o, &r)

			return nil
		},
	}
}
