package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// DeleteCmd returns the delete command.
func DeleteCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("delete", flag.ContinueOnError),
		Usage: "delete <id>",
		Args:  []string{"id"},
		Short: "Delete a recipe",
		Long:  "Delete a recipe with all its ingredients, steps and reviews. Only the owner or an admin may delete.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}

			if err := a.svc.Remove(a.viewer, args[0]); err != nil {
				return err
			}

			o.Println("Deleted", args[0])

			return nil
		},
	}
}

// RateCmd returns the rate command.
func RateCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rate", flag.ContinueOnError),
		Usage: "rate <id> <1-5>",
		Args:  []string{"id", "rating"},
		Short: "Rate a recipe",
		Exec: func(_ context.Context, o *IO, args []string) error {
			id, rating, err := parseRatingArgs(args)
			if err != nil {
				return err
			}

			if err := a.requireUser(); err != nil {
				return err
			}

			r, err := a.svc.Rate(a.viewer, id, rating)
			if err != nil {
				return err
			}

			o.Printf("%s rated %d, now %s\n", r.ID, rating, formatRating(&r))

			return nil
		},
	}
}

// ReviewCmd returns the review command.
func ReviewCmd(a *app) *Command {
	return &Command{
		Flags:    flag.NewFlagSet("review", flag.ContinueOnError),
		Usage:    "review <id> <1-5> [comment]",
		Args:     []string{"id", "rating"},
		Variadic: true,
		Short:    "Review a recipe",
		Long:     "Add a review. Its rating counts toward the average like a plain rating.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			id, rating, err := parseRatingArgs(args)
			if err != nil {
				return err
			}

			if err := a.requireUser(); err != nil {
				return err
			}

			comment := strings.Join(args[2:], " ")

			r, err := a.svc.Review(a.viewer, id, rating, comment)
			if err != nil {
				return err
			}

			o.Printf("%s reviewed, now %s\n", r.ID, formatRating(&r))

			return nil
		},
	}
}

// ApproveCmd returns the approve command.
func ApproveCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("approve", flag.ContinueOnError),
		Usage: "approve <id>",
		Args:  []string{"id"},
		Short: "Approve a recipe (admin)",
		Long:  "Make a pending recipe visible to everyone. Requires --admin.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			r, err := a.svc.Approve(a.viewer, args[0])
			if err != nil {
				return err
			}

			o.Println("Approved", r.ID)

			return nil
		},
	}
}

// parseRatingArgs reads "<id> <rating>"; Run has already checked that both
// are present.
func parseRatingArgs(args []string) (string, int, error) {
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid rating %q: want a number from 1 to 5", args[1])
	}

	return args[0], rating, nil
}
