package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recipebox/internal/query"
	"github.com/calvinalkan/recipebox/internal/recipe"
	"github.com/calvinalkan/recipebox/internal/store"
)

// ListCmd returns the list command.
func ListCmd(a *app) *Command {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.StringP("search", "s", "", "Match title, description, category or tags")
	fs.String("category", "", "Only this category")
	fs.String("cuisine", "", "Only this cuisine type")
	fs.String("difficulty", "", "Only this difficulty level")
	fs.Bool("mine", false, "Only recipes owned by --user, approved or not")

	return &Command{
		Flags: fs,
		Usage: "list [flags]",
		Short: "List visible recipes",
		Long: `List the recipes the current user may see, in document order.

Admins see every recipe. Other users see approved recipes and their own.
Only the first of --search, --category, --cuisine, --difficulty is applied.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execList(o, a, fs)
		},
	}
}

func execList(o *IO, a *app, fs *flag.FlagSet) error {
	var recipes []recipe.Recipe

	if mine, _ := fs.GetBool("mine"); mine {
		if err := a.requireUser(); err != nil {
			return err
		}

		recipes = a.svc.RecipesByUser(a.viewer.UserID)
	} else {
		search, _ := fs.GetString("search")
		category, _ := fs.GetString("category")
		cuisine, _ := fs.GetString("cuisine")
		difficulty, _ := fs.GetString("difficulty")

		recipes = a.svc.List(a.viewer, query.Criteria{
			Search:     search,
			Category:   category,
			Cuisine:    cuisine,
			Difficulty: difficulty,
		})
	}

	if len(recipes) == 0 {
		warnIfCorrupt(o, a)
	}

	for i := range recipes {
		o.Println(formatRecipeLine(&recipes[i]))
	}

	return nil
}

// warnIfCorrupt explains an empty listing caused by an unreadable document.
func warnIfCorrupt(o *IO, a *app) {
	if _, err := a.store.LoadAll(); errors.Is(err, store.ErrParseCorruption) {
		o.Warn("recipe document "+a.store.Path()+" cannot be parsed", "run 'recipes repair' to move it aside")
	}
}
