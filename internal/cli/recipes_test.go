package cli_test

import (
	"testing"

	"github.com/calvinalkan/recipebox/internal/cli"
	"github.com/calvinalkan/recipebox/internal/recipe"
)

func savePasta(t *testing.T, c *cli.CLI) string {
	t.Helper()

	id := c.MustRun("-u", "u1", "--name", "Alice", "save",
		"-t", "Pasta",
		"--category", "Dinner",
		"--cuisine", "Italian",
		"--prep", "10",
		"--ingredient", "spaghetti|200|g",
		"--ingredient", "salt|1|pinch|to taste",
		"--step", "Boil water",
		"--step", "Cook pasta",
		"--tags", "quick, weeknight",
	)

	if !recipe.RecipeIDPattern.MatchString(id) {
		t.Fatalf("save printed %q, want a recipe id", id)
	}

	return id
}

func Test_Recipe_Lifecycle_From_Pending_To_Deleted(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := savePasta(t, c)

	if out := c.MustRun("list"); out != "" {
		t.Fatalf("anonymous list=%q, want empty while pending", out)
	}

	cli.AssertContains(t, c.MustRun("-u", "u1", "list"), id+" [pending] Pasta - Dinner/Italian - unrated - by Alice")

	if out := c.MustRun("-u", "u2", "list"); out != "" {
		t.Fatalf("other user's list=%q, want empty while pending", out)
	}

	cli.AssertContains(t, c.MustFail("-u", "u2", "approve", id), "not allowed")
	cli.AssertContains(t, c.MustRun("-u", "root", "--admin", "approve", id), "Approved "+id)

	cli.AssertContains(t, c.MustRun("list"), id+" [approved] Pasta")

	cli.AssertContains(t, c.MustRun("-u", "u2", "rate", id, "4"), "rated 4, now 4.0 (1)")
	cli.AssertContains(t, c.MustRun("-u", "u3", "--name", "Carol", "review", id, "2", "too", "bland"), "now 3.0 (2)")

	show := c.MustRun("show", id)
	cli.AssertContains(t, show, "title: Pasta")
	cli.AssertContains(t, show, "status: approved")
	cli.AssertContains(t, show, "time: 10 min prep, 0 min cooking")
	cli.AssertContains(t, show, "servings: 1")
	cli.AssertContains(t, show, "tags: quick, weeknight")
	cli.AssertContains(t, show, "- 200 g spaghetti")
	cli.AssertContains(t, show, "- 1 pinch salt (to taste)")
	cli.AssertContains(t, show, "2. Cook pasta")
	cli.AssertContains(t, show, "- 2/5 by Carol: too bland")

	cli.AssertContains(t, c.MustFail("-u", "u2", "delete", id), "not allowed")
	cli.AssertContains(t, c.MustRun("-u", "u1", "delete", id), "Deleted "+id)
	cli.AssertContains(t, c.MustFail("show", id), "recipe not found")
}

func Test_Save_Edits_Only_Given_Fields_When_Id_Passed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := savePasta(t, c)

	edited := c.MustRun("-u", "u1", "save", "--id", id, "-t", "Pasta al limone", "--servings", "2")
	if edited != id {
		t.Fatalf("edit printed %q, want %q", edited, id)
	}

	show := c.MustRun("-u", "u1", "show", id)
	cli.AssertContains(t, show, "title: Pasta al limone")
	cli.AssertContains(t, show, "servings: 2")
	cli.AssertContains(t, show, "cuisine: Italian")
	cli.AssertContains(t, show, "- 200 g spaghetti")
	cli.AssertContains(t, show, "1. Boil water")
	cli.AssertContains(t, show, "author: Alice")

	cli.AssertContains(t, c.MustFail("-u", "u2", "save", "--id", id, "-t", "Stolen"), "recipe not found")
}

func Test_Save_Fails_Naming_The_Field_When_Input_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "-t", "No category"), "recipe category is required")
	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "--category", "Dinner"), "recipe title is required")
	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "-t", "x", "--category", "y", "--prep", "ten"), "invalid number format in preparationTime")
	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "-t", "x", "--category", "y", "--ingredient", "egg|two"), `invalid number format in quantity of "egg"`)
	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "-t", "x", "--category", "y", "--ingredient", "a|1|g|n|extra"), "invalid --ingredient")
	cli.AssertContains(t, c.MustFail("save", "-t", "x", "--category", "y"), "sign-in required")

	if out := c.MustRun("--admin", "-u", "root", "list"); out != "" {
		t.Fatalf("list after failed saves=%q, want empty", out)
	}
}

func Test_Rate_Fails_When_Rating_Out_Of_Range(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := savePasta(t, c)

	cli.AssertContains(t, c.MustFail("-u", "u1", "rate", id, "9"), "rating must be between 1 and 5")
	cli.AssertContains(t, c.MustFail("-u", "u1", "rate", id, "five"), `invalid rating "five"`)
	cli.AssertContains(t, c.MustFail("-u", "u1", "rate", id), "missing argument: <rating>")
	cli.AssertContains(t, c.MustFail("rate", id, "3"), "sign-in required")
	cli.AssertContains(t, c.MustFail("-u", "u2", "rate", id, "3"), "recipe not found")
}

func Test_List_Filters_By_Criteria(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	soup := c.MustRun("-u", "root", "--admin", "save", "-t", "Tomato Soup", "--category", "Lunch", "--difficulty", "Easy")
	stew := c.MustRun("-u", "root", "--admin", "save", "-t", "Stew", "--category", "Dinner", "--cuisine", "Irish")
	mine := c.MustRun("-u", "u1", "save", "-t", "My Soup", "--category", "Lunch")

	// Listing lines start with "<id> [", which keeps RECIPE_1_4 from
	// matching RECIPE_1_42.
	soup, stew, mine = soup+" [", stew+" [", mine+" ["

	out := c.MustRun("list", "--search", "SOUP")
	cli.AssertContains(t, out, soup)
	cli.AssertNotContains(t, out, mine)

	out = c.MustRun("-u", "u1", "list", "--category", "lunch")
	cli.AssertContains(t, out, soup)
	cli.AssertContains(t, out, mine)
	cli.AssertNotContains(t, out, stew)

	cli.AssertContains(t, c.MustRun("list", "--cuisine", "irish"), stew)
	cli.AssertContains(t, c.MustRun("list", "--difficulty", "EASY"), soup)

	out = c.MustRun("-u", "u1", "list", "--mine")
	cli.AssertContains(t, out, mine)
	cli.AssertNotContains(t, out, soup)

	out = c.MustRun("-u", "root", "--admin", "list")
	for _, id := range []string{soup, stew, mine} {
		cli.AssertContains(t, out, id)
	}
}

func Test_List_Warns_And_Repair_Recovers_When_Document_Corrupt(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("data/recipes.xml", "<recipes><recipe id=")

	stdout, stderr, code := c.Run("list")
	if code != 1 || stdout != "" {
		t.Fatalf("list on corrupt document=(code %d, stdout %q), want (1, empty)", code, stdout)
	}

	cli.AssertContains(t, stderr, "run 'recipes repair'")

	cli.AssertContains(t, c.MustFail("-u", "u1", "save", "-t", "x", "--category", "y"), "corrupt")

	cli.AssertContains(t, c.MustRun("repair"), "Moved corrupt document to "+c.DataFile()+".corrupt-")
	cli.AssertContains(t, c.MustRun("repair"), "Document OK")

	if out := c.MustRun("list"); out != "" {
		t.Fatalf("list after repair=%q, want empty", out)
	}
}
