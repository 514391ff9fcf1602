package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

var (
	errMissingArg    = errors.New("missing argument")
	errUnexpectedArg = errors.New("unexpected argument")
)

// Command is one recipes subcommand: its flags, its positional arguments
// and the help text derived from them.
type Command struct {
	// Flags holds the command's own flags. Global flags are parsed by Run
	// before the command name and never reach it.
	Flags *flag.FlagSet

	// Usage follows "recipes" in help and starts with the command name,
	// e.g. "review <id> <1-5> [comment]".
	Usage string

	// Short is the one-liner in the command listing.
	Short string

	// Long is the body of "recipes <cmd> --help"; Short when empty.
	Long string

	// Args names the required positional arguments in order. Exec is only
	// called with at least this many.
	Args []string

	// Variadic lets arguments beyond Args through to Exec, such as the
	// words of a review comment. Without it extra arguments are an error.
	Variadic bool

	// Exec runs the command with the positional arguments left after flag
	// parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine is the command's row in the top-level usage listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

// PrintHelp writes the usage line, description and flag defaults.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: recipes", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var buf strings.Builder

	c.Flags.SetOutput(&buf)
	c.Flags.PrintDefaults()

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", buf.String())
}

// checkArgs matches the positional arguments against Args and Variadic.
func (c *Command) checkArgs(args []string) error {
	if len(args) < len(c.Args) {
		return fmt.Errorf("%w: <%s>", errMissingArg, c.Args[len(args)])
	}

	if !c.Variadic && len(args) > len(c.Args) {
		return fmt.Errorf("%w %q", errUnexpectedArg, args[len(c.Args)])
	}

	return nil
}

// Run parses flags, checks the positional arguments and calls Exec. Usage
// mistakes print the error and the command help to stderr. Returns the exit
// code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)
		return 0
	}

	if err == nil {
		err = c.checkArgs(c.Flags.Args())
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(NewIO(o.errOut, o.errOut))

		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	return o.Finish()
}
