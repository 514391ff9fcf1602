package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive prompt",
		Long: `Read commands line by line and run them as the current user, for example:

  recipes> list --search soup
  recipes> rate RECIPE_1700000000000_42 5

Quote arguments containing spaces. On a terminal the prompt has history and
tab completion. Type 'exit' or press Ctrl-D to leave.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.runShell(ctx, o)
		},
	}
}

// lineReader is the prompt source of a shell session.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

func (a *app) newLineReader() lineReader {
	if f, ok := a.stdin.(*os.File); ok && f.Fd() == os.Stdin.Fd() && term.IsTerminal(int(f.Fd())) {
		return newLinerReader(a.historyPath, a.completer)
	}

	stdin := a.stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	return &scanReader{scanner: bufio.NewScanner(stdin)}
}

func (a *app) runShell(ctx context.Context, o *IO) error {
	reader := a.newLineReader()
	defer func() { _ = reader.Close() }()

	for ctx.Err() == nil {
		line, err := reader.Prompt("recipes> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		reader.AppendHistory(line)

		args, err := splitWords(line)
		if err != nil {
			o.ErrPrintln("error:", err)
			continue
		}

		switch args[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			for _, cmd := range a.commands() {
				o.Println(cmd.HelpLine())
			}
		case "shell":
			o.ErrPrintln("error: already in a shell")
		default:
			a.dispatch(ctx, o, args)
		}
	}

	return nil
}

// completer offers command names for the first word of the line.
func (a *app) completer(line string) []string {
	var completions []string

	names := []string{"help", "exit", "quit"}
	for _, cmd := range a.commands() {
		names = append(names, cmd.Name())
	}

	for _, name := range names {
		if strings.HasPrefix(name, line) {
			completions = append(completions, name)
		}
	}

	return completions
}

// linerReader reads from the terminal with history and completion.
type linerReader struct {
	state       *liner.State
	historyPath string
}

func newLinerReader(historyPath string, completer liner.Completer) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completer)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &linerReader{state: state, historyPath: historyPath}
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	return r.state.Prompt(prompt)
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

// Close saves history and restores the terminal.
func (r *linerReader) Close() error {
	if r.historyPath != "" {
		if f, err := os.Create(r.historyPath); err == nil {
			_, _ = r.state.WriteHistory(f)
			_ = f.Close()
		}
	}

	return r.state.Close()
}

// scanReader reads commands from a pipe or file without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanReader) AppendHistory(string) {}

func (*scanReader) Close() error { return nil }

// splitWords splits a command line into arguments. Single quotes keep
// everything literal, double quotes allow backslash escapes.
func splitWords(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			current.WriteRune(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current.WriteRune(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inWord = true
		case ch == ' ' || ch == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(ch)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}

	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}
