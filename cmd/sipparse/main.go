// Command sipparse parses SIP messages and protocol elements from a file or stdin.
//
// Usage:
//
//	sipparse [--rule R] [--json] [--debug] [--lenient] [--list-rules] [FILE|-]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/ghettovoice/sipabnf/grammar"
	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/log"
	"github.com/ghettovoice/sipabnf/message"
)

const ruleMessage = "message"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newCommand()
	cmd.Reader = stdin
	cmd.Writer = stdout
	cmd.ErrWriter = stderr
	if err := cmd.Run(ctx, args); err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			if msg := ec.Error(); msg != "" {
				fmt.Fprintln(stderr, "sipparse:", msg)
			}
			return ec.ExitCode()
		}
		fmt.Fprintln(stderr, "sipparse:", err)
		return 1
	}
	return 0
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "sipparse",
		Usage:     "parse SIP messages and protocol elements",
		ArgsUsage: "[FILE|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rule",
				Aliases: []string{"r"},
				Value:   ruleMessage,
				Usage:   "start rule, " + ruleMessage + " parses a whole message",
			},
			&cli.BoolFlag{Name: "json", Usage: "print the value as JSON"},
			&cli.BoolFlag{Name: "debug", Usage: "trace rule matches"},
			&cli.BoolFlag{Name: "lenient", Usage: "keep malformed header fields of a message"},
			&cli.BoolFlag{Name: "list-rules", Usage: "print the start rules and exit"},
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action:         parseAction,
	}
}

func parseAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("list-rules") {
		fmt.Fprintln(cmd.Writer, strings.Join(ruleNames(), "\n"))
		return nil
	}

	rule := cmd.String("rule")
	if rule != ruleMessage && !grammar.IsRule(grammar.Rule(rule)) {
		return cli.Exit(fmt.Sprintf("unknown rule %q, see --list-rules", rule), 2)
	}

	input, err := readInput(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.New(cmd.ErrWriter, slog.LevelInfo)
	var opts []grammar.Option
	if cmd.Bool("debug") {
		logger = log.Dev
		opts = append(opts, grammar.WithLogger(logger))
	}

	var val any
	if rule == ruleMessage {
		p := message.Parser{Lenient: cmd.Bool("lenient"), Logger: logger, GrammarOptions: opts}
		var msg *message.Message
		if msg, err = p.Parse(input); err == nil {
			val = msg
		}
	} else {
		val, err = grammar.Parse(input, grammar.Rule(rule), opts...)
	}
	if err != nil {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "parse failed",
			slog.String("rule", rule),
			slog.Any("error", err),
		)
		report(cmd.ErrWriter, string(input), rule, err)
		return cli.Exit("", 1)
	}

	if cmd.Bool("json") {
		return printJSON(cmd.Writer, val)
	}
	printValue(cmd.Writer, val)
	return nil
}

func ruleNames() []string {
	return append(lo.Map(grammar.Rules(), func(r grammar.Rule, _ int) string { return string(r) }), ruleMessage)
}

func readInput(cmd *cli.Command) ([]byte, error) {
	name := cmd.Args().First()
	if name == "" || name == "-" {
		return io.ReadAll(cmd.Reader)
	}
	return os.ReadFile(name)
}

// report prints the error and points to the failing column of the text the error positions refer to.
func report(w io.Writer, input, rule string, err error) {
	if errorutil.IsGrammarErr(err) {
		fmt.Fprintln(w, "syntax error:", err)
	} else {
		fmt.Fprintln(w, "error:", err)
	}

	text := input
	var ferr *message.FieldError
	switch {
	case errors.As(err, &ferr):
		text = ferr.Value
	case rule == ruleMessage && errors.Is(err, message.ErrStartLine):
		text = startLineOf(input)
	}

	var (
		synErr *grammar.SyntaxError
		semErr *grammar.SemanticError
	)
	switch {
	case errors.As(err, &synErr):
		printCaret(w, text, synErr.Line, synErr.Column)
	case errors.As(err, &semErr):
		line, col := position(text, semErr.Offset)
		printCaret(w, text, line, col)
	}
}

func startLineOf(s string) string {
	s = strings.TrimLeft(s, "\r\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "\r")
}

// position converts a rune offset to 1-based line and column.
func position(s string, offset int) (line, col int) {
	line, col = 1, 1
	for i, r := range []rune(s) {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func printCaret(w io.Writer, text string, line, col int) {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return
	}
	src := []rune(strings.TrimSuffix(lines[line-1], "\r"))
	pad := make([]rune, 0, col)
	for i := 0; i < col-1; i++ {
		if i < len(src) && src[i] == '\t' {
			pad = append(pad, '\t')
		} else {
			pad = append(pad, ' ')
		}
	}
	fmt.Fprintf(w, "  %s\n  %s^\n", string(src), string(pad))
}

func printValue(w io.Writer, val any) {
	msg, ok := val.(*message.Message)
	if !ok {
		fmt.Fprintf(w, "%T %+v\n", val, val)
		return
	}

	fmt.Fprintf(w, "%+v\n", msg.StartLine)
	for _, f := range msg.Fields {
		if f.Err != nil {
			fmt.Fprintf(w, "%s: %s (%v)\n", f.Name, f.Raw, f.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %+v\n", f.Name, f.Value)
	}
	if len(msg.Body) > 0 {
		fmt.Fprintf(w, "\n%s\n", msg.Body)
	}
}

type jsonField struct {
	Name  header.Name `json:"name"`
	Raw   string      `json:"raw"`
	Value any         `json:"value,omitempty"`
	Error string      `json:"error,omitempty"`
}

type jsonMessage struct {
	StartLine any         `json:"start_line"`
	Fields    []jsonField `json:"fields"`
	Body      string      `json:"body,omitempty"`
}

func printJSON(w io.Writer, val any) error {
	if msg, ok := val.(*message.Message); ok {
		val = jsonMessage{
			StartLine: msg.StartLine,
			Fields: lo.Map(msg.Fields, func(f message.Field, _ int) jsonField {
				jf := jsonField{Name: f.Name, Raw: f.Raw, Value: f.Value}
				if f.Err != nil {
					jf.Error = f.Err.Error()
				}
				return jf
			}),
			Body: string(msg.Body),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(val); err != nil {
		return cli.Exit(fmt.Sprintf("encode value: %v", err), 1)
	}
	return nil
}
