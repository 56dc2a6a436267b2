package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrWong99/tubesage/internal/runtime"
	"github.com/MrWong99/tubesage/pkg/types"
)

// exitTokens end the session when entered on their own (case-insensitive,
// surrounding whitespace ignored).
var exitTokens = map[string]struct{}{
	"exit": {},
	"quit": {},
	"bye":  {},
}

// Loop is the interactive read-eval loop. It reads user lines, maintains the
// history and delegates each turn to the runner, rendering events through the
// dispatcher.
type Loop struct {
	in         *bufio.Reader
	out        io.Writer
	runner     *runtime.Runner
	history    *History
	dispatcher *Dispatcher
	banner     string
}

// NewLoop constructs an interactive loop reading from in and writing to out.
// The banner is printed once when the loop starts.
func NewLoop(in io.Reader, out io.Writer, runner *runtime.Runner, history *History, banner string) *Loop {
	return &Loop{
		in:         bufio.NewReader(in),
		out:        out,
		runner:     runner,
		history:    history,
		dispatcher: NewDispatcher(out, history),
		banner:     banner,
	}
}

// Run blocks until the user enters an exit token, input reaches EOF, or ctx
// is canceled. Every entered line, including exit tokens and empty lines, is
// appended to the history as a user item before it is examined; empty lines
// skip only the dispatch, not the append.
func (l *Loop) Run(ctx context.Context) error {
	if l.banner != "" {
		fmt.Fprintf(l.out, "%s\n", l.banner)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, "\nYou: ")
		line, err := l.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input := strings.TrimSpace(line)
		// An EOF without a pending line is not user input, so nothing is
		// recorded for it.
		if !eof || input != "" {
			l.history.Append(types.Message{Role: types.RoleUser, Content: input})
		}

		if _, isExit := exitTokens[strings.ToLower(input)]; isExit {
			fmt.Fprintln(l.out, "Goodbye!")
			return nil
		}

		if input != "" {
			fmt.Fprint(l.out, "\nAgent: ")
			events := l.runner.Run(ctx, l.history.Snapshot())
			l.dispatcher.DrainAll(events)
			fmt.Fprintln(l.out)
		}

		if eof {
			fmt.Fprintln(l.out, "Goodbye!")
			return nil
		}
	}
}
