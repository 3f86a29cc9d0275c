// Package console is the barebones terminal view. It reads command lines,
// hands them to the dispatcher and prints execution results as the worker
// reports them.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/domain/command"
)

// Prompt is shown before every line.
const Prompt = "Next command: "

// Submitter accepts parsed commands.
type Submitter interface {
	Submit(action command.Action, params map[string]string) uuid.UUID
}

// ShutdownRequester is told when the user asks to leave.
type ShutdownRequester interface {
	RequestShutdown()
}

// LineReader supplies input lines. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// ReadlineConfig configures the interactive reader.
type ReadlineConfig struct {
	HistoryFile  string
	HistoryLimit int
}

// NewReadline creates an interactive reader with action name completion.
func NewReadline(cfg ReadlineConfig) (*readline.Instance, error) {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(command.Actions())+3)
	for _, a := range command.Actions() {
		items = append(items, readline.PcItem(a.String()+";"))
	}
	items = append(items, readline.PcItem("help"), readline.PcItem("exit"), readline.PcItem("quit"))

	return readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    cfg.HistoryLimit,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// View runs the read-submit loop and prints results.
type View struct {
	reader    LineReader
	submitter Submitter
	shutdown  ShutdownRequester
	logger    *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a console view writing to out.
func New(reader LineReader, out io.Writer, submitter Submitter, shutdown ShutdownRequester, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		reader:    reader,
		submitter: submitter,
		shutdown:  shutdown,
		logger:    logger.Named("console"),
		out:       out,
	}
}

// Run reads lines until the user quits, input ends, or ctx is cancelled.
// Leaving on EOF or interrupt also requests shutdown.
func (v *View) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = v.reader.Close() })
	defer stop()

	v.printf("Type a command as <action>; key=value; ... or \"help\".\n")
	for {
		line, err := v.reader.Readline()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				v.shutdown.RequestShutdown()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if v.handle(line) {
			return nil
		}
	}
}

// handle processes one line and reports whether the view should exit.
func (v *View) handle(line string) bool {
	input := strings.TrimSpace(line)
	switch strings.ToLower(input) {
	case "":
		return false
	case "exit", "quit":
		v.printf("Goodbye!\n")
		v.shutdown.RequestShutdown()
		return true
	case "help":
		v.printHelp()
		return false
	}

	parsed, err := ParseLine(input)
	if err != nil {
		v.printf("Error: %v\n", err)
		return false
	}

	id := v.submitter.Submit(parsed.Action, parsed.Params)
	v.logger.Debug("command submitted", zap.String("command_id", id.String()), zap.Stringer("action", parsed.Action))
	v.printf("queued %s (%s)\n", parsed.Action, id)
	return false
}

func (v *View) printHelp() {
	v.printf("Actions:\n")
	for _, a := range command.Actions() {
		v.printf("  %s\n", a)
	}
	v.printf("Example: add customer; id=C100; name=Acme; city=Springfield\n")
	v.printf("Type exit or quit to leave.\n")
}

// CommandCompleted prints the outcome of an execution.
func (v *View) CommandCompleted(result dispatch.Result) {
	if result.Succeeded() {
		v.printf("done %s (%s) in %s\n", result.Command.Action, result.Command.ID, result.Duration)
		return
	}
	v.printf("failed %s (%s): %v\n", result.Command.Action, result.Command.ID, result.Err)
}

func (v *View) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}
