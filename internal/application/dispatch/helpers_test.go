package dispatch

import (
	"context"
	"sync"

	"github.com/tallyzap/inventory/internal/domain/command"
)

// recordingGateway records executed commands and returns errFn's result.
type recordingGateway struct {
	mu       sync.Mutex
	executed []command.Command
	errFn    func(cmd command.Command) error
	done     chan command.Command
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{done: make(chan command.Command, 64)}
}

func (g *recordingGateway) Execute(ctx context.Context, cmd command.Command) error {
	g.mu.Lock()
	g.executed = append(g.executed, cmd)
	errFn := g.errFn
	g.mu.Unlock()

	var err error
	if errFn != nil {
		err = errFn(cmd)
	}
	g.done <- cmd
	return err
}

func (g *recordingGateway) setErr(fn func(cmd command.Command) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errFn = fn
}

func (g *recordingGateway) Executed() []command.Command {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]command.Command, len(g.executed))
	copy(out, g.executed)
	return out
}

type failure struct {
	context string
	err     error
}

// recordingReporter collects reported failures.
type recordingReporter struct {
	mu       sync.Mutex
	failures []failure
}

func (r *recordingReporter) ReportFailure(context string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{context: context, err: err})
}

func (r *recordingReporter) Failures() []failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// recordingObserver collects results.
type recordingObserver struct {
	mu      sync.Mutex
	results []Result
}

func (o *recordingObserver) CommandCompleted(result Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *recordingObserver) Results() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Result, len(o.results))
	copy(out, o.results)
	return out
}
