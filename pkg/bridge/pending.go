package bridge

import (
	"context"
	"sync"
)

// Request is one command to dispatch
type Request struct {
	ID         string
	Command    string
	Args       []string
	Background bool
	Key        Key
}

// Pending is the handle of a dispatched request. It resolves after the
// router has finished with the request's output.
type Pending struct {
	req  Request
	done chan struct{}
	once sync.Once
	out  Output
}

func newPending(req Request) *Pending {
	return &Pending{req: req, done: make(chan struct{})}
}

// Resolved returns a handle that is already complete with out
func Resolved(req Request, out Output) *Pending {
	p := newPending(req)
	p.resolve(out)
	return p
}

func (p *Pending) resolve(out Output) {
	p.once.Do(func() {
		p.out = out
		close(p.done)
	})
}

// Request returns the dispatched request
func (p *Pending) Request() Request { return p.req }

// Done is closed once the output has been handled
func (p *Pending) Done() <-chan struct{} { return p.done }

// Output returns the routed output if the request has completed
func (p *Pending) Output() (Output, bool) {
	select {
	case <-p.done:
		return p.out, true
	default:
		return Output{}, false
	}
}

// Wait blocks until the request completes or ctx is done
func (p *Pending) Wait(ctx context.Context) (Output, error) {
	select {
	case <-p.done:
		return p.out, nil
	case <-ctx.Done():
		return Output{}, ctx.Err()
	}
}

// WaitAll waits for every handle. Nil handles are skipped.
func WaitAll(ctx context.Context, pending ...*Pending) ([]Output, error) {
	outs := make([]Output, 0, len(pending))
	for _, p := range pending {
		if p == nil {
			continue
		}
		out, err := p.Wait(ctx)
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}
