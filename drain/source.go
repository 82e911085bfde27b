package drain

import (
	"context"
	"errors"
	"io"
	"os"
	"time"
)

// ErrIdle is returned by a Source when no unit arrived within the timeout.
var ErrIdle = errors.New("idle timeout")

// A Source reads one unit at a time, waiting at most timeout for it.
// It returns ErrIdle on timeout, io.EOF at end of stream, and ctx.Err()
// if the context ends first.
type Source interface {
	ReadUnit(ctx context.Context, timeout time.Duration) (byte, error)
}

// NewSource polls the descriptor directly when r is a pollable file and
// falls back to a goroutine-backed read otherwise.
func NewSource(r io.Reader) Source {
	if f, ok := r.(*os.File); ok {
		if s, ok := newPollSource(f); ok {
			return s
		}
	}
	return newAsyncSource(r)
}

type readResult struct {
	b   byte
	ok  bool
	err error
}

// asyncSource issues each read on its own goroutine. A read that loses the
// race against the timer stays pending and is picked up by the next call, so
// there is never more than one read in flight and no unit is reordered.
type asyncSource struct {
	r       io.Reader
	pending chan readResult
	err     error
}

func newAsyncSource(r io.Reader) *asyncSource {
	return &asyncSource{r: r}
}

func (s *asyncSource) ReadUnit(ctx context.Context, timeout time.Duration) (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.pending == nil {
		// Buffered so that an abandoned read can always complete and exit.
		s.pending = make(chan readResult, 1)
		go readOne(s.r, s.pending)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-s.pending:
		s.pending = nil
		if res.err != nil {
			s.err = res.err
		}
		if res.ok {
			return res.b, nil
		}
		return 0, res.err
	case <-timer.C:
		return 0, ErrIdle
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func readOne(r io.Reader, out chan<- readResult) {
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if n > 0 || err != nil {
			out <- readResult{b: buf[0], ok: n > 0, err: err}
			return
		}
	}
}
