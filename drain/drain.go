// Package drain copies whatever arrives on an input stream until the stream
// goes quiet, then writes it out in a single write.
//
// Each unit (byte) is read with a bounded wait. The run stops at the first
// wait that times out, at end of stream, or when the context is cancelled.
// In every one of those cases the accumulated bytes are written exactly
// once, even if there are none.
package drain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash"
	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
)

const DefaultIdleTimeout = 10 * time.Millisecond

var ErrBadIdleTimeout = errors.New("idle timeout must be positive")

type StopReason int

const (
	StopIdle StopReason = iota
	StopEOF
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopIdle:
		return "idle"
	case StopEOF:
		return "eof"
	case StopCanceled:
		return "canceled"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Summary describes a finished run.
type Summary struct {
	Units   int
	Written int
	Reason  StopReason
	Elapsed time.Duration
}

type options struct {
	idleTimeout time.Duration
	newSource   func(io.Reader) Source
	transform   func([]byte) ([]byte, error)
}

type Option func(*options)

func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

// WithSource overrides how the input is turned into a Source.
func WithSource(f func(io.Reader) Source) Option {
	return func(o *options) {
		o.newSource = f
	}
}

// WithTransform rewrites the accumulated bytes right before they are written.
// If it fails nothing is written.
func WithTransform(f func([]byte) ([]byte, error)) Option {
	return func(o *options) {
		o.transform = f
	}
}

// Run reads from in until it goes idle, reaches EOF or ctx is done, then
// writes everything it read to out in one call. A read error other than EOF
// aborts the run without writing anything.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) (*Summary, error) {
	o := &options{
		idleTimeout: DefaultIdleTimeout,
		newSource:   NewSource,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.idleTimeout <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadIdleTimeout, o.idleTimeout)
	}

	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if f, ok := in.(*os.File); ok {
		logger.Debug().Str("name", f.Name()).
			Bool("terminal", readline.IsTerminal(int(f.Fd()))).
			Msg("input-file")
	}
	src := o.newSource(in)
	logger.Debug().Str("source", fmt.Sprintf("%T", src)).
		Dur("idle-timeout", o.idleTimeout).Msg("draining")

	var acc bytes.Buffer
	var reason StopReason

readLoop:
	for {
		b, err := src.ReadUnit(ctx, o.idleTimeout)
		switch {
		case err == nil:
			acc.WriteByte(b)
		case errors.Is(err, ErrIdle):
			reason = StopIdle
			break readLoop
		case errors.Is(err, io.EOF):
			reason = StopEOF
			break readLoop
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			reason = StopCanceled
			break readLoop
		default:
			logger.Error().Err(err).Int("units", acc.Len()).Msg("read-failed")
			return nil, fmt.Errorf("reading unit %d: %w", acc.Len()+1, err)
		}
	}
	logger.Debug().Stringer("reason", reason).Int("units", acc.Len()).Msg("stopped")

	payload := acc.Bytes()
	if o.transform != nil {
		var err error
		payload, err = o.transform(payload)
		if err != nil {
			return nil, fmt.Errorf("transforming output: %w", err)
		}
	}

	n, err := out.Write(payload)
	summary := &Summary{
		Units:   acc.Len(),
		Written: n,
		Reason:  reason,
		Elapsed: time.Since(start),
	}
	if err != nil {
		return summary, fmt.Errorf("writing output: %w", err)
	}
	logger.Debug().Int("bytes", n).Uint64("xxhash", xxhash.Sum64(payload)).
		Dur("elapsed", summary.Elapsed).Msg("flushed")
	return summary, nil
}
