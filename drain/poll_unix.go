//go:build linux || darwin

package drain

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// Long timeouts are split so cancellation is noticed between polls.
const pollSlice = 100 * time.Millisecond

// pollSource never abandons a read: it only reads once poll(2) reports the
// descriptor ready, so the single-byte read cannot block.
type pollSource struct {
	f  *os.File
	fd int
}

func newPollSource(f *os.File) (Source, bool) {
	fd := int(f.Fd())
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(fds, 0); err != nil {
		return nil, false
	}
	// Darwin reports POLLNVAL for devices it cannot poll, such as ttys.
	if fds[0].Revents&unix.POLLNVAL != 0 {
		return nil, false
	}
	return &pollSource{f: f, fd: fd}, true
}

func (s *pollSource) ReadUnit(ctx context.Context, timeout time.Duration) (byte, error) {
	defer runtime.KeepAlive(s.f)
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, ErrIdle
		}
		fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollMillis(min(remaining, pollSlice)))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("poll fd %d: %w", s.fd, err)
		}
		if n == 0 {
			continue
		}
		re := fds[0].Revents
		if re&unix.POLLNVAL != 0 {
			return 0, fmt.Errorf("poll fd %d: %w", s.fd, unix.EBADF)
		}
		if re&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}
		b, ready, err := s.readOne()
		if !ready {
			// Spurious wakeup on a non-blocking descriptor.
			continue
		}
		return b, err
	}
}

func (s *pollSource) readOne() (byte, bool, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(s.fd, buf[:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, false, nil
		case err != nil:
			return 0, true, fmt.Errorf("read fd %d: %w", s.fd, err)
		case n == 0:
			return 0, true, io.EOF
		}
		return buf[0], true, nil
	}
}

// pollMillis rounds up so a sub-millisecond budget still waits once.
func pollMillis(d time.Duration) int {
	ms := int((d + time.Millisecond - 1) / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return ms
}
