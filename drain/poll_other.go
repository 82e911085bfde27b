//go:build !(linux || darwin)

package drain

import "os"

func newPollSource(f *os.File) (Source, bool) {
	return nil, false
}
