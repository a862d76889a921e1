package shell

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// DefaultFileMode is the permission used for files created by redirection.
const DefaultFileMode os.FileMode = 0644

// streams holds the stdin/stdout/stderr bound to one stage.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// bind rebinds the stream named by fd to w.
func (s *streams) bind(fd Descriptor, w io.Writer) {
	switch fd {
	case Stdout:
		s.stdout = w
	case Stderr:
		s.stderr = w
	}
}

// openRedirection opens (creating if absent) the target of r. Non-append
// targets are truncated; append targets are positioned at end of file.
func openRedirection(fs afero.Fs, r Redirection, perm os.FileMode) (afero.File, error) {
	flag := os.O_CREATE | os.O_WRONLY
	if r.Append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	fd, err := fs.OpenFile(r.Filename, flag, perm)
	if err != nil {
		return nil, &RedirectionError{Filename: r.Filename, Err: err}
	}

	if r.Append {
		if _, err := fd.Seek(0, io.SeekEnd); err != nil {
			fd.Close()
			return nil, &RedirectionError{Filename: r.Filename, Err: err}
		}
	}

	return fd, nil
}

// closerList owns handles the shell still holds. Each handle is closed at
// most once.
type closerList []io.Closer

func (cl *closerList) add(c io.Closer) {
	if c != nil {
		*cl = append(*cl, c)
	}
}

// Close closes every handle and returns the last error seen.
func (cl *closerList) Close() error {
	var lastErr error
	for _, c := range *cl {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}
	*cl = nil

	return lastErr
}
