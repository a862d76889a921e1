// Package ttylog records terminal sessions and plays them back.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies the stream an event was seen on.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Event is a chunk of terminal I/O.
type Event struct {
	TimestampMicros int64
	Fd              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the source
	// has no more log entries.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	return newPlayback(maxSleep, time.Sleep, next)
}

func newPlayback(maxSleep time.Duration, sleep func(time.Duration), next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 && delta > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.Fd == FDStdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder tees terminal I/O into a LogSink. It is safe for concurrent use
// so a child's stdout and stderr relays may share it.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
	err    error
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(output LogSink) *Recorder {
	return &Recorder{output: output, now: time.Now}
}

// Err returns the first error the sink reported. Sink errors never fail the
// underlying read or write.
func (r *Recorder) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.err
}

func (r *Recorder) record(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	e := &Event{
		TimestampMicros: r.now().UnixMicro(),
		Fd:              fd,
		Data:            append([]byte(nil), data...),
	}
	if err := r.output(e); err != nil && r.err == nil {
		r.err = err
	}
}

// Reader records everything read through it as stdin.
func (r *Recorder) Reader(wrapped io.Reader) io.Reader {
	return &recorderReader{r: r, wrapped: wrapped}
}

// Writer records everything written through it on fd.
func (r *Recorder) Writer(fd FD, wrapped io.Writer) io.Writer {
	return &recorderWriter{r: r, fd: fd, wrapped: wrapped}
}

type recorderReader struct {
	r       *Recorder
	wrapped io.Reader
}

var _ io.Reader = (*recorderReader)(nil)

func (rc *recorderReader) Read(p []byte) (int, error) {
	n, err := rc.wrapped.Read(p)
	rc.r.record(FDStdin, p[:n])
	return n, err
}

type recorderWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rc *recorderWriter) Write(p []byte) (int, error) {
	n, err := rc.wrapped.Write(p)
	rc.r.record(rc.fd, p[:n])
	return n, err
}
