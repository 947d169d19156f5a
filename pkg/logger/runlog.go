package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const logFileName = "kubeprep.log"

// RunLog is the scoped log resource for a single provisioning run: a uniquely
// named temporary directory holding a log file that captures all step output.
// Nothing is streamed live; on failure the caller dumps the full buffer so the
// operator sees complete context.
//
// Close removes the directory and must be called on every exit path.
type RunLog struct {
	dir    string
	file   *os.File
	logger *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// NewRunLog allocates the temporary directory and log file for a run.
func NewRunLog() (*RunLog, error) {
	runID := uuid.NewString()

	dir, err := os.MkdirTemp("", "kubeprep-"+runID[:8]+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create run temp directory: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	log := logrus.New()
	log.SetOutput(file)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &RunLog{
		dir:    dir,
		file:   file,
		logger: log,
	}, nil
}

// Logger returns the logrus logger that writes into the run log file.
func (r *RunLog) Logger() *logrus.Logger {
	return r.logger
}

// Writer returns the raw log file writer, used to capture external command
// output alongside the structured log entries.
func (r *RunLog) Writer() io.Writer {
	return r.file
}

// Path returns the location of the log file.
func (r *RunLog) Path() string {
	return filepath.Join(r.dir, logFileName)
}

// Dir returns the temporary directory owned by this run.
func (r *RunLog) Dir() string {
	return r.dir
}

// Dump copies the full captured log to w.
func (r *RunLog) Dump(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("failed to flush run log: %w", err)
	}

	f, err := os.Open(r.Path())
	if err != nil {
		return fmt.Errorf("failed to open run log for dump: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to dump run log: %w", err)
	}

	return nil
}

// Close releases the scoped resource: the log file is closed and the whole
// temporary directory removed. Safe to call more than once.
func (r *RunLog) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	_ = r.file.Close()
	return os.RemoveAll(r.dir)
}
