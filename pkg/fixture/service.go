package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// Action represents a single file operation performed or simulated by the service
type Action struct {
	Type        ActionType
	Description string
	Path        string
	Success     bool
	Error       error
}

// ActionType represents the type of action being performed
type ActionType string

const (
	ActionReadFile  ActionType = "read_file"
	ActionWriteFile ActionType = "write_file"
)

// Service encapsulates fixture file I/O. It respects dry-run mode and keeps
// a log of the actions it took.
type Service struct {
	dryRun      bool
	atomicWrite bool
	actions     []Action
	logger      *logrus.Entry
}

// Option configures a Service.
type Option func(*Service)

// WithDryRun makes WriteFile record the write without touching the disk.
func WithDryRun(dryRun bool) Option {
	return func(s *Service) { s.dryRun = dryRun }
}

// WithAtomicWrite selects temp-file-and-rename writes (the default) or a
// plain overwrite.
func WithAtomicWrite(atomic bool) Option {
	return func(s *Service) { s.atomicWrite = atomic }
}

// NewService creates a new fixture service
func NewService(opts ...Option) *Service {
	s := &Service{
		atomicWrite: true,
		actions:     []Action{},
		logger:      logging.NewLogger("fixture"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDryRun returns whether the service is in dry-run mode
func (s *Service) IsDryRun() bool {
	return s.dryRun
}

// Actions returns all actions performed or simulated
func (s *Service) Actions() []Action {
	return s.actions
}

func (s *Service) logAction(actionType ActionType, description string, path string, success bool, err error) {
	s.actions = append(s.actions, Action{
		Type:        actionType,
		Description: description,
		Path:        path,
		Success:     success,
		Error:       err,
	})
}

// ReadFile reads the whole file into memory. The handle is closed before
// returning. Errors from os.ReadFile are returned unwrapped so callers can
// test for fs.ErrNotExist.
func (s *Service) ReadFile(path string) ([]byte, error) {
	description := fmt.Sprintf("Read %s", AbbreviatePath(path))
	data, err := os.ReadFile(path)
	if err != nil {
		s.logAction(ActionReadFile, description, path, false, err)
		return nil, err
	}
	s.logger.WithField("bytes", len(data)).Debugf("Read %s", path)
	s.logAction(ActionReadFile, description, path, true, nil)
	return data, nil
}

// WriteFile replaces the file content, respecting dry-run mode. The existing
// file mode is kept.
func (s *Service) WriteFile(path string, content []byte) error {
	description := fmt.Sprintf("Write %s", AbbreviatePath(path))
	if s.dryRun {
		s.logger.Debugf("[dry-run] Would write to %s", path)
		s.logAction(ActionWriteFile, description, path, true, nil)
		return nil
	}

	// Replace the link target, not the link itself
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	var err error
	if s.atomicWrite {
		err = writeAtomic(target, content, perm)
	} else {
		err = os.WriteFile(target, content, perm)
	}
	if err != nil {
		s.logAction(ActionWriteFile, description, path, false, err)
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	s.logger.WithField("bytes", len(content)).Debugf("Wrote %s", path)
	s.logAction(ActionWriteFile, description, path, true, nil)
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over path, so readers see either the old or the new content.
func writeAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// AbbreviatePath replaces the home directory with ~ for display
func AbbreviatePath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return path
	}
	if strings.HasPrefix(path, homeDir) {
		return "~" + path[len(homeDir):]
	}
	return path
}
