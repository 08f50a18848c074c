// Package vault is the file-storage collaborator: it persists captured clip
// blobs and generated note documents under one root directory.
package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// PersistError reports a failed storage write.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Vault writes clips and notes below a fixed root.
type Vault struct {
	root   string
	logger *zap.Logger
}

// New creates a vault rooted at root. A nil logger disables logging.
func New(root string, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{root: root, logger: logger}
}

// Root returns the vault's root directory.
func (v *Vault) Root() string { return v.root }

// SaveClip writes a captured clip blob and returns its absolute path.
func (v *Vault) SaveClip(name string, data []byte) (string, error) {
	return v.write(filepath.Join("clips", name), data)
}

// SaveNote writes a note document and returns its absolute path.
func (v *Vault) SaveNote(name string, content string) (string, error) {
	return v.write(name, []byte(content))
}

func (v *Vault) write(relative string, data []byte) (string, error) {
	target := filepath.Join(v.root, relative)

	if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
		return "", &PersistError{Path: target, Err: err}
	}
	if err := os.WriteFile(target, data, filePermissions); err != nil {
		return "", &PersistError{Path: target, Err: err}
	}

	v.logger.Debug("persisted file",
		zap.String("path", target),
		zap.Int("bytes", len(data)))
	return target, nil
}
