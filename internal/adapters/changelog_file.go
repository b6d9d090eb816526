package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/core"
	"debmatrix/internal/ports"
)

// ChangelogFileAdapter reads and rewrites debian changelog files on
// disk. Rewrites go through a temp file and a rename so readers either
// see the original or the fully mutated file, never a partial write.
type ChangelogFileAdapter struct{}

func NewChangelogFileAdapter() ChangelogFileAdapter {
	return ChangelogFileAdapter{}
}

func (a ChangelogFileAdapter) Rewrite(path string, pkg string, codenames []string, now time.Time) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("changelog not found at %s", path)).
			WithCause(err)
	}
	cl, err := core.Parse(content, pkg)
	if err != nil {
		return err
	}
	if err := core.Rewrite(cl, codenames, now); err != nil {
		return err
	}
	return replaceFile(path, cl.Serialize())
}

func (a ChangelogFileAdapter) ResolveRevision(path string, pkg string) (uint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("changelog not found at %s", path)).
			WithCause(err)
	}
	return core.ResolveRevision(content, pkg)
}

// replaceFile writes content next to path and renames it into place,
// preserving the original file mode.
func replaceFile(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("cannot stat %s", path)).
			WithCause(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".changelog-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp changelog").
			WithCause(err)
	}
	tmpPath := tmp.Name()
	cleanup := func(cause error, msg string) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(cause)
	}
	if _, err := tmp.Write(content); err != nil {
		return cleanup(err, "failed to write temp changelog")
	}
	if err := tmp.Chmod(info.Mode()); err != nil {
		return cleanup(err, "failed to set changelog mode")
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err, "failed to close temp changelog")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace changelog").
			WithCause(err)
	}
	return nil
}

var _ ports.ChangelogPort = ChangelogFileAdapter{}
