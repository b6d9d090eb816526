package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/core"
	"debmatrix/internal/ports"
	"debmatrix/internal/types"
)

// versionSidecar is the file inside a staged debian/ subtree recording
// the resolved upstream version the tree was staged for.
const versionSidecar = "pkg-version"

// WorkspaceAdapter manages the on-disk layout: one subdirectory per
// package under the working root, one version directory per staged
// source tree, and per-(codename, arch, package) results directories.
type WorkspaceAdapter struct {
	WorkRoot    string
	ResultsRoot string
}

func NewWorkspaceAdapter(workRoot string, resultsRoot string) WorkspaceAdapter {
	return WorkspaceAdapter{WorkRoot: workRoot, ResultsRoot: resultsRoot}
}

func (a WorkspaceAdapter) StagedSources(pkg string) ([]types.StagedSource, error) {
	root := filepath.Join(a.WorkRoot, pkg)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no staged sources for package %s", pkg)).
			WithCause(err)
	}

	var sources []types.StagedSource
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		sidecar := filepath.Join(dir, "debian", versionSidecar)
		content, err := os.ReadFile(sidecar)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("staged source %s has no version sidecar", dir)).
				WithCause(err)
		}
		upstream := strings.TrimSpace(string(content))
		if upstream == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("empty version sidecar in %s", dir))
		}
		sources = append(sources, types.StagedSource{
			Package:  pkg,
			Upstream: upstream,
			Dir:      dir,
		})
	}
	if len(sources) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no staged sources for package %s", pkg))
	}
	sort.Slice(sources, func(i, j int) bool {
		if cmp := core.CompareVersions(sources[i].Upstream, sources[j].Upstream); cmp != 0 {
			return cmp < 0
		}
		return sources[i].Dir < sources[j].Dir
	})
	return sources, nil
}

func (a WorkspaceAdapter) EnsureResultDir(target types.PackageTarget) (string, error) {
	dir := a.ResultDir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create results directory for %s", target)).
			WithCause(err)
	}
	return dir, nil
}

func (a WorkspaceAdapter) ResultDir(target types.PackageTarget) string {
	return filepath.Join(a.ResultsRoot, target.Codename, target.Arch, target.Package)
}

var _ ports.WorkspacePort = WorkspaceAdapter{}
