package types

import (
	"fmt"
	"path/filepath"
)

// PackageTarget is one cell of the build matrix.
type PackageTarget struct {
	Package  string
	Codename string
	Arch     string
}

func (t PackageTarget) String() string {
	return fmt.Sprintf("%s/%s/%s", t.Package, t.Codename, t.Arch)
}

// BuildArtifact names the three files a successful build cell produces.
// All names derive deterministically from the package identity, the
// upstream version, the debian revision, and the architecture.
type BuildArtifact struct {
	Package  string
	Upstream string
	Revision uint
	Arch     string
}

func (a BuildArtifact) Version() string {
	return fmt.Sprintf("%s-%d", a.Upstream, a.Revision)
}

func (a BuildArtifact) DebName() string {
	return fmt.Sprintf("%s_%s_%s.deb", a.Package, a.Version(), a.Arch)
}

func (a BuildArtifact) ChangesName() string {
	return fmt.Sprintf("%s_%s_%s.changes", a.Package, a.Version(), a.Arch)
}

func (a BuildArtifact) DscName() string {
	return fmt.Sprintf("%s_%s.dsc", a.Package, a.Version())
}

// RepositoryAction is a stateless command against the remote repository
// manager. Target is the package name for removals and the artifact path
// for inclusions.
type RepositoryAction struct {
	Verb     RepositoryVerb
	Codename string
	Arch     string
	Target   string
	RepoRoot string
}

// BuildEnv identifies the isolated per-(codename, architecture) build
// environment: a pbuilder base tarball paired with an apt cache.
type BuildEnv struct {
	Codename string
	Arch     string
	BaseTGZ  string
	CacheDir string
	Mirror   string
}

// StagedSource is one locally staged source tree for a package, tagged
// with the upstream version recorded in its sidecar file.
type StagedSource struct {
	Package  string
	Upstream string
	Dir      string
}

func (s StagedSource) ChangelogPath() string {
	return filepath.Join(s.Dir, "debian", "changelog")
}
