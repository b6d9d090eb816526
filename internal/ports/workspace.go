package ports

import "debmatrix/internal/types"

type WorkspacePort interface {
	// StagedSources lists the staged source trees of a package, sorted by
	// version directory name.
	StagedSources(pkg string) ([]types.StagedSource, error)

	// EnsureResultDir creates (if needed) and returns the results
	// directory for a matrix cell.
	EnsureResultDir(target types.PackageTarget) (string, error)

	// ResultDir returns the results directory for a matrix cell without
	// creating it.
	ResultDir(target types.PackageTarget) string
}
