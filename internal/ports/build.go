package ports

import (
	"context"

	"debmatrix/internal/types"
)

type BuilderPort interface {
	// Provision creates the build environment when absent and refreshes
	// it otherwise.
	Provision(ctx context.Context, env types.BuildEnv) error

	// Build runs the external builder against the staged source tree,
	// scoped to env, placing artifacts under resultDir.
	Build(ctx context.Context, srcDir string, env types.BuildEnv, resultDir string) error
}

type DebInspectorPort interface {
	// DataEntryCount returns the number of entries in the data archive of
	// the .deb at path.
	DataEntryCount(path string) (int, error)
}
