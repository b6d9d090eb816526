package ports

import (
	"context"

	"debmatrix/internal/types"
)

type RepoSyncPort interface {
	// Remove retires the published version of a package from the remote
	// repository. A not-yet-published package is not an error.
	Remove(ctx context.Context, action types.RepositoryAction) error

	// Include publishes a freshly built artifact. The remote skipping the
	// inclusion is fatal.
	Include(ctx context.Context, action types.RepositoryAction) error
}
