package ports

import "context"

type SourceStagePort interface {
	// StageRelease downloads and extracts the upstream release tarball
	// for every configured package into the working root.
	StageRelease(ctx context.Context, version string) error

	// StageCheckout stages source trees from a local checkout.
	StageCheckout(ctx context.Context, path string) error
}
