package ports

import "time"

type ChangelogPort interface {
	// Rewrite retargets the latest entry of the changelog at path for the
	// configured codenames and stamps the first trailer date with now.
	// The file is replaced atomically; on error it is left untouched.
	Rewrite(path string, pkg string, codenames []string, now time.Time) error

	// ResolveRevision reads the changelog at path fresh from disk and
	// returns the debian revision of the latest entry for pkg.
	ResolveRevision(path string, pkg string) (uint, error)
}
