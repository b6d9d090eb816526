package core

import (
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
)

// ResolveRevision extracts the debian revision of the latest changelog
// entry for pkg. Every downstream artifact filename and repository action
// depends on this integer; coercing a malformed value would corrupt them,
// so parse failures surface as errors instead.
func ResolveRevision(content []byte, pkg string) (uint, error) {
	cl, err := Parse(content, pkg)
	if err != nil {
		return 0, err
	}
	return cl.Revision, nil
}

// CompareVersions orders two version strings under debian version
// semantics, falling back to lexical order when either side does not
// parse. Returns a negative value when a sorts before b.
func CompareVersions(a, b string) int {
	va, errA := debversion.NewVersion(a)
	vb, errB := debversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case va.LessThan(vb):
		return -1
	case vb.LessThan(va):
		return 1
	default:
		return 0
	}
}
