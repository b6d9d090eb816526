package core

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"debmatrix/internal/types"
)

// Rewrite retargets the latest entry of a parsed changelog: the
// distribution list becomes the alias of every configured build codename
// (order preserved), urgency is stamped low, and the first maintainer
// trailer gets the current date in RFC 2822 form. The revision stays
// whatever the parsed file carries.
//
// A codename outside the known ubuntu/debian families is a configuration
// error and leaves the changelog untouched; building for it would only
// fail later, silently, at sync time.
func Rewrite(cl *Changelog, codenames []string, now time.Time) error {
	if len(codenames) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no build distributions configured")
	}
	aliases := make([]string, 0, len(codenames))
	for _, codename := range codenames {
		alias, ok := types.AliasOf(codename)
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown distribution codename %q", codename))
		}
		aliases = append(aliases, alias)
	}

	version := fmt.Sprintf("%s-%d", cl.Upstream, cl.Revision)
	if _, err := debversion.NewVersion(version); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid package version %q", version)).
			WithCause(err)
	}

	cl.Distributions = aliases
	cl.Urgency = "low"
	stampFirstTrailer(cl, now)
	return nil
}

// stampFirstTrailer rewrites the date of the first trailer-shaped line,
// scanning the preamble and the latest entry's body in file order. Later
// entries are never touched, whatever trailer-shaped lines they contain.
func stampFirstTrailer(cl *Changelog, now time.Time) {
	date := now.Format(time.RFC1123Z)
	for _, lines := range [][]string{cl.Preamble, cl.Body} {
		for i, line := range lines {
			m := trailerRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			lines[i] = m[1] + m[2] + date
			return
		}
	}
}
