// Package core holds the changelog model and the matrix-independent
// pipeline logic: parsing and rewriting debian changelogs, deriving the
// package revision, and routing codenames to distribution families.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// headerRe matches an entry header line:
//
//	name (upstream-revision) dist1 dist2; urgency=low
var headerRe = regexp.MustCompile(`^(\S+) \(([^)]+)\) ([^;]+);\s*(.*)$`)

// trailerRe matches a maintainer trailer line and captures the
// maintainer/email block separately from the date:
//
//	-- Name <email>  Tue, 01 Jul 2014 14:35:54 +0000
var trailerRe = regexp.MustCompile(`^( -- .*?>)(\s+)(\S.*)$`)

// Changelog is a parsed debian changelog. Only the latest entry for the
// target package is held as typed fields; every other line is kept raw
// and serializes byte-for-byte.
type Changelog struct {
	// Preamble holds raw lines before the matched header (normally none).
	Preamble []string

	Source        string
	Upstream      string
	Revision      uint
	Distributions []string
	Urgency       string

	// Body holds the raw lines of the latest entry after its header, up
	// to but excluding the next header line.
	Body []string

	// Rest holds every line from the next header onward, verbatim.
	Rest []string
}

// Parse reads a changelog and locates the latest entry for pkg. A header
// line only counts when its source matches pkg and its version carries a
// debian revision separator; the revision itself must be purely numeric.
func Parse(content []byte, pkg string) (*Changelog, error) {
	lines := strings.Split(string(content), "\n")

	start := -1
	var match []string
	for i, line := range lines {
		m := headerRe.FindStringSubmatch(line)
		if m == nil || m[1] != pkg {
			continue
		}
		if !strings.Contains(m[2], "-") {
			continue
		}
		start = i
		match = m
		break
	}
	if start < 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("changelog has no entry for package %s", pkg))
	}

	version := match[2]
	cut := strings.LastIndex(version, "-")
	upstream := version[:cut]
	revision, err := parseRevision(version[cut+1:])
	if err != nil {
		return nil, err
	}

	cl := &Changelog{
		Preamble:      lines[:start],
		Source:        match[1],
		Upstream:      upstream,
		Revision:      revision,
		Distributions: strings.Fields(match[3]),
		Urgency:       parseUrgency(match[4]),
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if headerRe.MatchString(lines[i]) {
			end = i
			break
		}
	}
	cl.Body = lines[start+1 : end]
	cl.Rest = lines[end:]
	return cl, nil
}

// Serialize writes the changelog back out. The header line is rebuilt
// from the typed fields; preamble, body, and the remaining entries pass
// through unchanged, including leading whitespace and the final newline.
func (c *Changelog) Serialize() []byte {
	header := fmt.Sprintf("%s (%s-%d) %s; urgency=%s",
		c.Source, c.Upstream, c.Revision,
		strings.Join(c.Distributions, " "), c.Urgency)

	parts := make([]string, 0, len(c.Preamble)+1+len(c.Body)+len(c.Rest))
	parts = append(parts, c.Preamble...)
	parts = append(parts, header)
	parts = append(parts, c.Body...)
	parts = append(parts, c.Rest...)
	return []byte(strings.Join(parts, "\n"))
}

func parseRevision(raw string) (uint, error) {
	if raw == "" {
		return 0, malformedRevision(raw)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, malformedRevision(raw)
		}
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, malformedRevision(raw)
	}
	return uint(value), nil
}

func malformedRevision(raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed debian revision %q", raw))
}

func parseUrgency(raw string) string {
	for _, field := range strings.Fields(raw) {
		if value, ok := strings.CutPrefix(field, "urgency="); ok {
			return strings.TrimSuffix(value, ",")
		}
	}
	return "low"
}
