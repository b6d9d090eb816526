package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"debmatrix/internal/adapters"
	"debmatrix/internal/ports"
	"debmatrix/internal/types"
)

var testNow = time.Date(2015, 3, 17, 10, 30, 0, 0, time.UTC)

// recordingChangelogs wraps the real file adapter and records the order
// of rewrite and resolve calls per changelog path.
type recordingChangelogs struct {
	inner  ports.ChangelogPort
	events []string
}

func newRecordingChangelogs() *recordingChangelogs {
	return &recordingChangelogs{inner: adapters.NewChangelogFileAdapter()}
}

func (c *recordingChangelogs) Rewrite(path string, pkg string, codenames []string, now time.Time) error {
	c.events = append(c.events, "rewrite")
	return c.inner.Rewrite(path, pkg, codenames, now)
}

func (c *recordingChangelogs) ResolveRevision(path string, pkg string) (uint, error) {
	c.events = append(c.events, "resolve")
	return c.inner.ResolveRevision(path, pkg)
}

// fakeBuilder drops artifact files into the result directory instead of
// running an external builder. The names func derives the filenames for
// the cell being built.
type fakeBuilder struct {
	names     func(env types.BuildEnv) []string
	failAfter int
	builds    int
	provision []types.BuildEnv
	err       error
}

func (b *fakeBuilder) Provision(ctx context.Context, env types.BuildEnv) error {
	b.provision = append(b.provision, env)
	return b.err
}

func (b *fakeBuilder) Build(ctx context.Context, srcDir string, env types.BuildEnv, resultDir string) error {
	b.builds++
	if b.failAfter > 0 && b.builds > b.failAfter {
		return b.err
	}
	if b.names == nil {
		return nil
	}
	for _, name := range b.names(env) {
		if err := os.WriteFile(filepath.Join(resultDir, name), []byte("artifact"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeInspector struct {
	count int
	err   error
	paths []string
}

func (i *fakeInspector) DataEntryCount(path string) (int, error) {
	i.paths = append(i.paths, path)
	return i.count, i.err
}

type fakeSigner struct {
	signed []string
	err    error
}

func (s *fakeSigner) ReSign(ctx context.Context, path string) error {
	s.signed = append(s.signed, filepath.Base(path))
	return s.err
}

type fakeVerifier struct {
	verified []string
	err      error
}

func (v *fakeVerifier) VerifySignature(path string) error {
	v.verified = append(v.verified, filepath.Base(path))
	return v.err
}

type fakeRepo struct {
	actions    []types.RepositoryAction
	removeErr  error
	includeErr error
}

func (r *fakeRepo) Remove(ctx context.Context, action types.RepositoryAction) error {
	r.actions = append(r.actions, action)
	return r.removeErr
}

func (r *fakeRepo) Include(ctx context.Context, action types.RepositoryAction) error {
	r.actions = append(r.actions, action)
	return r.includeErr
}

type fakeStager struct {
	releases  []string
	checkouts []string
	err       error
}

func (s *fakeStager) StageRelease(ctx context.Context, version string) error {
	s.releases = append(s.releases, version)
	return s.err
}

func (s *fakeStager) StageCheckout(ctx context.Context, path string) error {
	s.checkouts = append(s.checkouts, path)
	return s.err
}
