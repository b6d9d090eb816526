package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debmatrix/internal/core"
	"debmatrix/internal/types"
)

// Sync publishes every built matrix cell with the two-phase
// remove-then-include protocol, routed by distribution family. The
// revision is re-resolved from each cell's changelog so artifact names
// match exactly what the build stage produced. There is no rollback of a
// remove without its include; the first failure aborts the run and
// leaves the cell in its logged state.
func (s Service) Sync(ctx context.Context) (SyncResult, error) {
	if err := core.ValidateConfig(ctx, s.Config); err != nil {
		return SyncResult{}, err
	}
	if s.Config.Remote.Host == "" {
		return SyncResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("remote repository host is not configured")
	}

	published := 0
	for _, pkg := range s.Config.Packages {
		sources, err := s.Workspace.StagedSources(pkg)
		if err != nil {
			return SyncResult{}, err
		}
		for _, codename := range s.Config.BuildCodenames() {
			family, _ := types.FamilyOf(codename)
			repoRoot := s.Config.Remote.RootFor(family)
			for _, arch := range s.Config.Architectures {
				target := types.PackageTarget{Package: pkg, Codename: codename, Arch: arch}
				for _, src := range sources {
					if err := s.syncCell(ctx, target, src, repoRoot); err != nil {
						return SyncResult{}, err
					}
					published++
				}
			}
		}
	}
	return SyncResult{Published: published}, nil
}

func (s Service) syncCell(ctx context.Context, target types.PackageTarget, src types.StagedSource, repoRoot string) error {
	logger := log.With().Str("cell", target.String()).Logger()
	state := types.SyncStateBuilt

	fail := func(err error) error {
		logger.Error().Str("state", string(types.SyncStateFailed)).Str("from", string(state)).Msg("sync aborted")
		return err
	}

	revision, err := s.Changelogs.ResolveRevision(src.ChangelogPath(), target.Package)
	if err != nil {
		return fail(err)
	}
	artifact := types.BuildArtifact{
		Package:  target.Package,
		Upstream: src.Upstream,
		Revision: revision,
		Arch:     target.Arch,
	}
	debPath := filepath.Join(s.Workspace.ResultDir(target), artifact.DebName())
	if _, err := os.Stat(debPath); err != nil {
		return fail(errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("built artifact %s not found, run a build first", artifact.DebName())).
			WithCause(err))
	}

	logger.Info().Str("state", string(state)).Str("version", artifact.Version()).Msg("removing published version")
	if err := s.Repo.Remove(ctx, types.RepositoryAction{
		Verb:     types.RepositoryVerbRemove,
		Codename: target.Codename,
		Arch:     target.Arch,
		Target:   target.Package,
		RepoRoot: repoRoot,
	}); err != nil {
		return fail(err)
	}
	state = types.SyncStateRemoved

	logger.Info().Str("state", string(state)).Msg("including new artifact")
	if err := s.Repo.Include(ctx, types.RepositoryAction{
		Verb:     types.RepositoryVerbInclude,
		Codename: target.Codename,
		Arch:     target.Arch,
		Target:   debPath,
		RepoRoot: repoRoot,
	}); err != nil {
		return fail(err)
	}
	state = types.SyncStateIncluded

	state = types.SyncStatePublished
	logger.Info().Str("state", string(state)).Str("version", artifact.Version()).Msg("published")
	return nil
}
