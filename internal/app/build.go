package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"debmatrix/internal/core"
	"debmatrix/internal/types"
)

// minDebEntries is the coarse sanity threshold for a built package: a
// data archive with fewer entries means the build produced an empty or
// truncated package even though the builder exited cleanly.
const minDebEntries = 50

// Build runs the full matrix in deterministic nested order: package,
// then distribution, then architecture, then staged source. The first
// error anywhere aborts the whole run; a half-built matrix with
// inconsistent changelog state across cells is worse than stopping and
// asking the operator to intervene.
func (s Service) Build(ctx context.Context) (BuildResult, error) {
	if err := core.ValidateConfig(ctx, s.Config); err != nil {
		return BuildResult{}, err
	}
	if !s.Config.Signing.Enabled() {
		log.Info().Msg("signing credentials not configured, artifacts will stay unsigned")
	}

	report := types.BuildReport{GeneratedAt: s.Clock()}
	for _, pkg := range s.Config.Packages {
		sources, err := s.Workspace.StagedSources(pkg)
		if err != nil {
			return BuildResult{}, err
		}
		for _, codename := range s.Config.BuildCodenames() {
			for _, arch := range s.Config.Architectures {
				target := types.PackageTarget{Package: pkg, Codename: codename, Arch: arch}
				for _, src := range sources {
					cell, err := s.buildCell(ctx, target, src)
					if err != nil {
						return BuildResult{}, err
					}
					report.Cells = append(report.Cells, cell)
				}
			}
		}
	}

	path, err := s.writeReport(report)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Report: report, ReportPath: path}, nil
}

func (s Service) buildCell(ctx context.Context, target types.PackageTarget, src types.StagedSource) (types.CellReport, error) {
	logger := log.With().Str("cell", target.String()).Str("upstream", src.Upstream).Logger()
	logger.Info().Msg("building")

	changelogPath := src.ChangelogPath()
	if _, err := os.Stat(changelogPath); err != nil {
		return types.CellReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("changelog missing for %s in %s", target.Package, src.Dir)).
			WithCause(err)
	}

	if err := s.Changelogs.Rewrite(changelogPath, target.Package, s.Config.BuildCodenames(), s.Clock()); err != nil {
		return types.CellReport{}, err
	}
	// The revision is re-read from the rewritten file rather than taken
	// from the in-memory model; the original pipeline derived it this way
	// and the ordering is covered by a regression test.
	revision, err := s.Changelogs.ResolveRevision(changelogPath, target.Package)
	if err != nil {
		return types.CellReport{}, err
	}

	artifact := types.BuildArtifact{
		Package:  target.Package,
		Upstream: src.Upstream,
		Revision: revision,
		Arch:     target.Arch,
	}
	resultDir, err := s.Workspace.EnsureResultDir(target)
	if err != nil {
		return types.CellReport{}, err
	}

	if err := s.Builder.Build(ctx, src.Dir, s.buildEnv(target), resultDir); err != nil {
		return types.CellReport{}, err
	}

	debPath := filepath.Join(resultDir, artifact.DebName())
	count, err := s.Inspector.DataEntryCount(debPath)
	if err != nil {
		return types.CellReport{}, err
	}
	if count < minDebEntries {
		return types.CellReport{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("build sanity check failed: %s has %d entries, want at least %d", artifact.DebName(), count, minDebEntries))
	}

	changesPath := filepath.Join(resultDir, artifact.ChangesName())
	dscPath := filepath.Join(resultDir, artifact.DscName())
	for _, output := range []string{changesPath, dscPath} {
		if _, err := os.Stat(output); err != nil {
			return types.CellReport{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("missing build output %s", filepath.Base(output))).
				WithCause(err)
		}
	}

	signed := false
	if s.Config.Signing.Enabled() {
		logger.Info().Str("key", s.Config.Signing.KeyID).Msg("signing")
		if err := s.Signer.ReSign(ctx, changesPath); err != nil {
			return types.CellReport{}, err
		}
		for _, output := range []string{dscPath, changesPath} {
			if err := s.Verifier.VerifySignature(output); err != nil {
				return types.CellReport{}, err
			}
		}
		signed = true
	}

	logger.Info().Str("version", artifact.Version()).Int("entries", count).Msg("built")
	return types.CellReport{
		Package:   target.Package,
		Codename:  target.Codename,
		Arch:      target.Arch,
		Version:   artifact.Version(),
		Artifacts: []string{artifact.DebName(), artifact.ChangesName(), artifact.DscName()},
		Signed:    signed,
	}, nil
}

func (s Service) buildEnv(target types.PackageTarget) types.BuildEnv {
	family, _ := types.FamilyOf(target.Codename)
	return types.BuildEnv{
		Codename: target.Codename,
		Arch:     target.Arch,
		BaseTGZ:  filepath.Join(s.Config.BaseImageRoot, fmt.Sprintf("%s-%s-base.tgz", target.Codename, target.Arch)),
		CacheDir: filepath.Join(s.Config.AptCacheRoot, fmt.Sprintf("%s-%s", target.Codename, target.Arch)),
		Mirror:   s.Config.MirrorFor(family),
	}
}

func (s Service) writeReport(report types.BuildReport) (string, error) {
	content, err := yaml.Marshal(report)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal build report").
			WithCause(err)
	}
	path := filepath.Join(s.Config.ResultsRoot, "build-report.yaml")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write build report").
			WithCause(err)
	}
	return path, nil
}
