package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debmatrix/internal/core"
)

// StageRelease stages the source tree of every configured package for a
// published upstream version.
func (s Service) StageRelease(ctx context.Context, version string) (StageResult, error) {
	if err := core.ValidateConfig(ctx, s.Config); err != nil {
		return StageResult{}, err
	}
	if version == "" {
		return StageResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("upstream version is required")
	}
	log.Info().Str("version", version).Msg("staging release sources")
	if err := s.Stager.StageRelease(ctx, version); err != nil {
		return StageResult{}, err
	}
	return StageResult{Staged: len(s.Config.Packages)}, nil
}

// StageCheckout stages source trees from a local source-control checkout.
func (s Service) StageCheckout(ctx context.Context, path string) (StageResult, error) {
	if err := core.ValidateConfig(ctx, s.Config); err != nil {
		return StageResult{}, err
	}
	if path == "" {
		return StageResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("checkout path is required")
	}
	log.Info().Str("path", path).Msg("staging checkout sources")
	if err := s.Stager.StageCheckout(ctx, path); err != nil {
		return StageResult{}, err
	}
	return StageResult{Staged: len(s.Config.Packages)}, nil
}
