package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"debmatrix/internal/core"
	"debmatrix/internal/types"
)

// Update provisions or refreshes the isolated build environment of every
// (distribution, architecture) pair in the matrix.
func (s Service) Update(ctx context.Context) error {
	if err := core.ValidateConfig(ctx, s.Config); err != nil {
		return err
	}
	for _, codename := range s.Config.BuildCodenames() {
		for _, arch := range s.Config.Architectures {
			target := types.PackageTarget{Codename: codename, Arch: arch}
			env := s.buildEnv(target)
			log.Info().Str("codename", codename).Str("arch", arch).Msg("provisioning build environment")
			if err := s.Builder.Provision(ctx, env); err != nil {
				return err
			}
		}
	}
	return nil
}
