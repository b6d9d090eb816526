package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/types"
)

// ValidateConfig checks the pipeline configuration once at startup.
// Codename mistakes are configuration errors, not data errors: building
// for an unroutable distribution would only fail silently at sync time,
// so they are rejected before any file is touched.
func ValidateConfig(ctx context.Context, cfg types.Config) error {
	assert.NotEmpty(ctx, cfg.WorkRoot, "work_root must be set")
	assert.NotEmpty(ctx, cfg.ResultsRoot, "results_root must be set")
	assert.NotEmpty(ctx, cfg.BaseImageRoot, "base_image_root must be set")
	assert.NotEmpty(ctx, cfg.AptCacheRoot, "apt_cache_root must be set")

	if len(cfg.Packages) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package list must not be empty")
	}
	if len(cfg.Architectures) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("architecture list must not be empty")
	}
	if len(cfg.BuildCodenames()) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no build distributions configured")
	}
	for _, codename := range cfg.UbuntuCodenames {
		if err := checkCodename(codename, types.FamilyUbuntu); err != nil {
			return err
		}
	}
	for _, codename := range cfg.DebianCodenames {
		if err := checkCodename(codename, types.FamilyDebian); err != nil {
			return err
		}
	}
	return nil
}

func checkCodename(codename string, want types.Family) error {
	family, ok := types.FamilyOf(codename)
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown distribution codename %q", codename))
	}
	if family != want {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("codename %q belongs to the %s family", codename, family))
	}
	return nil
}
