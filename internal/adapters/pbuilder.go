package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/ports"
	"debmatrix/internal/shared"
	"debmatrix/internal/types"
)

// PbuilderAdapter drives pbuilder base images and pdebuild package
// builds. Each (codename, architecture) pair owns one base tarball and
// one apt cache; two builds never share a pair concurrently.
type PbuilderAdapter struct{}

func NewPbuilderAdapter() PbuilderAdapter {
	return PbuilderAdapter{}
}

func (a PbuilderAdapter) Provision(ctx context.Context, env types.BuildEnv) error {
	if err := os.MkdirAll(filepath.Dir(env.BaseTGZ), 0o750); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create base image directory").
			WithCause(err)
	}
	if err := os.MkdirAll(env.CacheDir, 0o750); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create apt cache directory").
			WithCause(err)
	}

	op := "--create"
	if _, err := os.Stat(env.BaseTGZ); err == nil {
		op = "--update"
	}
	args := []string{
		op,
		"--basetgz", env.BaseTGZ,
		"--distribution", env.Codename,
		"--architecture", env.Arch,
		"--aptcache", env.CacheDir,
	}
	if op == "--update" {
		args = append(args, "--override-config")
	}
	if env.Mirror != "" {
		args = append(args, "--mirror", env.Mirror, "--components", "main")
	}
	cmd := exec.CommandContext(ctx, "pbuilder", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("pbuilder %s failed for %s/%s", op, env.Codename, env.Arch)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

func (a PbuilderAdapter) Build(ctx context.Context, srcDir string, env types.BuildEnv, resultDir string) error {
	cmd := exec.CommandContext(ctx, "pdebuild",
		"--buildresult", resultDir,
		"--",
		"--basetgz", env.BaseTGZ,
		"--aptcache", env.CacheDir,
		"--architecture", env.Arch,
	)
	cmd.Dir = srcDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("package build failed for %s/%s", env.Codename, env.Arch)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.BuilderPort = PbuilderAdapter{}
