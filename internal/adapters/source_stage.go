package adapters

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/core"
	"debmatrix/internal/ports"
	"debmatrix/internal/shared"
	"debmatrix/internal/types"
)

// SourceStageAdapter acquires upstream source trees: released tarballs
// fetched over HTTP with checksum verification, or a local source
// checkout. Either way the result is one directory per package version
// under the working root, with its debian/ subtree and version sidecar.
type SourceStageAdapter struct {
	Config types.Config
	Client *http.Client
}

func NewSourceStageAdapter(cfg types.Config) SourceStageAdapter {
	return SourceStageAdapter{
		Config: cfg,
		Client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a SourceStageAdapter) StageRelease(ctx context.Context, version string) error {
	for _, pkg := range a.Config.Packages {
		if err := a.stageReleasePackage(ctx, pkg, version); err != nil {
			return err
		}
	}
	return nil
}

func (a SourceStageAdapter) stageReleasePackage(ctx context.Context, pkg string, version string) error {
	url := fmt.Sprintf("%s/%s-%s.tar.gz", strings.TrimSuffix(a.Config.DownloadBaseURL, "/"), pkg, version)
	tarball, err := a.fetch(ctx, url)
	if err != nil {
		return err
	}
	checksum, err := a.fetch(ctx, url+".sha256")
	if err != nil {
		return err
	}
	sum := sha256.Sum256(tarball)
	want := strings.Fields(strings.TrimSpace(string(checksum)))
	if len(want) == 0 || !strings.EqualFold(want[0], hex.EncodeToString(sum[:])) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("checksum mismatch for %s", url))
	}

	dest := filepath.Join(a.Config.WorkRoot, pkg, version)
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create staging directory").
			WithCause(err)
	}
	if err := extractTarGz(tarball, dest); err != nil {
		return err
	}
	return writeVersionSidecar(dest, version)
}

func (a SourceStageAdapter) StageCheckout(ctx context.Context, path string) error {
	for _, pkg := range a.Config.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(path, pkg)
		changelog, err := os.ReadFile(filepath.Join(src, "debian", "changelog"))
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("checkout has no changelog for package %s", pkg)).
				WithCause(err)
		}
		cl, err := core.Parse(changelog, pkg)
		if err != nil {
			return err
		}
		dest := filepath.Join(a.Config.WorkRoot, pkg, cl.Upstream)
		if err := copyTree(src, dest); err != nil {
			return err
		}
		if err := writeVersionSidecar(dest, cl.Upstream); err != nil {
			return err
		}
	}
	return nil
}

func (a SourceStageAdapter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build download request").
			WithCause(err)
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("download failed for %s", url)).
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("download failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read response from %s", url)).
			WithCause(err)
	}
	return body, nil
}

// extractTarGz unpacks a release tarball into dest, stripping the
// tarball's single top-level directory.
func extractTarGz(tarball []byte, dest string) error {
	gzr, err := gzip.NewReader(bytes.NewReader(tarball))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("tarball is not gzip compressed").
			WithCause(err)
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read tarball").
				WithCause(err)
		}
		name := stripTopLevel(header.Name)
		if name == "" {
			continue
		}
		target, err := securePath(dest, name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0o700); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to create extracted directory").
					WithCause(err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to create extracted directory").
					WithCause(err)
			}
			file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to create extracted file").
					WithCause(err)
			}
			if _, err := io.Copy(file, tr); err != nil {
				file.Close()
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to write extracted file").
					WithCause(err)
			}
			if err := file.Close(); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to close extracted file").
					WithCause(err)
			}
		}
	}
}

func stripTopLevel(name string) string {
	cleaned := strings.TrimPrefix(filepath.ToSlash(name), "./")
	if idx := strings.Index(cleaned, "/"); idx >= 0 {
		return cleaned[idx+1:]
	}
	return ""
}

func securePath(root string, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("tarball entry escapes staging directory: %s", name))
	}
	return target, nil
}

func copyTree(src string, dest string) error {
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyRegularFile(path, target)
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to stage checkout from %s", src)).
			WithCause(err)
	}
	return nil
}

func copyRegularFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeVersionSidecar(dir string, version string) error {
	debianDir := filepath.Join(dir, "debian")
	if err := os.MkdirAll(debianDir, 0o750); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create debian directory").
			WithCause(err)
	}
	path := filepath.Join(debianDir, versionSidecar)
	if err := os.WriteFile(path, []byte(version+"\n"), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write version sidecar").
			WithCause(err)
	}
	return nil
}

var _ ports.SourceStagePort = SourceStageAdapter{}
