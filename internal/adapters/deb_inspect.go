package adapters

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"

	"debmatrix/internal/ports"
)

// DebInspectAdapter opens built .deb files and counts the entries of
// their data archive. The count backs the build sanity check: a freshly
// built package with almost no content means the build silently produced
// an empty or truncated artifact.
type DebInspectAdapter struct{}

func NewDebInspectAdapter() DebInspectAdapter {
	return DebInspectAdapter{}
}

func (a DebInspectAdapter) DataEntryCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package artifact not found at %s", path)).
			WithCause(err)
	}
	defer file.Close()

	arReader := ar.NewReader(file)
	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read deb archive").
				WithCause(err)
		}
		if !strings.HasPrefix(header.Name, "data.tar") {
			continue
		}
		return countTarEntries(arReader, header.Name)
	}
	return 0, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("deb at %s has no data archive", path))
}

func countTarEntries(r io.Reader, member string) (int, error) {
	var tr *tar.Reader
	switch {
	case strings.HasSuffix(member, ".gz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to open data.tar.gz").
				WithCause(err)
		}
		defer gzr.Close()
		tr = tar.NewReader(gzr)
	case strings.HasSuffix(member, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to open data.tar.zst").
				WithCause(err)
		}
		defer zr.Close()
		tr = tar.NewReader(zr)
	case strings.HasSuffix(member, ".tar"):
		tr = tar.NewReader(r)
	default:
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unsupported data archive compression: %s", member))
	}

	count := 0
	for {
		_, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read data archive").
				WithCause(err)
		}
		count++
	}
}

var _ ports.DebInspectorPort = DebInspectAdapter{}
