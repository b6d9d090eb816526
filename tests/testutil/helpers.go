// Package testutil provides shared test helpers used across unit and
// integration test packages.
package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/require"
)

// Changelog renders a minimal debian changelog with one entry per
// version, newest first. Each version is a full "upstream-revision"
// string.
func Changelog(pkg string, versions ...string) string {
	var buf bytes.Buffer
	for _, version := range versions {
		fmt.Fprintf(&buf, "%s (%s) unstable; urgency=low\n", pkg, version)
		buf.WriteString("\n")
		buf.WriteString("  * packaging update\n")
		buf.WriteString("\n")
		buf.WriteString(" -- Release Bot <releases@example.com>  Tue, 01 Jul 2014 14:35:54 +0000\n")
		buf.WriteString("\n")
	}
	return buf.String()
}

// WriteChangelog writes a changelog under dir/debian and returns its
// path.
func WriteChangelog(t *testing.T, dir string, content string) string {
	t.Helper()
	debianDir := filepath.Join(dir, "debian")
	require.NoError(t, os.MkdirAll(debianDir, 0o755))
	path := filepath.Join(debianDir, "changelog")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// StageSource lays out a staged source tree: a version directory with a
// debian/changelog and the upstream version sidecar.
func StageSource(t *testing.T, workRoot string, pkg string, upstream string, changelog string) string {
	t.Helper()
	dir := filepath.Join(workRoot, pkg, upstream)
	WriteChangelog(t, dir, changelog)
	sidecar := filepath.Join(dir, "debian", "pkg-version")
	require.NoError(t, os.WriteFile(sidecar, []byte(upstream+"\n"), 0o644))
	return dir
}

// WriteFakeDeb writes a syntactically valid .deb whose data archive
// holds the given number of file entries.
func WriteFakeDeb(t *testing.T, path string, entries int) {
	t.Helper()

	var data bytes.Buffer
	gzw := gzip.NewWriter(&data)
	tw := tar.NewWriter(gzw)
	for i := 0; i < entries; i++ {
		name := fmt.Sprintf("./usr/share/fake/file-%03d", i)
		content := []byte("x")
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(content)),
			ModTime: time.Now(),
		}))
		_, err := tw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := ar.NewWriter(file)
	require.NoError(t, w.WriteGlobalHeader())
	writeArMember(t, w, "debian-binary", []byte("2.0\n"))
	writeArMember(t, w, "control.tar.gz", gzipBytes(t, nil))
	writeArMember(t, w, "data.tar.gz", data.Bytes())
}

func writeArMember(t *testing.T, w *ar.Writer, name string, body []byte) {
	t.Helper()
	require.NoError(t, w.WriteHeader(&ar.Header{
		Name:    name,
		Size:    int64(len(body)),
		Mode:    0o644,
		ModTime: time.Now(),
	}))
	_, err := w.Write(body)
	require.NoError(t, err)
}

func gzipBytes(t *testing.T, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write(content)
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}
