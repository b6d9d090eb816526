package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"debmatrix/internal/adapters"
	"debmatrix/internal/types"
	"debmatrix/tests/testutil"
)

func artifactNames(pkg string, version string) func(env types.BuildEnv) []string {
	return func(env types.BuildEnv) []string {
		return []string{
			fmt.Sprintf("%s_%s_%s.deb", pkg, version, env.Arch),
			fmt.Sprintf("%s_%s_%s.changes", pkg, version, env.Arch),
			fmt.Sprintf("%s_%s.dsc", pkg, version),
		}
	}
}

func newBuildService(t *testing.T, cfg types.Config) (Service, *fakeBuilder, *fakeInspector) {
	t.Helper()
	cfg.WorkRoot = t.TempDir()
	cfg.ResultsRoot = t.TempDir()
	cfg.BaseImageRoot = t.TempDir()
	cfg.AptCacheRoot = t.TempDir()
	for _, pkg := range cfg.Packages {
		testutil.StageSource(t, cfg.WorkRoot, pkg, "2.8", testutil.Changelog(pkg, "2.8-3"))
	}

	builder := &fakeBuilder{names: artifactNames(cfg.Packages[0], "2.8-3")}
	inspector := &fakeInspector{count: minDebEntries}
	service := Service{
		Config:     cfg,
		Changelogs: newRecordingChangelogs(),
		Builder:    builder,
		Inspector:  inspector,
		Signer:     &fakeSigner{},
		Verifier:   &fakeVerifier{},
		Repo:       &fakeRepo{},
		Workspace:  adapters.NewWorkspaceAdapter(cfg.WorkRoot, cfg.ResultsRoot),
		Stager:     &fakeStager{},
		Clock:      func() time.Time { return testNow },
	}
	return service, builder, inspector
}

func matrixConfig() types.Config {
	return types.Config{
		Packages:        []string{"ossec-hids"},
		UbuntuCodenames: []string{"trusty"},
		DebianCodenames: []string{"jessie"},
		Architectures:   []string{"amd64", "i386"},
	}
}

func TestBuildMatrixOrder(t *testing.T) {
	service, builder, _ := newBuildService(t, matrixConfig())

	result, err := service.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, builder.builds)

	var got []string
	for _, cell := range result.Report.Cells {
		got = append(got, cell.Codename+"/"+cell.Arch)
	}
	want := []string{"trusty/amd64", "trusty/i386", "jessie/amd64", "jessie/i386"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("matrix order mismatch (-want +got):\n%s", diff)
	}
	for _, cell := range result.Report.Cells {
		assert.Equal(t, "2.8-3", cell.Version)
		assert.False(t, cell.Signed)
	}
}

func TestBuildWritesReportFile(t *testing.T) {
	service, _, _ := newBuildService(t, matrixConfig())

	result, err := service.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(service.Config.ResultsRoot, "build-report.yaml"), result.ReportPath)

	content, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	var report types.BuildReport
	require.NoError(t, yaml.Unmarshal(content, &report))
	assert.Len(t, report.Cells, 4)
	assert.Equal(t, testNow.UTC(), report.GeneratedAt.UTC())
}

func TestBuildRewritesChangelogBeforeResolving(t *testing.T) {
	cfg := matrixConfig()
	cfg.Architectures = []string{"amd64"}
	cfg.DebianCodenames = nil
	service, _, _ := newBuildService(t, cfg)

	_, err := service.Build(context.Background())
	require.NoError(t, err)

	recorder := service.Changelogs.(*recordingChangelogs)
	require.GreaterOrEqual(t, len(recorder.events), 2)
	assert.Equal(t, []string{"rewrite", "resolve"}, recorder.events[:2])
}

func TestBuildRewritesChangelogDistributions(t *testing.T) {
	cfg := matrixConfig()
	cfg.Architectures = []string{"amd64"}
	service, _, _ := newBuildService(t, cfg)

	_, err := service.Build(context.Background())
	require.NoError(t, err)

	changelog, err := os.ReadFile(filepath.Join(service.Config.WorkRoot, "ossec-hids", "2.8", "debian", "changelog"))
	require.NoError(t, err)
	// Ubuntu codenames stand as-is, debian codenames map to suite names.
	assert.Contains(t, string(changelog), "ossec-hids (2.8-3) trusty testing; urgency=low")
}

func TestBuildSanityCheckFailure(t *testing.T) {
	service, _, inspector := newBuildService(t, matrixConfig())
	inspector.count = minDebEntries - 1

	_, err := service.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "build sanity check failed")
}

func TestBuildFailFastSkipsRemainingCells(t *testing.T) {
	service, builder, _ := newBuildService(t, matrixConfig())
	builder.failAfter = 1
	builder.err = errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("pdebuild exploded")

	_, err := service.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, builder.builds)

	_, statErr := os.Stat(filepath.Join(service.Config.ResultsRoot, "build-report.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildMissingChangesOutput(t *testing.T) {
	service, builder, _ := newBuildService(t, matrixConfig())
	builder.names = func(env types.BuildEnv) []string {
		return []string{fmt.Sprintf("ossec-hids_2.8-3_%s.deb", env.Arch)}
	}

	_, err := service.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "missing build output")
}

func TestBuildSignsWhenConfigured(t *testing.T) {
	cfg := matrixConfig()
	cfg.Architectures = []string{"amd64"}
	cfg.DebianCodenames = nil
	cfg.Signing = types.Signing{KeyID: "ABCD1234", Passphrase: "s3cret"}
	service, _, _ := newBuildService(t, cfg)
	signer := service.Signer.(*fakeSigner)
	verifier := service.Verifier.(*fakeVerifier)

	result, err := service.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ossec-hids_2.8-3_amd64.changes"}, signer.signed)
	assert.Equal(t, []string{"ossec-hids_2.8-3.dsc", "ossec-hids_2.8-3_amd64.changes"}, verifier.verified)
	require.Len(t, result.Report.Cells, 1)
	assert.True(t, result.Report.Cells[0].Signed)
}

func TestBuildVerificationFailureAborts(t *testing.T) {
	cfg := matrixConfig()
	cfg.Signing = types.Signing{KeyID: "ABCD1234", Passphrase: "s3cret"}
	service, _, _ := newBuildService(t, cfg)
	service.Verifier.(*fakeVerifier).err = errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("signature verification failed")

	_, err := service.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestUpdateProvisionsEveryCell(t *testing.T) {
	cfg := matrixConfig()
	cfg.UbuntuMirror = "http://ubuntu.example.com/ubuntu"
	cfg.DebianMirror = "http://debian.example.com/debian"
	service, builder, _ := newBuildService(t, cfg)

	require.NoError(t, service.Update(context.Background()))
	require.Len(t, builder.provision, 4)

	first := builder.provision[0]
	assert.Equal(t, "trusty", first.Codename)
	assert.Equal(t, "amd64", first.Arch)
	assert.Equal(t, filepath.Join(service.Config.BaseImageRoot, "trusty-amd64-base.tgz"), first.BaseTGZ)
	assert.Equal(t, "http://ubuntu.example.com/ubuntu", first.Mirror)

	last := builder.provision[3]
	assert.Equal(t, "jessie", last.Codename)
	assert.Equal(t, "http://debian.example.com/debian", last.Mirror)
}
