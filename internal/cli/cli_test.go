package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codedError(code errbuilder.ErrCode, msg string) error {
	return errbuilder.New().WithCode(code).WithMsg(msg)
}

func TestExitCodeForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", codedError(errbuilder.CodeInvalidArgument, "unknown distribution codename \"warty\""), 2},
		{"already exists", codedError(errbuilder.CodeAlreadyExists, "duplicate"), 2},
		{"sanity check", codedError(errbuilder.CodeFailedPrecondition, "build sanity check failed: x.deb has 3 entries, want at least 50"), 4},
		{"skipped inclusion", codedError(errbuilder.CodeFailedPrecondition, "remote skipped inclusion of x.deb on trusty/amd64"), 3},
		{"other precondition", codedError(errbuilder.CodeFailedPrecondition, "signature verification failed for x.changes"), 4},
		{"timeout", codedError(errbuilder.CodeDeadlineExceeded, "timed out waiting for ssh"), 4},
		{"permission", codedError(errbuilder.CodePermissionDenied, "denied"), 3},
		{"not found", codedError(errbuilder.CodeNotFound, "changelog has no entry for package x"), 5},
		{"internal", codedError(errbuilder.CodeInternal, "pdebuild exploded"), 5},
		{"plain error", errors.New("something else"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCodeForError(tc.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := codedError(errbuilder.CodeInternal, "pdebuild exploded")
	assert.Equal(t, "pdebuild exploded", errorMessage(err))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}

func TestSetupLoggingWarnsOnUnwritableLogFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "missing", "debmatrix.log")

	setupLoggingTo(&console, "info", logFile)

	require.Contains(t, console.String(), "log file could not be opened")
	assert.Contains(t, console.String(), logFile)
}

func TestSetupLoggingMirrorsToLogFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "debmatrix.log")

	setupLoggingTo(&console, "info", logFile)
	log.Info().Msg("matrix build starting")

	contents, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "matrix build starting")
	assert.Contains(t, console.String(), "matrix build starting")
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("packages", []string{"ossec-hids"})
	viper.Set("ubuntu_codenames", []string{"trusty", "xenial"})
	viper.Set("debian_codenames", []string{"jessie"})
	viper.Set("architectures", []string{"amd64"})
	viper.Set("work_root", "/tmp/work")
	viper.Set("signing.key_id", "ABCD1234")
	viper.Set("signing.passphrase", "hunter2")
	viper.Set("remote.host", "repo.example.com")
	viper.Set("remote.user", "publisher")
	viper.Set("interactive_timeout", "90s")

	cfg := loadConfig()
	assert.Equal(t, []string{"ossec-hids"}, cfg.Packages)
	assert.Equal(t, []string{"trusty", "xenial"}, cfg.UbuntuCodenames)
	assert.Equal(t, []string{"jessie"}, cfg.DebianCodenames)
	assert.Equal(t, "/tmp/work", cfg.WorkRoot)
	assert.True(t, cfg.Signing.Enabled())
	assert.Equal(t, "publisher@repo.example.com", cfg.Remote.Target())
	assert.Equal(t, 90*time.Second, cfg.InteractiveTimeout)
}

func TestConfigSummaryHidesPassphrase(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("packages", []string{"ossec-hids"})
	viper.Set("signing.key_id", "ABCD1234")
	viper.Set("signing.passphrase", "hunter2")

	var out bytes.Buffer
	printConfigSummary(&out)

	require.Contains(t, out.String(), "key ABCD1234")
	assert.NotContains(t, out.String(), "hunter2")
}

func TestConfigSummarySigningDisabled(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	printConfigSummary(&out)

	assert.Contains(t, out.String(), "signing:       disabled")
	assert.Contains(t, out.String(), "packages:      (none)")
}
