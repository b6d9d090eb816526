package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"debmatrix/internal/types"
)

// loadConfig assembles the immutable pipeline configuration from viper.
// Credentials come from the environment or the config file; they are
// read here once and never from ambient state afterwards.
func loadConfig() types.Config {
	return types.Config{
		Packages:        viper.GetStringSlice("packages"),
		UbuntuCodenames: viper.GetStringSlice("ubuntu_codenames"),
		DebianCodenames: viper.GetStringSlice("debian_codenames"),
		Architectures:   viper.GetStringSlice("architectures"),

		WorkRoot:      viper.GetString("work_root"),
		ResultsRoot:   viper.GetString("results_root"),
		BaseImageRoot: viper.GetString("base_image_root"),
		AptCacheRoot:  viper.GetString("apt_cache_root"),
		LogFile:       viper.GetString("log_file"),

		DownloadBaseURL: viper.GetString("download_base_url"),
		UbuntuMirror:    viper.GetString("ubuntu_mirror"),
		DebianMirror:    viper.GetString("debian_mirror"),

		Signing: types.Signing{
			KeyID:       viper.GetString("signing.key_id"),
			Passphrase:  viper.GetString("signing.passphrase"),
			KeyringPath: viper.GetString("signing.keyring"),
		},
		Remote: types.Remote{
			Host:       viper.GetString("remote.host"),
			User:       viper.GetString("remote.user"),
			UbuntuRoot: viper.GetString("remote.ubuntu_root"),
			DebianRoot: viper.GetString("remote.debian_root"),
			Passphrase: viper.GetString("remote.passphrase"),
		},

		InteractiveTimeout: viper.GetDuration("interactive_timeout"),
	}
}

func printConfigSummary(out io.Writer) {
	cfg := loadConfig()
	fmt.Fprintf(out, "packages:      %s\n", joinOrNone(cfg.Packages))
	fmt.Fprintf(out, "ubuntu:        %s\n", joinOrNone(cfg.UbuntuCodenames))
	fmt.Fprintf(out, "debian:        %s\n", joinOrNone(cfg.DebianCodenames))
	fmt.Fprintf(out, "architectures: %s\n", joinOrNone(cfg.Architectures))
	fmt.Fprintf(out, "signing:       %s\n", signingSummary(cfg.Signing))
	fmt.Fprintf(out, "remote:        %s\n", remoteSummary(cfg.Remote))
	fmt.Fprintln(out)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, " ")
}

func signingSummary(signing types.Signing) string {
	if !signing.Enabled() {
		return "disabled"
	}
	// Never print the passphrase.
	return "key " + signing.KeyID
}

func remoteSummary(remote types.Remote) string {
	if remote.Host == "" {
		return "(none)"
	}
	return remote.Target()
}
