package types

import "time"

// Config is the immutable configuration value shared by every pipeline
// component. It is built once at startup by the CLI layer and passed
// explicitly; nothing reads ambient process state after that.
type Config struct {
	Packages        []string
	UbuntuCodenames []string
	DebianCodenames []string
	Architectures   []string

	WorkRoot      string
	ResultsRoot   string
	BaseImageRoot string
	AptCacheRoot  string
	LogFile       string

	DownloadBaseURL string
	UbuntuMirror    string
	DebianMirror    string

	Signing Signing
	Remote  Remote

	// InteractiveTimeout bounds every prompt/response exchange with an
	// external interactive process.
	InteractiveTimeout time.Duration
}

// Signing holds the credentials driving debsign and signature
// verification. Both KeyID and Passphrase must be present for signing to
// run; an empty pair means local unsigned builds.
type Signing struct {
	KeyID       string
	Passphrase  string
	KeyringPath string
}

func (s Signing) Enabled() bool {
	return s.KeyID != "" && s.Passphrase != ""
}

// Remote describes the repository host reached over ssh. UbuntuRoot and
// DebianRoot are the reprepro base directories for the two families.
type Remote struct {
	Host       string
	User       string
	UbuntuRoot string
	DebianRoot string
	Passphrase string
}

func (r Remote) RootFor(family Family) string {
	if family == FamilyDebian {
		return r.DebianRoot
	}
	return r.UbuntuRoot
}

func (r Remote) Target() string {
	if r.User == "" {
		return r.Host
	}
	return r.User + "@" + r.Host
}

// BuildCodenames returns the full configured distribution list, Ubuntu
// first, order preserved within each family. This is the list written
// into rewritten changelog headers and iterated by the build matrix.
func (c Config) BuildCodenames() []string {
	out := make([]string, 0, len(c.UbuntuCodenames)+len(c.DebianCodenames))
	out = append(out, c.UbuntuCodenames...)
	out = append(out, c.DebianCodenames...)
	return out
}

func (c Config) MirrorFor(family Family) string {
	if family == FamilyDebian {
		return c.DebianMirror
	}
	return c.UbuntuMirror
}
