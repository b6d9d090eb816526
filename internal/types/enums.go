package types

type Family string

const (
	FamilyUbuntu Family = "ubuntu"
	FamilyDebian Family = "debian"
)

type SyncState string

const (
	SyncStateBuilt     SyncState = "built"
	SyncStateRemoved   SyncState = "removed"
	SyncStateIncluded  SyncState = "included"
	SyncStatePublished SyncState = "published"
	SyncStateFailed    SyncState = "failed"
)

type RepositoryVerb string

const (
	RepositoryVerbRemove  RepositoryVerb = "remove"
	RepositoryVerbInclude RepositoryVerb = "include"
)

// ubuntuAliases and debianAliases map a codename to the distribution name
// written into a changelog header. Ubuntu codenames are their own alias;
// Debian codenames map to the suite names the archive publishes under.
// Repository addressing always uses the codename itself.
var ubuntuAliases = map[string]string{
	"precise": "precise",
	"trusty":  "trusty",
	"utopic":  "utopic",
	"vivid":   "vivid",
	"xenial":  "xenial",
}

var debianAliases = map[string]string{
	"squeeze": "oldstable",
	"wheezy":  "stable",
	"jessie":  "testing",
	"sid":     "unstable",
}

// FamilyOf returns the distribution family a codename belongs to.
func FamilyOf(codename string) (Family, bool) {
	if _, ok := ubuntuAliases[codename]; ok {
		return FamilyUbuntu, true
	}
	if _, ok := debianAliases[codename]; ok {
		return FamilyDebian, true
	}
	return "", false
}

// AliasOf returns the changelog-header alias for a codename.
func AliasOf(codename string) (string, bool) {
	if alias, ok := ubuntuAliases[codename]; ok {
		return alias, true
	}
	if alias, ok := debianAliases[codename]; ok {
		return alias, true
	}
	return "", false
}

// KnownCodename reports whether a codename belongs to either family.
func KnownCodename(codename string) bool {
	_, ok := FamilyOf(codename)
	return ok
}
