package adapters

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/ports"
	"debmatrix/internal/types"
)

var (
	remotePrompt     = regexp.MustCompile(`(?i)passphrase|password`)
	notFoundResponse = regexp.MustCompile(`(?i)not found|not installed|unable to find`)
	skippedResponse  = regexp.MustCompile(`(?i)skipp(ed|ing)`)
)

// RepoSyncSSHAdapter drives reprepro on the repository host over ssh.
// Removal of an unpublished package is permissively idempotent; a
// skipped inclusion is fatal, because a freshly built package silently
// not being published must never pass as success.
type RepoSyncSSHAdapter struct {
	Remote types.Remote
	Driver InteractiveDriver
}

func NewRepoSyncSSHAdapter(remote types.Remote, driver InteractiveDriver) RepoSyncSSHAdapter {
	return RepoSyncSSHAdapter{Remote: remote, Driver: driver}
}

func (a RepoSyncSSHAdapter) Remove(ctx context.Context, action types.RepositoryAction) error {
	command := fmt.Sprintf("reprepro -b %s -A %s remove %s %s",
		action.RepoRoot, action.Arch, action.Codename, action.Target)
	transcript, err := a.Driver.Run(ctx, Exchange{
		Command: "ssh",
		Args:    []string{a.Remote.Target(), command},
		Rules: []ExpectRule{
			{Pattern: remotePrompt, Response: a.Remote.Passphrase, Secret: true, Max: 2},
		},
	})
	if err != nil {
		if notFoundResponse.MatchString(transcript) {
			// The package has simply never been published under this
			// codename; there is nothing to retire.
			return nil
		}
		if errbuilder.CodeOf(err) == errbuilder.CodeDeadlineExceeded {
			return err
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("remote remove failed for %s on %s/%s", action.Target, action.Codename, action.Arch)).
			WithCause(err)
	}
	return nil
}

func (a RepoSyncSSHAdapter) Include(ctx context.Context, action types.RepositoryAction) error {
	incoming := path.Join(action.RepoRoot, "incoming")
	remoteArtifact := path.Join(incoming, filepath.Base(action.Target))

	if err := a.upload(ctx, action.Target, incoming); err != nil {
		return err
	}

	command := fmt.Sprintf("reprepro -b %s includedeb %s %s",
		action.RepoRoot, action.Codename, remoteArtifact)
	transcript, err := a.Driver.Run(ctx, Exchange{
		Command: "ssh",
		Args:    []string{a.Remote.Target(), command},
		Rules: []ExpectRule{
			{Pattern: remotePrompt, Response: a.Remote.Passphrase, Secret: true, Max: 2},
		},
	})
	if skippedResponse.MatchString(transcript) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("remote skipped inclusion of %s on %s/%s", filepath.Base(action.Target), action.Codename, action.Arch))
	}
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeDeadlineExceeded {
			return err
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("remote include failed for %s on %s/%s", filepath.Base(action.Target), action.Codename, action.Arch)).
			WithCause(err)
	}
	return nil
}

func (a RepoSyncSSHAdapter) upload(ctx context.Context, localPath string, remoteDir string) error {
	destination := fmt.Sprintf("%s:%s/", a.Remote.Target(), strings.TrimSuffix(remoteDir, "/"))
	_, err := a.Driver.Run(ctx, Exchange{
		Command: "scp",
		Args:    []string{localPath, destination},
		Rules: []ExpectRule{
			{Pattern: remotePrompt, Response: a.Remote.Passphrase, Secret: true, Max: 2},
		},
	})
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeDeadlineExceeded {
			return err
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("upload failed for %s", filepath.Base(localPath))).
			WithCause(err)
	}
	return nil
}

var _ ports.RepoSyncPort = RepoSyncSSHAdapter{}
