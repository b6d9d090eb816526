package adapters

import (
	"context"
	"regexp"

	"debmatrix/internal/ports"
	"debmatrix/internal/types"
)

var (
	passphrasePrompt = regexp.MustCompile(`(?i)enter passphrase`)
	signSuccess      = regexp.MustCompile(`Successfully signed`)
	signFailure      = regexp.MustCompile(`(?i)signing failed|bad passphrase`)
)

// DebsignAdapter re-signs a .changes file with debsign. The tool signs
// the .dsc and .changes in one invocation and prompts for the passphrase
// once per file; success is the tool's explicit confirmation message, a
// zero exit alone is not trusted.
type DebsignAdapter struct {
	Signing types.Signing
	Driver  InteractiveDriver
}

func NewDebsignAdapter(signing types.Signing, driver InteractiveDriver) DebsignAdapter {
	return DebsignAdapter{Signing: signing, Driver: driver}
}

func (a DebsignAdapter) ReSign(ctx context.Context, path string) error {
	_, err := a.Driver.Run(ctx, Exchange{
		Command: "debsign",
		Args:    []string{"-k" + a.Signing.KeyID, "--re-sign", path},
		Rules: []ExpectRule{
			{Pattern: passphrasePrompt, Response: a.Signing.Passphrase, Secret: true, Max: 2},
		},
		Failure: signFailure,
		Success: signSuccess,
	})
	return err
}

var _ ports.SignerPort = DebsignAdapter{}
