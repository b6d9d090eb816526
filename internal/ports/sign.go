package ports

import "context"

type SignerPort interface {
	// ReSign drives the external signing tool against the .changes file
	// at path, answering its passphrase prompts. Success requires the
	// tool's explicit confirmation, not just a zero exit.
	ReSign(ctx context.Context, path string) error
}

type VerifierPort interface {
	// VerifySignature checks the clearsign signature of the file at path
	// against the configured keyring.
	VerifySignature(path string) error
}
