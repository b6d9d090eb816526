package adapters

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"debmatrix/internal/ports"
)

// OpenPGPVerifyAdapter checks the clearsign signatures debsign leaves on
// .dsc and .changes files, independently of the signing tool's own
// output, against an armored public keyring on disk.
type OpenPGPVerifyAdapter struct {
	KeyringPath string
}

func NewOpenPGPVerifyAdapter(keyringPath string) OpenPGPVerifyAdapter {
	return OpenPGPVerifyAdapter{KeyringPath: keyringPath}
}

func (a OpenPGPVerifyAdapter) VerifySignature(path string) error {
	keyring, err := os.ReadFile(a.KeyringPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("keyring not found at %s", a.KeyringPath)).
			WithCause(err)
	}
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyring))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read armored keyring").
			WithCause(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("signed file not found at %s", path)).
			WithCause(err)
	}
	block, _ := clearsign.Decode(content)
	if block == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("%s is not clearsigned", path))
	}
	_, err = openpgp.CheckDetachedSignature(entities, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("signature verification failed for %s", path)).
			WithCause(err)
	}
	return nil
}

var _ ports.VerifierPort = OpenPGPVerifyAdapter{}
