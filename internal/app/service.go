// Package app wires the pipeline stages together: environment
// provisioning, source staging, the build matrix with signing, and
// repository synchronization. The service never terminates the process;
// every failure is returned up the call chain and the CLI layer decides
// to abort.
package app

import (
	"time"

	"debmatrix/internal/adapters"
	"debmatrix/internal/ports"
	"debmatrix/internal/types"
)

type Service struct {
	Config types.Config

	Changelogs ports.ChangelogPort
	Builder    ports.BuilderPort
	Inspector  ports.DebInspectorPort
	Signer     ports.SignerPort
	Verifier   ports.VerifierPort
	Repo       ports.RepoSyncPort
	Workspace  ports.WorkspacePort
	Stager     ports.SourceStagePort
	Clock      func() time.Time
}

func NewService(cfg types.Config) Service {
	driver := adapters.NewInteractiveDriver(cfg.InteractiveTimeout)
	return Service{
		Config:     cfg,
		Changelogs: adapters.NewChangelogFileAdapter(),
		Builder:    adapters.NewPbuilderAdapter(),
		Inspector:  adapters.NewDebInspectAdapter(),
		Signer:     adapters.NewDebsignAdapter(cfg.Signing, driver),
		Verifier:   adapters.NewOpenPGPVerifyAdapter(cfg.Signing.KeyringPath),
		Repo:       adapters.NewRepoSyncSSHAdapter(cfg.Remote, driver),
		Workspace:  adapters.NewWorkspaceAdapter(cfg.WorkRoot, cfg.ResultsRoot),
		Stager:     adapters.NewSourceStageAdapter(cfg),
		Clock:      time.Now,
	}
}
