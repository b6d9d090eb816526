package app

import "debmatrix/internal/types"

type BuildResult struct {
	Report     types.BuildReport
	ReportPath string
}

type SyncResult struct {
	Published int
}

type StageResult struct {
	Staged int
}
