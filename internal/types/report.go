package types

import "time"

// BuildReport is the YAML summary written at the end of a successful
// build run, one record per matrix cell.
type BuildReport struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	Cells       []CellReport `yaml:"cells"`
}

type CellReport struct {
	Package   string   `yaml:"package"`
	Codename  string   `yaml:"codename"`
	Arch      string   `yaml:"arch"`
	Version   string   `yaml:"version"`
	Artifacts []string `yaml:"artifacts"`
	Signed    bool     `yaml:"signed"`
}
