package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"debmatrix/internal/app"
)

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run the build matrix and sign the resulting artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := app.NewService(loadConfig())
			result, err := service.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("built %d cell(s), report at %s\n", len(result.Report.Cells), result.ReportPath)
			return nil
		},
	}
}
