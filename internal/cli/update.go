package cli

import (
	"github.com/spf13/cobra"

	"debmatrix/internal/app"
)

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Provision or refresh the per-(distribution, architecture) build environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := app.NewService(loadConfig())
			return service.Update(cmd.Context())
		},
	}
}
