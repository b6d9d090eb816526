package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"debmatrix/internal/app"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Publish built artifacts to the remote repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := app.NewService(loadConfig())
			result, err := service.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("published %d cell(s)\n", result.Published)
			return nil
		},
	}
}
