package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"debmatrix/internal/app"
)

func newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <version>",
		Short: "Stage source trees for a published upstream version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewService(loadConfig())
			result, err := service.StageRelease(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("staged %d package(s) for version %s\n", result.Staged, args[0])
			return nil
		},
	}
}

func newGitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "git <path>",
		Short: "Stage source trees from a local source-control checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewService(loadConfig())
			result, err := service.StageCheckout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("staged %d package(s) from %s\n", result.Staged, args[0])
			return nil
		},
	}
}
