package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newFoldersCmd creates the 'folders' command group.
func newFoldersCmd() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Folder operations (list)",
		Long:  `Commands for listing the folders of the browse service.`,
	}

	foldersCmd.AddCommand(newFoldersListCmd())

	return foldersCmd
}

// newFoldersListCmd creates the 'folders list' command.
func newFoldersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders",
		Long: `List the folders visible in the current access mode.

Example:
  # Public folders
  rescale-browse folders list

  # Private folders (requires a token)
  rescale-browse folders list --private --token-file ~/.config/rescale-browse/token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			s, err := newSession(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.loadFolders(GetContext())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(view.Folders) == 0 {
				fmt.Fprintf(out, "No %s folders\n", view.Mode)
				return nil
			}
			printFolders(out, view.Folders)
			fmt.Fprintf(out, "\n%s folders: %d\n", modeLabel(view.Mode), len(view.Folders))
			return nil
		},
	}

	return cmd
}
