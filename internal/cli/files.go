package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/state"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (list, all)",
		Long:  `Commands for listing files in one folder or across all folders.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesAllCmd())

	return filesCmd
}

// projectionFlags are the filter and sort flags shared by file listings.
type projectionFlags struct {
	filter string
	sort   string
	desc   bool
}

func (p *projectionFlags) register(cmd *cobra.Command, withFilter bool) {
	if withFilter {
		cmd.Flags().StringVar(&p.filter, "filter", state.FilterAll, "Only show files of this type (all, document, image, video, audio, or any type string)")
	}
	cmd.Flags().StringVar(&p.sort, "sort", "none", "Sort key: none, name, type, created, updated")
	cmd.Flags().BoolVar(&p.desc, "desc", false, "Sort in descending order")
}

// settings parses the flags into projection settings.
func (p *projectionFlags) settings() (state.ProjectionSettings, error) {
	settings := state.DefaultProjection()

	key, err := state.ParseSortKey(p.sort)
	if err != nil {
		return settings, err
	}
	settings.SortKey = key
	if p.desc {
		settings.Direction = state.Descending
	}
	if p.filter != "" {
		settings.FilterType = p.filter
	}
	if settings.FilterType != state.FilterAll && !models.IsKnownFileType(settings.FilterType) {
		GetLogger().Warn().Str("type", settings.FilterType).Msg("Filtering by a type outside the known set")
	}
	return settings, nil
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var flags projectionFlags

	cmd := &cobra.Command{
		Use:   "list <folder-id>",
		Short: "List files in a folder",
		Long: `List the files inside one folder, optionally filtered by type and sorted.

Example:
  rescale-browse files list f1
  rescale-browse files list f1 --filter image --sort updated --desc
  rescale-browse files list p7 --private`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			folderID := args[0]

			projection, err := flags.settings()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			s, err := newSession(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := applyProjection(s.browser, projection); err != nil {
				return err
			}

			ctx := GetContext()
			if _, err := s.loadFolders(ctx); err != nil {
				return err
			}
			view, err := s.loadFiles(ctx, folderID)
			if err != nil {
				return err
			}

			logger.Debug().
				Str("folder_id", folderID).
				Int("total", len(view.FileLoadState.Value)).
				Int("displayed", len(view.DisplayedFiles)).
				Msg("Files listed")

			out := cmd.OutOrStdout()
			if len(view.DisplayedFiles) == 0 {
				fmt.Fprintln(out, "No files")
				return nil
			}
			printFiles(out, view.DisplayedFiles)
			summary := fmt.Sprintf("\nFiles: %d of %d", len(view.DisplayedFiles), len(view.FileLoadState.Value))
			if desc := describeProjection(view.Projection); desc != "" {
				summary += " (" + desc + ")"
			}
			fmt.Fprintln(out, summary)
			return nil
		},
	}

	flags.register(cmd, true)

	return cmd
}

// applyProjection pushes projection settings through the browser's intents.
func applyProjection(b *state.Browser, p state.ProjectionSettings) error {
	if err := b.Dispatch(state.SetFilterIntent{Type: p.FilterType}); err != nil {
		return err
	}
	if err := b.Dispatch(state.SetSortKeyIntent{Key: p.SortKey}); err != nil {
		return err
	}
	return b.Dispatch(state.SetSortDirectionIntent{Direction: p.Direction})
}

// newFilesAllCmd creates the 'files all' command.
func newFilesAllCmd() *cobra.Command {
	var flags projectionFlags
	var fileType string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "List files across all folders",
		Long: `List every file visible in the current access mode, across folders.
The type filter is applied by the service.

Example:
  rescale-browse files all
  rescale-browse files all --type video --sort name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			projection, err := flags.settings()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			mode, err := cfg.Mode()
			if err != nil {
				return err
			}
			client, err := getAPIClient(cfg, logger)
			if err != nil {
				return err
			}

			if fileType != "" && !models.IsKnownFileType(fileType) {
				logger.Warn().Str("type", fileType).Msg("Querying a type outside the known set")
			}

			spin := newSpinner()
			spin.Start(fmt.Sprintf("Loading %s files", mode))
			files, err := client.ListFiles(GetContext(), mode, fileType)
			spin.Finish()
			if err != nil {
				return fmt.Errorf("failed to list %s files: %w", mode, err)
			}

			files = state.Project(files, projection)

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files")
				return nil
			}
			printFiles(out, files)
			fmt.Fprintf(out, "\n%s files: %d\n", modeLabel(mode), len(files))
			return nil
		},
	}

	cmd.Flags().StringVar(&fileType, "type", "", "Only list files of this type (document, image, video, audio)")
	flags.register(cmd, false)

	return cmd
}
