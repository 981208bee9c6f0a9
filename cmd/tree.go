package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"treecopy/internal/replicator"
	"treecopy/pkg/utils"
)

var treeCmd = &cobra.Command{
	Use:   "tree [folder-id]",
	Short: "Count the folders and files below a folder",
	Long: `Walk a folder tree without changing anything and print how many folders
and files a replication would touch, as JSON.

The folder id defaults to the configured source folder.`,
	Example: `  # Inspect the configured source folder
  treecopy tree

  # Inspect another folder on the S3 backend
  treecopy tree photos/ --backend s3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	c := effectiveConfig(cmd)
	if len(args) == 1 {
		c.SourceFolderID = args[0]
	}
	if c.SourceFolderID == "" {
		err := errSourceRequired
		utils.PrintError(err, "tree")
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	storage, err := newStorage(ctx, &c)
	if err != nil {
		utils.PrintError(err, "tree")
		return err
	}

	if isVerbose(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Inspecting folder: %s\n", c.SourceFolderID)
	}

	info, err := replicator.Inspect(ctx, storage, c.SourceFolderID, c.MaxDepth, time.Now())
	if err != nil {
		utils.PrintError(err, "tree")
		return err
	}

	return utils.WriteJSON(cmd.OutOrStdout(), info)
}
