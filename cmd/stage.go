package cmd

import (
	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Copy a folder tree into the staging folder only",
	Long: `Run only the copy phase: create a copy of the source folder inside the
staging parent folder and copy every file into the mirrored structure.

Nothing is relocated. Failed copies are reported the same way as for
replicate.`,
	Example: `  # Stage the configured source folder
  treecopy stage

  # Stage a different folder into a different staging parent
  treecopy stage --source 1AbC --staging 1TmP --report-dir ./reports`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, "stage", true)
	},
}

func init() {
	addJobFlags(stageCmd)
}
