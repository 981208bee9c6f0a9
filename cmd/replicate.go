package cmd

import (
	"github.com/spf13/cobra"

	"treecopy/config"
	"treecopy/internal/replicator"
	"treecopy/internal/report"
	"treecopy/pkg/utils"
)

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copy a folder tree into staging, then relocate it into the destination",
	Long: `Replicate the source folder tree in two strictly sequential phases.

The command will:
- Create a copy of the source folder inside the staging parent folder
- Recursively recreate every subfolder and copy every file into it
- Recreate the staged folder structure inside the destination folder
- Move every staged file into its new folder

Files that fail to copy are reported and written to a CSV log; the run
continues with the remaining files. Folder listing or creation errors abort
the run.

With --relocate-policy record, files that fail to move are written to the
same CSV log with their error text prefixed by "relocate: ".`,
	Example: `  # Replicate using ids from config.yaml
  treecopy replicate

  # Override the ids on the command line
  treecopy replicate --source 1AbC --staging 1TmP --destination 0ShD

  # Record relocation failures in the CSV log as well
  treecopy replicate --relocate-policy record

  # Use the S3 backend and print a JSON summary
  treecopy replicate --backend s3 --source photos/ --staging tmp/ --destination archive/ --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, "replicate", false)
	},
}

func init() {
	addJobFlags(replicateCmd)
	replicateCmd.Flags().StringP("destination", "d", "", "Override final destination folder id from config")
	replicateCmd.Flags().String("relocate-policy", "", "How relocation failures are handled: log or record (default from config)")
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("staging", "", "Override staging parent folder id from config")
	cmd.Flags().String("report-dir", "", "Directory for the failed copies CSV (default from config, else current directory)")
	cmd.Flags().Bool("json", false, "Print the run summary as JSON after the narration")
}

// runJob runs the copy phase and, unless stageOnly, the relocate phase. The
// summary and the failure log are produced even when the run aborts.
func runJob(cmd *cobra.Command, name string, stageOnly bool) error {
	c := effectiveConfig(cmd)
	if staging, _ := cmd.Flags().GetString("staging"); staging != "" {
		c.TempParentFolderID = staging
	}
	if dir, _ := cmd.Flags().GetString("report-dir"); dir != "" {
		c.ReportDir = dir
	}
	if !stageOnly {
		if destination, _ := cmd.Flags().GetString("destination"); destination != "" {
			c.SharedDriveFolderID = destination
		}
		if policy, _ := cmd.Flags().GetString("relocate-policy"); policy != "" {
			c.RelocatePolicy = policy
		}
	}

	if err := validateJob(&c, stageOnly); err != nil {
		utils.PrintError(err, name)
		return err
	}
	policy, err := replicator.ParseRelocatePolicy(c.RelocatePolicy)
	if err != nil {
		utils.PrintError(err, name)
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	storage, err := newStorage(ctx, &c)
	if err != nil {
		utils.PrintError(err, name)
		return err
	}

	logger := newLogger(cmd)
	console := report.NewConsole(cmd.OutOrStdout(), logger)
	engine := replicator.New(storage, replicator.Options{
		MaxDepth:       c.MaxDepth,
		RelocatePolicy: policy,
		Narrator:       console,
	})

	job := replicator.Job{
		SourceID:        c.SourceFolderID,
		StagingParentID: c.TempParentFolderID,
		DestinationID:   c.SharedDriveFolderID,
	}
	logger.Debug("starting job", "command", name, "backend", c.Backend, "source", job.SourceID,
		"staging", job.StagingParentID, "destination", job.DestinationID)

	var run *replicator.Run
	var runErr error
	if stageOnly {
		run = replicator.NewRun(job)
		runErr = engine.Stage(ctx, run)
	} else {
		run, runErr = engine.Replicate(ctx, job)
	}

	summary := run.Summary()
	path, exportErr := report.Export(c.ReportDir, run.StartedAt, run.Outcome.Failures())
	summary.ReportPath = path
	console.RunFinished(summary)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := utils.WriteJSON(cmd.OutOrStdout(), summary); err != nil {
			logger.Error("failed to print summary", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	return exportErr
}

func validateJob(c *config.Config, stageOnly bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if stageOnly {
		return nil
	}
	return c.RequireDestination()
}
