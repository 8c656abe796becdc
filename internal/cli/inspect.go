package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/config"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/review"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

var (
	inspectFlags scriptFlags
	inspectInfo  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the operations recognized in a script",
	Long: `Inspect a script without generating a changelog. Prints the detected
context and every recognized operation, followed by review findings about
script content the changelog cannot carry (dropped options, destructive
operations, statements matched more than once).`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectFlags.register(inspectCmd, false)
	inspectCmd.Flags().BoolVar(&inspectInfo, "info", false, "Include informational findings")
}

func runInspect(cmd *cobra.Command, args []string) error {
	req, err := inspectFlags.request()
	if err != nil {
		return err
	}

	s, err := script.ParseFile(config.AppFs, req.ScriptPath, script.ExtractOptions{Order: req.Order})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		err = script.WriteJSON(out, s)
	case "yaml":
		err = script.WriteYAML(out, s)
	case "table":
		err = script.WriteTable(out, s)
	case "text":
		err = script.WriteText(out, s)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
	if err != nil {
		return err
	}

	// Findings go to stderr in every format.
	printWarnings(cmd.ErrOrStderr(), review.NewReviewer(inspectInfo).Review(s.Operations))
	return nil
}
