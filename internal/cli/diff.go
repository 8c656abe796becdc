package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/changelog"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/config"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/diff"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/output"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/pipeline"
)

var (
	diffFlags   scriptFlags
	diffAgainst string
	diffCheck   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare a regenerated changelog with the one on disk",
	Long: `Regenerate the changelog for a script in memory and compare it with an
existing changelog, by default the one generate would overwrite.

Changesets that keep their id but change content cannot be re-applied by
Liquibase once deployed. With --check the command fails when any exist.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	diffFlags.register(diffCmd, true)
	diffCmd.Flags().StringVar(&diffAgainst, "against", "", "Existing changelog to compare with (default: the generate output path)")
	diffCmd.Flags().BoolVar(&diffCheck, "check", false, "Exit non-zero when existing changesets would be rewritten")
}

func runDiff(cmd *cobra.Command, args []string) error {
	req, err := diffFlags.request()
	if err != nil {
		return err
	}
	if req.Author == "" {
		return fmt.Errorf("author is required: pass --author or set author in the config")
	}

	res, err := pipeline.NewRunner(config.AppFs, logger, nil).Build(req)
	if err != nil {
		return err
	}
	generated, err := changelog.ParseXML([]byte(res.XML))
	if err != nil {
		return err
	}

	path := diffAgainst
	if path == "" {
		path = res.OutputPath
	}
	existing := &changelog.Document{}
	content, ok, err := output.NewWriter(config.AppFs).Read(path)
	if err != nil {
		return err
	}
	if ok {
		if existing, err = changelog.ParseXML(content); err != nil {
			return err
		}
	}

	changes := diff.NewDiffer(existing, generated).Compare()

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		err = diff.WriteJSON(out, changes)
	case "yaml":
		err = diff.WriteYAML(out, changes)
	case "table":
		err = diff.WriteTable(out, changes)
	case "text":
		err = diff.WriteText(out, changes)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
	if err != nil {
		return err
	}

	if diffCheck && changes.HasRewrites() {
		return fmt.Errorf("%d existing changeset(s) in %s would be rewritten", len(changes.ModifiedChangeSets), path)
	}
	return nil
}
