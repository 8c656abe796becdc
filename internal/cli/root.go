// Package cli implements the command-line interface for js2liquibase.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/config"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/logging"
)

var (
	// Global flags
	outputFormat string
	verbose      bool
	configFile   string

	v      = viper.New()
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "js2liquibase",
	Short: "Convert MongoDB shell scripts into Liquibase changelogs",
	Long: `js2liquibase reads a MongoDB shell script, recognizes the database
operations it contains and writes a Liquibase MongoDB changelog with one
changeset per operation.

Recognized statements:
  - db.createCollection / db.<coll>.drop / db.dropCollection
  - createIndex / dropIndex
  - insertOne / insertMany
  - updateOne / updateMany / replaceOne
  - deleteOne / deleteMany

Collections may be referenced as db.orders or db.getCollection("orders").
The changeset context comes from a "// context: <name>" comment in the first
10 lines of the script (default "liquibase_test").

Examples:
  # Generate db/20240115/users.xml next to the script
  js2liquibase generate --js-file db/20240115/users.js --version 20240115_01 --author jane

  # Show what a script contains
  js2liquibase inspect --js-file users.js -o table

  # Check that regenerating would not rewrite existing changesets
  js2liquibase diff --js-file users.js --version 20240115_01 --author jane --check`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(verbose || cfg.Verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml, table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default .js2liquibase.yaml in ., $HOME or $HOME/.config/js2liquibase)")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Failures are reported on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, failure("❌ Error: %v", err))
	}
	return err
}
