package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/config"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/ledger"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/pipeline"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/watch"
)

// scriptFlags are shared by the commands that convert a script.
type scriptFlags struct {
	jsFile    string
	version   string
	author    string
	outputDir string
	order     string
}

func (f *scriptFlags) register(cmd *cobra.Command, needVersion bool) {
	cmd.Flags().StringVar(&f.jsFile, "js-file", "", "Path to the .js script")
	cmd.Flags().StringVar(&f.order, "order", "", "Changeset order: declaration or source (default from config)")
	_ = cmd.MarkFlagRequired("js-file")
	if !needVersion {
		return
	}
	cmd.Flags().StringVar(&f.version, "version", "", "Version token, e.g. 20240115_01")
	cmd.Flags().StringVar(&f.author, "author", "", "Changeset author (default from config)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Directory for the changelog (default: the script's directory)")
	_ = cmd.MarkFlagRequired("version")
}

// request resolves flags against the loaded config.
func (f *scriptFlags) request() (pipeline.Request, error) {
	req := pipeline.Request{
		ScriptPath: f.jsFile,
		Version:    f.version,
		Author:     f.author,
		OutputDir:  f.outputDir,
		Order:      script.Order(f.order),
	}
	if req.Author == "" {
		req.Author = cfg.Author
	}
	if req.OutputDir == "" {
		req.OutputDir = cfg.OutputDir
	}
	if req.Order == "" {
		req.Order = cfg.Order
	}
	if req.Order != script.OrderDeclaration && req.Order != script.OrderSource {
		return req, fmt.Errorf("invalid order %q: must be %s or %s", req.Order, script.OrderDeclaration, script.OrderSource)
	}
	return req, nil
}

var (
	genFlags    scriptFlags
	genDryRun   bool
	genWatch    bool
	genLedger   string
	genNoLedger bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Liquibase changelog from a script",
	Long: `Generate a Liquibase MongoDB changelog from a MongoDB shell script.

The changelog is written next to the script with an .xml extension unless
--output-dir is given. Changeset ids derive from --version: a token such as
20240115_01 yields 20240115_1, 20240115_1.1, 20240115_1.2, ...

When a ledger is configured (--ledger or ledger_dsn) every generation is
recorded there.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	genFlags.register(generateCmd, true)
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Print the changelog instead of writing it")
	generateCmd.Flags().BoolVarP(&genWatch, "watch", "w", false, "Regenerate whenever the script changes")
	generateCmd.Flags().StringVar(&genLedger, "ledger", "", "Ledger DSN (postgres://..., sqlite://path or path.db)")
	generateCmd.Flags().BoolVar(&genNoLedger, "no-ledger", false, "Do not record the generation")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := genFlags.request()
	if err != nil {
		return err
	}
	if req.Author == "" {
		return fmt.Errorf("author is required: pass --author or set author in the config")
	}
	req.DryRun = genDryRun

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store ledger.Store
	dsn := genLedger
	if dsn == "" {
		dsn = cfg.LedgerDSN
	}
	if dsn != "" && !genNoLedger && !genDryRun {
		store, err = openLedger(ctx, dsn)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	runner := pipeline.NewRunner(config.AppFs, logger, store)
	generate := func() error {
		return generateOnce(ctx, cmd, runner, req)
	}

	if !genWatch {
		return generate()
	}

	w, err := watch.NewWatcher(req.ScriptPath, generate, logger)
	if err != nil {
		return err
	}
	if err := generate(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), failure("❌ Error: %v", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", req.ScriptPath)
	return w.Run(ctx)
}

func generateOnce(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, req pipeline.Request) error {
	out := cmd.OutOrStdout()

	res, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}

	printWarnings(cmd.ErrOrStderr(), res.Warnings)

	if req.DryRun {
		fmt.Fprintln(out, res.XML)
		return nil
	}

	if n := res.Changelog.Failures(); n > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), caution("⚠ %d changeset(s) carry a diagnostic comment instead of a body", n))
	}
	fmt.Fprintln(out, success("✅ XML file generated: %s", res.OutputPath))
	logger.Info("Changelog generated",
		zap.String("script", req.ScriptPath),
		zap.String("output", res.OutputPath),
		zap.String("context", res.Script.Context),
		zap.Int("changesets", len(res.Changelog.ChangeSets)))
	return nil
}

func openLedger(ctx context.Context, dsn string) (ledger.Store, error) {
	store, err := ledger.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
