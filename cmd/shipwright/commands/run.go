package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/shipwright/internal/changeset"
	"git.home.luguber.info/inful/shipwright/internal/component"
	"git.home.luguber.info/inful/shipwright/internal/config"
	"git.home.luguber.info/inful/shipwright/internal/journal"
	"git.home.luguber.info/inful/shipwright/internal/lane"
	"git.home.luguber.info/inful/shipwright/internal/logfields"
	"git.home.luguber.info/inful/shipwright/internal/metrics"
	"git.home.luguber.info/inful/shipwright/internal/notify"
	"git.home.luguber.info/inful/shipwright/internal/orchestrate"
	"git.home.luguber.info/inful/shipwright/internal/retry"
	"git.home.luguber.info/inful/shipwright/internal/version"
)

// RunCmd implements the 'run' command: one orchestration per CI run.
type RunCmd struct {
	Repo    string `short:"r" help:"Path to the repository working copy" default:"."`
	Prev    string `help:"Previous commit ref (empty on the first run: everything is rebuilt)"`
	Current string `help:"Current commit ref" default:"HEAD"`
	Branch  string `short:"b" help:"Branch the run was triggered for (default: BRANCH_NAME env or repository HEAD)"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := executeRun(ctx, cfg, r.Repo, r.Prev, r.Current, resolveBranch(r.Branch, r.Repo))
	if err != nil {
		return err
	}
	if summary.OverallFailed() {
		return fmt.Errorf("%d of %d lanes failed", failedCount(summary), len(summary.Lanes))
	}
	return nil
}

// executeRun wires the resolver, classifier, version oracle and
// orchestrator together for one run and prints the report.
func executeRun(ctx context.Context, cfg *config.Config, repoPath, prevRef, currentRef, branch string) (orchestrate.RunSummary, error) {
	runID := uuid.NewString()
	slog.Info("Starting orchestration run",
		logfields.RunID(runID),
		logfields.Ref(currentRef),
		logfields.Branch(branch))

	cs := changeset.NewResolver(repoPath).Resolve(ctx, prevRef, currentRef)
	affected := component.Classify(cs, cfg.ComponentSpecs())
	slog.Info("Classified change set",
		logfields.RunID(runID),
		slog.String("changes", cs.String()),
		slog.Any("affected", affected.AffectedIDs()))

	oracle := &version.ExecOracle{
		Command: cfg.Versioning.OracleCommand,
		Args:    cfg.Versioning.OracleArgs,
		Dir:     repoPath,
		Timeout: cfg.OracleTimeout(),
	}
	resolver := version.NewResolver(oracle, branch, cfg.BuildCounter())
	resolver.LogVerboseInfo(ctx)
	v := resolver.Resolve(ctx)
	slog.Info("Resolved version",
		logfields.RunID(runID),
		logfields.Version(v.Value),
		logfields.Fallback(v.Fallback))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var promRecorder *metrics.PrometheusRecorder
	if cfg.Metrics != nil {
		promRecorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		recorder = promRecorder
	}

	options := []orchestrate.Option{
		orchestrate.WithRecorder(recorder),
		orchestrate.WithConcurrency(cfg.Concurrency),
	}
	if cfg.Journal != nil && cfg.Journal.Enabled {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o750); mkErr != nil {
			slog.Warn("Cannot create journal directory, journaling disabled", logfields.Error(mkErr))
		} else if j, jErr := journal.Open(cfg.Journal.Path); jErr != nil {
			slog.Warn("Cannot open run journal, journaling disabled", logfields.Error(jErr))
		} else {
			defer j.Close()
			options = append(options, orchestrate.WithEventSink(j))
		}
	}

	executor := lane.NewExecutor(&lane.ExecRunner{Dir: repoPath}, recorder)
	summary := orchestrate.New(executor, options...).Run(ctx, runID, affected, v, cfg.LaneSpecs())

	report := notify.Summarizer{Hints: cfg.VerifyHints()}.Summarize(summary)
	fmt.Print(report)

	if cfg.Notify != nil {
		publishSummary(ctx, cfg.Notify, summary, report)
	}
	if promRecorder != nil {
		pushErr := retry.Do(ctx, retry.DefaultPolicy(), func() error {
			return promRecorder.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job)
		})
		if pushErr != nil {
			slog.Warn("Failed to push metrics", logfields.Error(pushErr))
		}
	}
	return summary, nil
}

// publishSummary is best-effort: reporting never fails the run.
func publishSummary(ctx context.Context, cfg *config.NotifyConfig, summary orchestrate.RunSummary, report string) {
	publisher, err := notify.NewPublisher(cfg.NATSURL, cfg.Subject)
	if err != nil {
		slog.Warn("Cannot connect notification publisher", logfields.Error(err))
		return
	}
	defer publisher.Close()
	err = retry.Do(ctx, retry.DefaultPolicy(), func() error {
		return publisher.Publish(summary, report)
	})
	if err != nil {
		slog.Warn("Failed to publish run summary", logfields.Error(err))
	}
}

func failedCount(summary orchestrate.RunSummary) int {
	n := 0
	for _, r := range summary.Lanes {
		if r.Status == lane.StatusFailed {
			n++
		}
	}
	return n
}
