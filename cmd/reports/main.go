// Command reports runs the monthly marketing report pipeline: it sweeps a
// mailbox for vendor PDF reports, extracts their KPIs, matches each report to
// a roster client, renders a personalized email, and stages it for human
// review. Approved emails are sent in a separate step.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/craig-dws/Email-Reports/internal/domain/approval"
	"github.com/craig-dws/Email-Reports/internal/domain/archive"
	"github.com/craig-dws/Email-Reports/pkg/config"
	"github.com/craig-dws/Email-Reports/pkg/cron"
)

const usage = `Usage: reports <command> [arguments]

Commands:
  run                 sweep the inbox and stage drafts for review
  send                deliver every approved draft
  drafts              show the review queue
  approve <id> [note] mark a draft approved
  reject <id> [note]  mark a draft as needing revision
  export              write the review queue to an Excel workbook
  search <query>      search the report archive
  validate            check the client database for problems
`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.Any("error", err))
		os.Exit(1)
	}

	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("initialization failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, deps, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, deps *Dependencies, command string, args []string) error {
	switch command {
	case "run":
		return runCommand(ctx, deps, args)
	case "send":
		return sendCommand(ctx, deps)
	case "drafts":
		return draftsCommand(deps)
	case "approve":
		return statusCommand(deps, approval.StatusApproved, args)
	case "reject":
		return statusCommand(deps, approval.StatusNeedsRevision, args)
	case "export":
		return exportCommand(deps)
	case "search":
		return searchCommand(deps, args)
	case "validate":
		return validateCommand(deps)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runCommand(ctx context.Context, deps *Dependencies, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	schedule := fs.String("schedule", deps.Config.Schedule.Spec,
		"cron expression; when set, keep running on this schedule instead of exiting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if deps.Config.Observability.MetricsEnabled {
		deps.Metrics.Serve(deps.Config.Observability.MetricsPort, deps.Logger)
	}

	if *schedule == "" {
		summary, err := deps.Pipeline.Run(ctx)
		if err != nil {
			return err
		}
		printSummary(summary.Processed, summary.Matched, summary.Drafted, summary.Unmatched, summary.Failures)
		return nil
	}

	scheduler := cron.NewScheduler(deps.Pipeline, deps.Logger)
	if err := scheduler.Start(*schedule); err != nil {
		return fmt.Errorf("start schedule %q: %w", *schedule, err)
	}
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func printSummary(processed, matched, drafted int, unmatched, failures []string) {
	fmt.Printf("Processed %d report(s): %d matched, %d drafted for review.\n", processed, matched, drafted)
	for _, name := range unmatched {
		fmt.Printf("  unmatched (left in inbox): %s\n", name)
	}
	for _, f := range failures {
		fmt.Printf("  failed: %s\n", f)
	}
	if drafted > 0 {
		fmt.Printf("Review the queue with 'reports drafts', then 'reports approve <id>'.\n")
	}
}

func sendCommand(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Pipeline.SendApproved(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Sent %d email(s), %d failed.\n", result.Sent, result.Failed)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
	return nil
}

func draftsCommand(deps *Dependencies) error {
	entries, err := deps.Tracker.All()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Review queue is empty.")
		return nil
	}

	summary, err := deps.Tracker.Summarize()
	if err != nil {
		return err
	}
	fmt.Printf("%d draft(s): %d pending, %d approved, %d needing revision\n\n",
		summary.Total, summary.Pending, summary.Approved, summary.NeedsRevision)

	for _, e := range entries {
		fmt.Printf("%s  [%s]  %s <%s>\n    %s\n", e.ID, e.Status, e.ClientName, e.Email, e.Subject)
		if e.ExtractionErrors != "" {
			fmt.Printf("    extraction: %s\n", e.ExtractionErrors)
		}
		if e.Notes != "" {
			fmt.Printf("    notes: %s\n", e.Notes)
		}
	}
	return nil
}

func statusCommand(deps *Dependencies, status approval.Status, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("draft id required")
	}
	id := args[0]
	notes := strings.Join(args[1:], " ")
	if err := deps.Tracker.UpdateStatus(id, status, notes); err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", id, status)
	return nil
}

func exportCommand(deps *Dependencies) error {
	entries, err := deps.Tracker.All()
	if err != nil {
		return err
	}
	path := deps.Config.Approval.WorkbookPath
	if err := approval.ExportWorkbook(entries, path, deps.Logger); err != nil {
		return err
	}
	fmt.Printf("Wrote %d draft(s) to %s\n", len(entries), path)
	return nil
}

func searchCommand(deps *Dependencies, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	month := fs.String("month", "", `exact month label, such as "September 2025"`)
	limit := fs.Int("limit", 10, "maximum hits")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *month != "" {
		results, err := deps.Archive.SearchMonth(*month, *limit)
		if err != nil {
			return err
		}
		printResults(results)
		return nil
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("search query required")
	}
	results, err := deps.Archive.Search(strings.Join(fs.Args(), " "), *limit)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func printResults(results []archive.Result) {
	if len(results) == 0 {
		fmt.Println("No archived reports matched.")
		return
	}
	for _, r := range results {
		doc := r.Document
		fmt.Printf("%s  %s  %s (%s)\n", doc.ReportMonth, doc.ReportType, doc.BusinessName, doc.SourceFile)
		if doc.Kpis != "" {
			fmt.Printf("    %s\n", doc.Kpis)
		}
		if doc.Errors != "" {
			fmt.Printf("    errors: %s\n", doc.Errors)
		}
	}
}

func validateCommand(deps *Dependencies) error {
	report := deps.Roster.Validate()
	fmt.Printf("%d client(s) loaded from %s\n", report.TotalClients, deps.Config.Roster.DatabasePath)
	for _, name := range report.DuplicateNames {
		fmt.Printf("  duplicate client name: %s\n", name)
	}
	for _, name := range report.MissingEmails {
		fmt.Printf("  missing contact email: %s\n", name)
	}
	for _, name := range report.MissingContactNames {
		fmt.Printf("  missing contact name: %s\n", name)
	}
	for _, name := range report.MissingSEOIntros {
		fmt.Printf("  missing SEO introduction: %s\n", name)
	}
	for _, name := range report.MissingAdsIntros {
		fmt.Printf("  missing Google Ads introduction: %s\n", name)
	}
	if report.HasCriticalIssues() {
		return fmt.Errorf("client database has critical issues")
	}
	fmt.Println("Client database looks good.")
	return nil
}
