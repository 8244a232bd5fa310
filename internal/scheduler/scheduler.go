package scheduler

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"os"

	"FundLowDay/internal/collector"
	"FundLowDay/internal/config"
	"FundLowDay/internal/model"
	"FundLowDay/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Sender delivers a formatted report.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Job identifies the fund and year range a report covers.
type Job struct {
	Code      string
	StartYear int
	EndYear   int
}

// Scheduler reruns the weekday report on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Sender    Sender // nil prints reports to Out instead
	Out       io.Writer
	Job       Job
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, job Job) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithParser(cron.NewParser(config.CronFields)),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Collector: col,
		Sender:    sender,
		Out:       os.Stdout,
		Job:       job,
		Ctx:       ctx,
	}
}

// Register adds the report task under the given cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow builds the report immediately and returns it.
func (s *Scheduler) RunNow(ctx context.Context) (*model.RunSummary, string, error) {
	summary, err := s.Collector.Analyze(ctx, s.Job.Code, s.Job.StartYear, s.Job.EndYear)
	if err != nil {
		return nil, "", err
	}
	return summary, notifier.FormatFrequencyReport(summary), nil
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	summary, report, err := s.RunNow(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] report task: %v", err)
		s.trySend(s.failureText(err))
		return
	}
	log.Printf("[INFO] report for %s: %s", s.Job.Code, notifier.FormatWeekCounts(summary))
	if s.Sender == nil {
		fmt.Fprintln(s.Out, summary.Frequency)
		fmt.Fprintln(s.Out, notifier.FormatWeekCounts(summary))
		return
	}
	s.trySend(report)
}

// failureText is sent with HTML parse mode, so the error text is escaped.
func (s *Scheduler) failureText(err error) string {
	return fmt.Sprintf("❌ Report for %s failed: %s", html.EscapeString(s.Job.Code), html.EscapeString(err.Error()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/report":
		_, report, err := s.RunNow(ctx)
		if err != nil {
			log.Printf("[ERROR] /report: %v", err)
			return s.failureText(err)
		}
		return report
	default:
		return fmt.Sprintf("Commands:\n• /report - lowest NAV weekday for %s %d-%d", s.Job.Code, s.Job.StartYear, s.Job.EndYear)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.Send(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
