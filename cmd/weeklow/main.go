package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FundLowDay/internal/collector"
	"FundLowDay/internal/config"
	"FundLowDay/internal/notifier"
	"FundLowDay/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	code := flag.String("code", "", "fund code, e.g. 110011")
	startYear := flag.Int("start_year", 0, "first year to analyze")
	endYear := flag.Int("end_year", 0, "last year to analyze (inclusive)")
	requiredDays := flag.Int("required_days", 5, "records a week needs to be counted; 0 accepts any non-empty week")
	cronSpec := flag.String("cron", "", "rerun the report on this schedule (seconds first, e.g. \"0 0 18 * * 5\")")
	flag.Parse()

	// Load config
	path := *cfgPath
	if v := os.Getenv("CONFIG_PATH"); v != "" && !flagSet("config") {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	applyFlags(cfg, *code, *startYear, *endYear, *requiredDays, *cronSpec)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Kind == config.SourceAPI {
		fetcher = collector.NewEastmoneyAPIFetcher(cfg.DataSource.BaseURL, cfg.Proxy,
			cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	} else {
		fetcher = collector.NewEastmoneyFetcher(cfg.DataSource.BaseURL, cfg.Proxy,
			cfg.DataSource.Timeout, cfg.DataSource.RequestsPerSecond)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, collector.Options{
		RequiredDays:    cfg.Analysis.RequiredDays,
		SkipFailedWeeks: cfg.Analysis.SkipFailedWeeks,
	})
	job := scheduler.Job{Code: cfg.Fund.Code, StartYear: cfg.Fund.StartYear, EndYear: cfg.Fund.EndYear}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Schedule.Cron == "" {
		summary, err := col.Analyze(ctx, job.Code, job.StartYear, job.EndYear)
		if err != nil {
			cancel()
			log.Fatalf("[FATAL] analyze: %v", err)
		}
		fmt.Println(summary.Frequency)
		fmt.Println(notifier.FormatWeekCounts(summary))
		return
	}

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, col, sender, job)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Printf("[INFO] reporting %s %d-%d on %q. Press Ctrl+C to stop.", job.Code, job.StartYear, job.EndYear, cfg.Schedule.Cron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

// applyFlags lets explicitly set command-line flags win over file and environment values.
func applyFlags(cfg *config.Config, code string, startYear, endYear, requiredDays int, cronSpec string) {
	if flagSet("code") {
		cfg.Fund.Code = code
	}
	if flagSet("start_year") {
		cfg.Fund.StartYear = startYear
	}
	if flagSet("end_year") {
		cfg.Fund.EndYear = endYear
	}
	if flagSet("required_days") {
		cfg.Analysis.RequiredDays = requiredDays
	}
	if flagSet("cron") {
		cfg.Schedule.Cron = cronSpec
	}
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
