package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"newsbrief/app/api"
	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/engine"
	"newsbrief/app/export"
	"newsbrief/app/feed"
	"newsbrief/app/filter"
	"newsbrief/app/notify"
	"newsbrief/app/pipeline"
	"newsbrief/app/scheduler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was requested and printed.
		return nil
	}

	setupLogger(appCfg.Debug)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Migrations applied", "version", version, "dirty", dirty)

	repo := database.NewItemRepository(db)
	ctx := context.Background()

	switch appCfg.Command {
	case "scan":
		return runScan(ctx, appCfg, repo)
	case "process":
		return runProcess(ctx, appCfg, repo)
	case "digest":
		return runDigest(ctx, appCfg, repo)
	case "list":
		return runList(appCfg, repo)
	case "mark-all-read":
		return runMarkAllRead(appCfg, repo)
	case "verify":
		return runVerify(ctx, appCfg, repo)
	case "export":
		return runExport(appCfg, repo)
	case "cleanup":
		return runCleanup(appCfg, repo)
	case "serve":
		return runServe(ctx, appCfg, repo)
	case "":
		return fmt.Errorf("no command given (scan, process, digest, list, mark-all-read, verify, export, cleanup, serve)")
	default:
		return fmt.Errorf("unknown command %q", appCfg.Command)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func buildScanner(appCfg *cfg.Cfg, repo database.ItemRepository) (*pipeline.Scanner, *feed.Fetcher, error) {
	filters, err := filter.NewEngine(appCfg.FiltersFile)
	if err != nil {
		return nil, nil, err
	}

	validator := feed.NewValidator(appCfg.AllowedDomains)
	fetcher := feed.NewFetcher(validator, time.Duration(appCfg.FetchTimeout)*time.Second, appCfg.FetchRetries)

	return pipeline.NewScanner(fetcher, feed.NewParser(), filters, repo), fetcher, nil
}

func buildSummarizer(appCfg *cfg.Cfg) (engine.Summarizer, error) {
	return engine.New(appCfg.Engine, engine.Config{
		Model:        appCfg.Model,
		Language:     appCfg.Language,
		OpenAIKey:    appCfg.OpenAIKey,
		OpenAIBase:   appCfg.OpenAIBase,
		AnthropicKey: appCfg.AnthropicKey,
		OllamaHost:   appCfg.OllamaHost,
	})
}

func buildDispatcher(appCfg *cfg.Cfg) (*pipeline.Dispatcher, error) {
	notifiers, err := notify.NewChannels(appCfg.Channels, notify.Config{
		SlackWebhookURL:      appCfg.SlackWebhookURL,
		DiscordWebhookURL:    appCfg.DiscordWebhookURL,
		MattermostWebhookURL: appCfg.MattermostWebhookURL,
		TeamsWebhookURL:      appCfg.TeamsWebhookURL,
		WebhookURL:           appCfg.WebhookURL,
		WebhookSecret:        appCfg.WebhookSecret,
		TelegramToken:        appCfg.TelegramToken,
		TelegramChatID:       appCfg.TelegramChatID,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.NewDispatcher(notifiers), nil
}

func scanSources(appCfg *cfg.Cfg) ([]feed.Source, error) {
	if appCfg.ScanURL != "" && appCfg.ScanURL != "all" {
		return []feed.Source{{Name: "Custom", URL: appCfg.ScanURL}}, nil
	}
	return feed.LoadSources(appCfg.SourcesFile)
}

func runScan(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) error {
	scanner, _, err := buildScanner(appCfg, repo)
	if err != nil {
		return err
	}

	sources, err := scanSources(appCfg)
	if err != nil {
		return err
	}

	result := scanner.Scan(ctx, sources)
	fmt.Printf("Scan complete. Feeds: %d (failed: %d), added: %d, duplicates: %d, filtered: %d\n",
		result.Feeds, result.Failed, result.Added, result.Duplicates, result.Filtered)
	return nil
}

func runProcess(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) error {
	scanner, fetcher, err := buildScanner(appCfg, repo)
	if err != nil {
		return err
	}
	summarizer, err := buildSummarizer(appCfg)
	if err != nil {
		return err
	}
	dispatcher, err := buildDispatcher(appCfg)
	if err != nil {
		return err
	}

	sources, err := scanSources(appCfg)
	if err != nil {
		return err
	}
	scanner.Scan(ctx, sources)

	processor := pipeline.NewProcessor(repo, summarizer, dispatcher, appCfg.ProcessLimit, appCfg.BulkImportThreshold)
	if appCfg.ExtractContent {
		processor.EnableContentExtraction(fetcher, feed.NewExtractor())
	}

	result, err := processor.Process(ctx)
	if err != nil {
		return err
	}

	if result.BulkMarked > 0 {
		fmt.Printf("Initial import detected: %d items marked as read. Only future updates will notify.\n", result.BulkMarked)
		return nil
	}
	fmt.Printf("Cycle complete. Pending: %d, notified: %d, skipped: %d\n",
		result.Pending, result.Notified, result.Skipped)
	return nil
}

func runDigest(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) error {
	summarizer, err := buildSummarizer(appCfg)
	if err != nil {
		return err
	}
	dispatcher, err := buildDispatcher(appCfg)
	if err != nil {
		return err
	}

	digester := pipeline.NewDigester(repo, summarizer, dispatcher, appCfg.DigestMaxItems, appCfg.DigestMaxChars)
	return digester.SendDigest(ctx, appCfg.Days)
}

func runList(appCfg *cfg.Cfg, repo database.ItemRepository) error {
	items, err := repo.GetRecent(appCfg.ListLimit, appCfg.PendingSummary)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	for _, item := range items {
		status := "[PENDING]"
		if item.Summary != "" {
			status = "[SUMMARIZED]"
		}
		category := "[General]"
		if item.Tags != "" {
			category = "[" + item.Tags + "]"
		}
		fmt.Printf("%d: %s %s %s (%s)\n", item.ID, status, category, item.Title,
			item.PublishedAt.UTC().Format("2006-01-02 15:04"))
	}
	return nil
}

func runMarkAllRead(appCfg *cfg.Cfg, repo database.ItemRepository) error {
	pending, err := repo.CountPending()
	if err != nil {
		return err
	}
	if pending == 0 {
		fmt.Println("All items are already marked as read.")
		return nil
	}

	if !appCfg.Yes {
		fmt.Printf("This will mark %d items as read. You won't receive notifications for them. Continue? [y/N]: ", pending)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	marked, err := repo.MarkAllNotified()
	if err != nil {
		return err
	}
	fmt.Printf("%d items marked as read. You will only be notified of updates from now on.\n", marked)
	return nil
}

func runVerify(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) error {
	fmt.Println("Starting configuration verification...")

	if _, err := repo.GetStats(); err != nil {
		fmt.Printf("Database connection: FAILED (%v)\n", err)
		return err
	}
	fmt.Println("Database connection: OK")

	fmt.Printf("Testing engine: %s (%s)...\n", appCfg.Engine, appCfg.Model)
	summary := ""
	if summarizer, err := buildSummarizer(appCfg); err != nil {
		fmt.Printf("Engine init: FAILED (%v)\n", err)
	} else {
		dummy := "NewsBrief is an autonomous agent that monitors cloud news. This is a test content to verify summarization."
		summary, err = summarizer.Summarize(ctx, dummy)
		if err != nil {
			fmt.Printf("Summarization: FAILED (%v)\n", err)
		} else if summary == "" {
			fmt.Println("Summarization: returned empty response")
		} else {
			fmt.Printf("Summarization: OK (length: %d)\n", len(summary))
		}
	}

	fmt.Printf("Testing notification channels: %v...\n", appCfg.Channels)
	dispatcher, err := buildDispatcher(appCfg)
	if err != nil {
		fmt.Printf("Channel setup: FAILED (%v)\n", err)
		return err
	}

	message := summary
	if message == "" {
		message = "This is a test notification. Your engine might have failed, but notifications work!"
	}
	sent := dispatcher.Broadcast("NewsBrief Configuration Test", message, "https://aws.amazon.com/new/", "System Test")
	fmt.Printf("Notifications sent: %d/%d channels\n", sent, dispatcher.Channels())

	fmt.Println("Verification complete.")
	return nil
}

func runExport(appCfg *cfg.Cfg, repo database.ItemRepository) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -appCfg.Days)

	var tags []string
	if appCfg.FilterTags != "" {
		for _, tag := range strings.Split(appCfg.FilterTags, ",") {
			tags = append(tags, strings.TrimSpace(tag))
		}
	}

	items, err := repo.GetPublishedSince(cutoff, tags)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No items to export.")
		return nil
	}

	filename, err := export.Run(items, appCfg.ExportFormat, appCfg.ExportOutput, appCfg.Days)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d items to %s\n", len(items), filename)
	return nil
}

func runCleanup(appCfg *cfg.Cfg, repo database.ItemRepository) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -appCfg.Days)

	old, err := repo.GetPublishedBefore(cutoff)
	if err != nil {
		return err
	}
	if len(old) == 0 {
		fmt.Printf("No items older than %d days found.\n", appCfg.Days)
		return nil
	}

	if appCfg.DryRun {
		fmt.Printf("Would delete %d items older than %d days:\n", len(old), appCfg.Days)
		preview := old
		if len(preview) > 10 {
			preview = preview[:10]
		}
		for _, item := range preview {
			fmt.Printf("  - %s (%s)\n", item.Title, item.PublishedAt.UTC().Format("2006-01-02"))
		}
		if len(old) > 10 {
			fmt.Printf("  ... and %d more items\n", len(old)-10)
		}
		fmt.Println("Run without --dry-run to actually delete.")
		return nil
	}

	deleted, err := repo.DeletePublishedBefore(cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d items older than %d days.\n", deleted, appCfg.Days)

	if err := repo.Vacuum(); err != nil {
		slog.Warn("Could not vacuum database", "error", err)
	} else {
		fmt.Println("Database vacuumed.")
	}
	return nil
}

func runServe(ctx context.Context, appCfg *cfg.Cfg, repo database.ItemRepository) error {
	scanner, fetcher, err := buildScanner(appCfg, repo)
	if err != nil {
		return err
	}
	summarizer, err := buildSummarizer(appCfg)
	if err != nil {
		return err
	}
	dispatcher, err := buildDispatcher(appCfg)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessor(repo, summarizer, dispatcher, appCfg.ProcessLimit, appCfg.BulkImportThreshold)
	if appCfg.ExtractContent {
		processor.EnableContentExtraction(fetcher, feed.NewExtractor())
	}
	digester := pipeline.NewDigester(repo, summarizer, dispatcher, appCfg.DigestMaxItems, appCfg.DigestMaxChars)

	cycle := func(ctx context.Context) error {
		sources, err := scanSources(appCfg)
		if err != nil {
			return err
		}
		scanner.Scan(ctx, sources)
		_, err = processor.Process(ctx)
		return err
	}
	digest := func(ctx context.Context) error {
		return digester.SendDigest(ctx, appCfg.Days)
	}

	sched := scheduler.New(cycle, digest)
	if err := sched.Start(ctx, appCfg.ScanSchedule, appCfg.DigestSchedule); err != nil {
		return err
	}
	defer sched.Stop()

	handler := api.NewHandler(repo, sched.TriggerCycle, func(ctx context.Context, days int) error {
		return digester.SendDigest(ctx, days)
	}, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("NewsBrief started", "version", appCfg.Version)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
