package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"afitower-scraper/config"
	"afitower-scraper/models"
	"afitower-scraper/scraper/detail"
	"afitower-scraper/scraper/listing"
	"afitower-scraper/services"
	"afitower-scraper/storage"
	"afitower-scraper/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger().Error("Configuration error: %v", err)
		os.Exit(1)
	}

	logger, err := utils.OpenLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		utils.NewLogger().Error("Failed to open log file: %v", err)
		os.Exit(1)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launch := listing.NewChromeLauncher(cfg.ChromeBin, logger)
	if err := run(ctx, cfg, logger, launch, detail.NewCollyFetcher(), os.Stdout); err != nil {
		logger.Error("Run failed: %v", err)
		stop()
		logger.Close()
		os.Exit(1)
	}
}

// errPartial reports a lenient run that skipped some detail pages.
var errPartial = errors.New("some detail pages could not be extracted")

// run executes one crawl: discover links, extract a unit per link, write the
// table and print a summary to out.
func run(ctx context.Context, cfg *config.Config, logger *utils.Logger,
	launch listing.Launcher, fetcher detail.Fetcher, out io.Writer) error {

	logger.Info("=== Afi Tower scraper starting ===")
	logger.Info("Config: output %s | strict %t | offset %d | stride %d | page wait %s | settle wait %s",
		cfg.OutputPath, cfg.Strict, cfg.Site.ButtonOffset, cfg.Site.ButtonStride,
		cfg.PageLoadWait, cfg.ClickSettleWait)

	links, outcome, err := listing.New(cfg, logger, launch).Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover links: %w", err)
	}
	if outcome.Status == listing.Blocked {
		logger.Warn("Link discovery stopped early (%s); continuing with %d links", outcome, links.Size())
	}

	cleaner := services.NewCleaner(logger, cfg.Site.Complex, cfg.Site.Building)
	extractor := detail.NewExtractor(fetcher, detail.NewParser(cfg.Site), cleaner, logger)

	var (
		units   []*models.Unit
		partial bool
	)
	if cfg.Strict {
		units, err = extractor.ExtractAll(ctx, links.Links())
		if err != nil {
			return fmt.Errorf("extract units: %w", err)
		}
	} else {
		var failures []detail.Result
		units, failures = extractor.Collect(ctx, links.Links(), 0)
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, f := range failures {
			logger.Warn("Skipped %s: %v", f.Link, f.Err)
		}
		partial = len(failures) > 0
	}
	logger.Info("Extracted %d units", len(units))

	writer, err := storage.NewFileWriter(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := writer.Write(units); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	logger.Info("Table saved to %s", cfg.OutputPath)

	reportUnits := units
	if cfg.PostgresEnabled {
		reportUnits = mirrorToPostgres(ctx, cfg, logger, units)
	}

	insights := services.NewInsightService(logger)
	insights.Print(out, insights.Generate(reportUnits))

	if partial {
		return errPartial
	}
	logger.Info("=== Done ===")
	return nil
}

// mirrorToPostgres stores units in the database and returns what the database
// holds afterwards. Database problems are logged and never fail the run.
func mirrorToPostgres(ctx context.Context, cfg *config.Config, logger *utils.Logger, units []*models.Unit) []*models.Unit {
	pg, err := storage.NewPostgresWriter(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return units
	}
	defer pg.Close()

	if err := pg.Write(units); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return units
	}
	logger.Info("Units stored in PostgreSQL (table: units)")

	stored, err := pg.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch units from DB for insights: %v", err)
		return units
	}
	return stored
}
