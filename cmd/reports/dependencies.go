package main

import (
	"fmt"
	"log/slog"

	"github.com/craig-dws/Email-Reports/internal/domain/approval"
	"github.com/craig-dws/Email-Reports/internal/domain/archive"
	"github.com/craig-dws/Email-Reports/internal/domain/email"
	"github.com/craig-dws/Email-Reports/internal/domain/extraction"
	"github.com/craig-dws/Email-Reports/internal/domain/mailbox"
	"github.com/craig-dws/Email-Reports/internal/domain/roster"
	"github.com/craig-dws/Email-Reports/internal/domain/workflow"
	"github.com/craig-dws/Email-Reports/pkg/config"
	"github.com/craig-dws/Email-Reports/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Mailbox   mailbox.Mailbox
	Roster    *roster.Roster
	Matcher   *roster.Matcher
	Extractor *extraction.Extractor
	Generator *email.Generator
	Tracker   *approval.Tracker
	Archive   *archive.Index
	Sender    *email.Sender
	Metrics   *metrics.Metrics

	Pipeline *workflow.Pipeline
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	mb, err := mailbox.NewLocalMailbox(cfg.Mailbox.InboxPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init mailbox: %w", err)
	}
	deps.Mailbox = mb

	deps.Roster, err = roster.LoadFile(cfg.Roster.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load client database: %w", err)
	}
	deps.Matcher = roster.NewMatcher(deps.Roster, cfg.Matching.FuzzyThreshold, logger)

	deps.Extractor = extraction.NewExtractor(logger)

	deps.Generator, err = email.NewGenerator(email.Config{
		AgencyName:    cfg.Agency.Name,
		AgencyEmail:   cfg.Agency.Email,
		AgencyPhone:   cfg.Agency.Phone,
		AgencyWebsite: cfg.Agency.Website,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init email generator: %w", err)
	}

	deps.Tracker = approval.NewTracker(cfg.Approval.TrackingPath, logger)

	deps.Archive, err = archive.NewIndex(cfg.Archive.IndexPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open report archive: %w", err)
	}

	if cfg.Email.CanSend() {
		deps.Sender = email.NewSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.SendsPerSec, logger)
	} else {
		logger.Warn("email sending not configured; send commands will fail")
	}

	deps.Pipeline = &workflow.Pipeline{
		Mailbox:   deps.Mailbox,
		Pages:     extraction.NewPDFPageSource(),
		Extractor: deps.Extractor,
		Matcher:   deps.Matcher,
		Generator: deps.Generator,
		Tracker:   deps.Tracker,
		Archive:   deps.Archive,
		Sender:    deps.Sender,
		Metrics:   deps.Metrics,
		DraftsDir: cfg.Approval.DraftsDir,
		Senders:   cfg.Mailbox.Senders,
		Logger:    logger,
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Archive != nil {
		if err := d.Archive.Close(); err != nil {
			d.Logger.Warn("archive close failed", slog.Any("error", err))
		}
	}
	d.Logger.Info("cleanup completed")
}
