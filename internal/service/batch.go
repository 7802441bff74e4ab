package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gotriage/internal/clinicapi"
	"gotriage/internal/config"
	"gotriage/internal/models"
	"gotriage/internal/report"
)

// AssessmentSink receives the cohort lists.
type AssessmentSink interface {
	SubmitAssessment(ctx context.Context, payload models.AssessmentPayload) (*clinicapi.SubmitResponse, error)
}

// API is everything a run needs from the upstream service.
type API interface {
	PageSource
	AssessmentSink
}

// BatchHandler runs one fetch, classify and submit pass.
type BatchHandler struct {
	api         API
	fetcher     *Fetcher
	classifier  *Classifier
	reportStore *report.Store
	logger      zerolog.Logger
}

// NewBatchHandler wires a run. reportStore may be nil to skip run reports.
func NewBatchHandler(api API, cfg config.FetchConfig, reportStore *report.Store, logger zerolog.Logger) *BatchHandler {
	return &BatchHandler{
		api:         api,
		fetcher:     NewFetcher(api, cfg, logger),
		classifier:  NewClassifier(logger),
		reportStore: reportStore,
		logger:      logger,
	}
}

// Run executes the job once. A cut-short fetch is logged and classification
// continues on what was fetched; only a failed submission is returned as an
// error. The report is returned in both cases.
func (b *BatchHandler) Run(ctx context.Context) (*models.RunReport, error) {
	run := &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := b.logger.With().Str("run_id", run.RunID).Logger()
	b.fetcher.logger = logger
	b.classifier.logger = logger

	logger.Info().Msg("🔄 Starting patient fetch")

	fetched, err := b.fetcher.FetchAll(ctx)
	run.PagesFetched = fetched.Pages
	run.Retries = fetched.Retries
	run.RecordsFetched = len(fetched.Records)
	if err != nil {
		run.FetchError = err.Error()
		logger.Error().Err(err).
			Int("records", len(fetched.Records)).
			Msg("fetch stopped early, classifying partial collection")
	}
	logger.Info().Int("pages", fetched.Pages).Int("records", len(fetched.Records)).Msgf("📋 Fetched %d patients", len(fetched.Records))

	classified := b.classifier.Classify(fetched.Records)
	run.RecordsSkipped = classified.Skipped
	run.Payload = classified.Payload
	logger.Info().
		Int("classified", classified.Classified).
		Int("skipped", classified.Skipped).
		Int("high_risk", len(classified.Payload.HighRiskPatients)).
		Int("fever", len(classified.Payload.FeverPatients)).
		Int("data_quality", len(classified.Payload.DataQualityIssues)).
		Msg("classification complete")

	submitErr := b.submit(ctx, logger, run)

	run.FinishedAt = time.Now()
	if b.reportStore != nil {
		if err := b.reportStore.SaveRun(*run); err != nil {
			logger.Warn().Err(err).Msg("failed to save run report")
		}
	}
	return run, submitErr
}

// submit makes exactly one attempt.
func (b *BatchHandler) submit(ctx context.Context, logger zerolog.Logger, run *models.RunReport) error {
	logger.Info().Msg("📤 Submitting results")

	resp, err := b.api.SubmitAssessment(ctx, run.Payload)
	if resp != nil {
		run.SubmitStatus = resp.StatusCode
		run.SubmitResponse = resp.Body
	}

	if err != nil {
		run.SubmitError = err.Error()
		ev := logger.Error()
		var se *clinicapi.StatusError
		if errors.As(err, &se) && json.Valid(se.Body) {
			ev = ev.Int("status", se.StatusCode).RawJSON("error_body", se.Body)
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("❌ Submission failed")
		return fmt.Errorf("failed to submit assessment: %w", err)
	}

	run.Submitted = true
	ev := logger.Info().Int("status", resp.StatusCode)
	if len(resp.Body) > 0 {
		ev = ev.RawJSON("response", resp.Body)
	}
	ev.Msg("✅ Submission accepted")
	return nil
}
