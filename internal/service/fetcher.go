package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"gotriage/internal/clinicapi"
	"gotriage/internal/config"
	"gotriage/internal/models"
)

// ErrRetriesExhausted is wrapped into the error returned when a page keeps
// failing with transient faults past RetryPolicy.MaxAttempts.
var ErrRetriesExhausted = errors.New("retries exhausted")

// PageSource is the upstream patients endpoint.
type PageSource interface {
	FetchPage(ctx context.Context, page, limit int) (*models.PatientPage, error)
}

// Fetcher walks the patient pages one at a time, starting at page 1.
type Fetcher struct {
	source    PageSource
	pageSize  int
	pageDelay time.Duration
	retry     RetryPolicy
	logger    zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	rand  func() float64
}

type FetchResult struct {
	Records models.PatientCollection
	Pages   int
	Retries int
}

func NewFetcher(source PageSource, cfg config.FetchConfig, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		source:    source,
		pageSize:  cfg.GetPageSize(),
		pageDelay: cfg.GetPageDelay(),
		retry:     RetryPolicyFromConfig(cfg),
		logger:    logger,
		sleep:     sleepContext,
		rand:      rand.Float64,
	}
}

// FetchAll returns every record fetched before paging stopped. A non-nil
// error means paging was cut short; the result still holds the records of
// all pages that succeeded and is never nil.
func (f *Fetcher) FetchAll(ctx context.Context) (*FetchResult, error) {
	result := &FetchResult{Records: models.PatientCollection{}}
	page := 1
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("fetch interrupted at page %d: %w", page, err)
		}

		attempt++
		p, err := f.source.FetchPage(ctx, page, f.pageSize)
		if err != nil {
			if !clinicapi.IsRetryable(err) {
				return result, fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			if attempt >= f.retry.MaxAttempts {
				return result, fmt.Errorf("page %d failed after %d attempts: %w: %w", page, attempt, ErrRetriesExhausted, err)
			}

			delay := f.retry.Delay(attempt, f.rand)
			f.logger.Warn().
				Err(err).
				Int("page", page).
				Int("attempt", attempt).
				Dur("retry_in", delay).
				Msg("transient upstream fault, retrying page")
			result.Retries++

			if err := f.sleep(ctx, delay); err != nil {
				return result, fmt.Errorf("fetch interrupted at page %d: %w", page, err)
			}
			continue
		}
		attempt = 0

		if p.Malformed || len(p.Records) == 0 {
			f.logger.Warn().Int("page", page).Bool("malformed", p.Malformed).Msg("no data on page, stopping fetch")
			return result, nil
		}

		result.Records = append(result.Records, p.Records...)
		result.Pages++

		ev := f.logger.Info().
			Int("page", page).
			Int("records", len(p.Records)).
			Int("accumulated", len(result.Records)).
			Bool("has_next", p.HasNext)
		if p.TotalPages > 0 {
			ev = ev.Int("total_pages", p.TotalPages)
		}
		if p.Total > 0 {
			ev = ev.Int("total_records", p.Total)
		}
		ev.Msgf("fetched page %d", page)

		if !p.HasNext {
			return result, nil
		}
		page++

		if err := f.sleep(ctx, f.pageDelay); err != nil {
			return result, fmt.Errorf("fetch interrupted at page %d: %w", page, err)
		}
	}
}
