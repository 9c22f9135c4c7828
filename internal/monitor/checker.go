package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/notifier"
	"github.com/rs/zerolog"
)

// PageFetcher retrieves the raw payload of a target page.
// Both the HTTP fetcher and the headless renderer implement it.
type PageFetcher interface {
	Fetch(ctx context.Context, in httpclient.FetchInput) (*httpclient.FetchResult, error)
}

// FetchSettings holds the global fetch parameters applied to every target.
type FetchSettings struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	Headers     map[string]string // merged under each target's own headers
}

// Checker runs the fetch, extract, compare, notify and store steps for one target.
type Checker struct {
	fetcher   PageFetcher
	renderer  PageFetcher
	extractor *extractor.Extractor
	differ    *differ.LineDiffer
	store     models.SnapshotStore
	notifier  notifier.Notifier
	now       func() time.Time
	logger    zerolog.Logger

	// mu guards the parts a configuration reload may swap.
	mu       sync.RWMutex
	settings FetchSettings
}

// NewChecker creates a checker. renderer may be nil, in which case targets that ask for
// rendering are fetched over plain HTTP.
func NewChecker(
	fetcher PageFetcher,
	renderer PageFetcher,
	contentExtractor *extractor.Extractor,
	lineDiffer *differ.LineDiffer,
	store models.SnapshotStore,
	notify notifier.Notifier,
	settings FetchSettings,
	logger zerolog.Logger,
) *Checker {
	return &Checker{
		fetcher:   fetcher,
		renderer:  renderer,
		extractor: contentExtractor,
		differ:    lineDiffer,
		store:     store,
		notifier:  notify,
		settings:  settings,
		now:       time.Now,
		logger:    logger.With().Str("component", "Checker").Logger(),
	}
}

// SetSettings replaces the fetch settings used by later checks.
func (c *Checker) SetSettings(settings FetchSettings) {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
}

// SetFetcher replaces the HTTP fetcher used by later checks.
func (c *Checker) SetFetcher(fetcher PageFetcher) {
	c.mu.Lock()
	c.fetcher = fetcher
	c.mu.Unlock()
}

// SetNotifier replaces the notifier used by later checks.
func (c *Checker) SetNotifier(n notifier.Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

func (c *Checker) currentNotifier() notifier.Notifier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifier
}

// Check runs one cycle for target. With forceBaseline the extracted content replaces the
// stored baseline without comparing or notifying.
func (c *Checker) Check(ctx context.Context, target models.Target, forceBaseline bool) models.CheckResult {
	started := c.now()
	result := models.CheckResult{Target: target, CheckedAt: started}
	finish := func(status models.CheckStatus) models.CheckResult {
		result.Status = status
		result.Duration = c.now().Sub(started)
		return result
	}

	fetched, err := c.fetch(ctx, target)
	if err != nil {
		result.Err = err
		if errors.Is(err, common.ErrUnreachable) {
			c.logger.Warn().Err(err).Str("url", target.URL).Msg("Target unreachable, skipping this cycle")
		} else {
			c.logger.Error().Err(err).Str("url", target.URL).Msg("Fetch aborted, skipping this cycle")
		}
		return finish(models.StatusSkipped)
	}
	raw := string(fetched.Body)

	extracted := c.extractor.Extract(raw, target.Selector, target.IgnorePatterns)
	if extracted.Degraded() {
		result.Degradations = extracted.DegradationStrings()
		c.logger.Warn().Str("url", target.URL).Strs("degradations", result.Degradations).Msg("Extraction degraded")
	}

	record := models.SnapshotRecord{
		RawPayload: raw,
		Content:    extracted.Text,
		LastCheck:  started,
	}

	previous, err := c.store.Load(target)
	if forceBaseline {
		// A reset replaces the baseline but keeps the last recorded change set.
		switch {
		case err == nil:
			record.LastDiff = previous.LastDiff
		case !errors.Is(err, models.ErrRecordNotFound):
			c.logger.Warn().Err(err).Str("url", target.URL).Msg("Previous snapshot unreadable, resetting without its last change set")
		}
		return finish(c.writeBaseline(target, record, &result))
	}
	if errors.Is(err, models.ErrRecordNotFound) {
		return finish(c.writeBaseline(target, record, &result))
	}
	if err != nil {
		result.Err = err
		c.logger.Error().Err(err).Str("url", target.URL).Msg("Failed to load snapshot")
		return finish(models.StatusFailed)
	}

	changes := c.differ.Diff(previous.Content, extracted.Text)
	if !changes.IsMeaningful() {
		record.LastDiff = previous.LastDiff
		if err := c.store.Save(target, record); err != nil {
			result.Err = err
			return finish(models.StatusFailed)
		}
		c.logger.Debug().Str("url", target.URL).Msg("No meaningful change")
		return finish(models.StatusUnchanged)
	}

	changes.DetectedAt = started
	result.Changes = &changes
	c.logger.Info().
		Str("url", target.URL).
		Int("added", changes.Added()).
		Int("removed", changes.Removed()).
		Msg("Change detected")

	// Delivery failures are reported but never hold back the snapshot.
	if err := c.currentNotifier().Notify(ctx, notifier.ChangeNotification{
		TargetName: target.Name,
		TargetURL:  target.URL,
		Changes:    &changes,
		DetectedAt: started,
	}); err != nil {
		result.NotifyErr = err
		c.logger.Error().Err(err).Str("url", target.URL).Msg("Failed to deliver change notification")
	}

	record.LastDiff = &changes
	if err := c.store.Save(target, record); err != nil {
		result.Err = err
		return finish(models.StatusFailed)
	}
	return finish(models.StatusChanged)
}

func (c *Checker) writeBaseline(target models.Target, record models.SnapshotRecord, result *models.CheckResult) models.CheckStatus {
	if err := c.store.Save(target, record); err != nil {
		result.Err = err
		return models.StatusFailed
	}
	c.logger.Info().Str("url", target.URL).Msg("Baseline established")
	return models.StatusEstablished
}

func (c *Checker) fetch(ctx context.Context, target models.Target) (*httpclient.FetchResult, error) {
	c.mu.RLock()
	fetcher := c.fetcher
	settings := c.settings
	c.mu.RUnlock()
	if target.Render {
		if c.renderer != nil {
			fetcher = c.renderer
		} else {
			c.logger.Warn().Str("url", target.URL).Msg("Rendering requested but no renderer is configured, fetching over HTTP")
		}
	}

	res, err := fetcher.Fetch(ctx, httpclient.FetchInput{
		URL:         target.URL,
		Headers:     mergeHeaders(settings.Headers, target.Headers),
		Timeout:     settings.Timeout,
		MaxAttempts: settings.MaxAttempts,
		RetryDelay:  settings.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if res.Truncated {
		c.logger.Warn().Str("url", target.URL).Int("size", len(res.Body)).Msg("Response body truncated")
	}
	return res, nil
}

func mergeHeaders(global, target map[string]string) map[string]string {
	if len(global) == 0 && len(target) == 0 {
		return nil
	}
	merged := make(map[string]string, len(global)+len(target))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range target {
		merged[k] = v
	}
	return merged
}
