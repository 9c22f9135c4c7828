package extractor

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Result is the normalized content of a page plus anything that went wrong on the way.
type Result struct {
	Text         string
	Degradations []Degradation
}

// Degraded reports whether any fallback was taken.
func (r Result) Degraded() bool {
	return len(r.Degradations) > 0
}

// DegradationStrings renders the degradations for logs and reports.
func (r Result) DegradationStrings() []string {
	if len(r.Degradations) == 0 {
		return nil
	}
	out := make([]string, len(r.Degradations))
	for i, d := range r.Degradations {
		out[i] = d.String()
	}
	return out
}

// Extractor turns a raw page into the comparable text snapshot.
// It is safe for concurrent use.
type Extractor struct {
	logger   zerolog.Logger
	patterns *PatternCache
	policy   *bluemonday.Policy
}

// New creates an extractor with a fresh pattern cache
func New(logger zerolog.Logger) *Extractor {
	return NewWithPatternCache(NewPatternCache(DefaultPatternTimeout), logger)
}

// NewWithPatternCache creates an extractor sharing an existing pattern cache
func NewWithPatternCache(cache *PatternCache, logger zerolog.Logger) *Extractor {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)

	return &Extractor{
		logger:   logger.With().Str("component", "Extractor").Logger(),
		patterns: cache,
		policy:   policy,
	}
}

// Extract selects the region of interest, removes noise and returns normalized text.
// It never fails: problems are reported as degradations and the closest usable
// content is returned instead.
func (e *Extractor) Extract(raw, selector string, noiseFilters []string) Result {
	var degradations []Degradation

	fragment, selDegradations := e.selectRegion(raw, selector)
	degradations = append(degradations, selDegradations...)

	fragment, patDegradations := e.suppressNoise(fragment, noiseFilters)
	degradations = append(degradations, patDegradations...)

	text := Normalize(e.stripMarkup(fragment))

	for _, d := range degradations {
		e.logger.Warn().Str("kind", string(d.Kind)).Str("detail", d.Detail).Msg("Extraction degraded")
	}

	return Result{Text: text, Degradations: degradations}
}

// selectRegion returns the serialized matches of selector, or the whole document
// when the selector is empty, invalid or matches nothing.
func (e *Extractor) selectRegion(raw, selector string) (string, []Degradation) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw, []Degradation{{Kind: DegradationParseFailed, Detail: err.Error()}}
	}

	whole := func() string {
		out, err := doc.Html()
		if err != nil {
			return raw
		}
		return out
	}

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return whole(), nil
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return whole(), []Degradation{{Kind: DegradationInvalidSelector, Detail: selector}}
	}

	matches := doc.FindMatcher(matcher)
	if matches.Length() == 0 {
		return whole(), []Degradation{{Kind: DegradationSelectorMiss, Detail: selector}}
	}

	var sb strings.Builder
	matches.Each(func(i int, s *goquery.Selection) {
		out, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(out)
	})
	return sb.String(), nil
}

// suppressNoise deletes every match of each filter, in order.
func (e *Extractor) suppressNoise(content string, filters []string) (string, []Degradation) {
	var degradations []Degradation
	for _, pattern := range filters {
		if pattern == "" {
			continue
		}
		re, err := e.patterns.Get(pattern)
		if err != nil {
			degradations = append(degradations, Degradation{Kind: DegradationInvalidPattern, Detail: pattern})
			continue
		}
		replaced, err := re.Replace(content, "", -1, -1)
		if err != nil {
			// match timeout; leave the content as it was before this filter
			degradations = append(degradations, Degradation{Kind: DegradationInvalidPattern, Detail: pattern + " (" + err.Error() + ")"})
			continue
		}
		content = replaced
	}
	return content, degradations
}

func (e *Extractor) stripMarkup(fragment string) string {
	return html.UnescapeString(e.policy.Sanitize(fragment))
}
