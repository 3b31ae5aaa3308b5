package analysis

import (
	"github.com/rs/zerolog"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// Engine runs the full analysis pipeline over one uploaded batch. It is a
// pure, synchronous transformation: every call allocates its own grouping
// map and report list, so concurrent uploads never share state.
type Engine struct {
	Rules  *Rules
	Logger zerolog.Logger

	normalizer *Normalizer
}

func NewEngine(rules *Rules, logger zerolog.Logger) *Engine {
	return &Engine{
		Rules:      rules,
		Logger:     logger,
		normalizer: NewNormalizer(rules),
	}
}

// Normalizer exposes the engine's identity normalizer.
func (e *Engine) Normalizer() *Normalizer {
	return e.normalizer
}

// Analyze pre-filters, groups, categorizes and synthesizes the ticket batch,
// then aggregates everything into an AnalysisResult.
func (e *Engine) Analyze(tickets []models.ServiceTicket, fileName string) models.AnalysisResult {
	filtered := PreFilter(tickets, e.Rules)
	groups := Group(filtered, e.normalizer)

	reports := make([]models.StoreReport, 0, len(groups))
	for name, group := range groups {
		identity := models.StoreIdentity{CanonicalName: name}
		if len(group) > 0 {
			identity = e.normalizer.Normalize(group[0].DocTypeLabel, group[0].StoreLabel)
		}
		cat := Categorize(group, e.Rules)
		reports = append(reports, Synthesize(name, identity.StoreNumber, identity.IsMobileService, len(group), cat))
	}

	result := Aggregate(reports, len(filtered), len(groups), fileName)

	e.Logger.Info().
		Str("file", fileName).
		Int("tickets_in", len(tickets)).
		Int("tickets_analyzed", len(filtered)).
		Int("stores", len(groups)).
		Msg("analysis complete")
	return result
}
