package analysis

import "github.com/poweringeg/fichas-backend/internal/models"

// UnknownStoreKey labels tickets whose identity could not be derived at all
// (empty doc-type and store-name labels).
const UnknownStoreKey = "Desconhecida"

// Group partitions tickets into per-store groups keyed by canonical name.
// Pure fold: no ticket is dropped, no ticket lands in two groups.
func Group(tickets []models.ServiceTicket, normalizer *Normalizer) map[string][]models.ServiceTicket {
	groups := make(map[string][]models.ServiceTicket)
	for _, ticket := range tickets {
		key := normalizer.Normalize(ticket.DocTypeLabel, ticket.StoreLabel).CanonicalName
		if key == "" {
			key = ticket.StoreLabel
		}
		if key == "" {
			key = UnknownStoreKey
		}
		groups[key] = append(groups[key], ticket)
	}
	return groups
}
