package analysis

import (
	"encoding/json"
	"os"
	"strings"
)

// Rules holds the vocabularies that drive identity normalization and
// categorization. Everything here is data, not logic: production defaults
// live in DefaultRules and a deployment can override any list through a
// JSON file (RULES_PATH).
type Rules struct {
	// MobileMarkers are the spellings that flag a mobile-service unit when
	// found (case-insensitively) in the doc-type or store-name label.
	MobileMarkers []string `json:"mobile_markers"`

	// Cities is the known-city list used for canonical store naming. Scan
	// order is longest name first, then list order; first match wins.
	Cities []string `json:"cities"`

	// StoreAliases maps lowercased raw store-name labels straight to a
	// canonical name, bypassing the city heuristics. Keys must be lowercase.
	StoreAliases map[string]string `json:"store_aliases"`

	// ExcludedStatuses are dropped before any analysis: they need no action.
	ExcludedStatuses []string `json:"excluded_statuses"`

	// AlertStatuses feed the alert bucket.
	AlertStatuses []string `json:"alert_statuses"`

	// ReturnGlassStatus is the exact status literal for the return-glass
	// bucket.
	ReturnGlassStatus string `json:"return_glass_status"`

	// MissingNotesSentinel marks a notes field that the upstream system
	// fills in when no notes exist.
	MissingNotesSentinel string `json:"missing_notes_sentinel"`

	// InternalEmailDomains are company domains; an address on one of them is
	// never a genuine client contact.
	InternalEmailDomains []string `json:"internal_email_domains"`
}

func DefaultRules() *Rules {
	return &Rules{
		MobileMarkers: []string{"s.movel", "smovel", "serviço móvel", "servico movel", "sm "},
		Cities: []string{
			"Abrantes", "Albufeira", "Almada", "Amadora", "Aveiro", "Barcelos", "Braga", "Bragança",
			"Caldas da Rainha", "Caldas", "Cascais", "Castanheira do Ribatejo", "Castanheira",
			"Castelo Branco", "Chaves", "Coimbra", "Covilhã", "Évora", "Entroncamento",
			"Famalicão", "Faro", "Figueira", "Funchal", "Gondomar", "Guarda", "Guimarães",
			"Leiria", "Lezíria", "Lisboa", "Loures", "Maia", "Matosinhos", "Montijo", "Odivelas",
			"Oeiras", "Olhão", "Paredes", "Peniche", "Pombal", "Ponte Lima", "Portalegre",
			"Portimão", "Porto", "Porto Alto", "Santarém", "Seixal", "Setúbal", "Sintra", "Tomar",
			"Torres Vedras", "Vale do Tejo", "Viana", "Vila Franca", "Vila Nova Gaia", "Vila Real",
			"Viseu",
		},
		StoreAliases: map[string]string{
			"paredes ii":                   "Mycarcenter",
			"porto alto":                   "Porto Alto",
			"portoalto":                    "Porto Alto",
			"lisboa amoreiras":             "Lisboa",
			"lisboa relogio":               "Lisboa Relogio",
			"lisboa relógio":               "Lisboa Relogio",
			"aeroporto":                    "Aeroporto",
			"maiashopping":                 "MaiaShopping",
			"maia shopping":                "MaiaShopping",
			"maia zona industrial":         "Maia Zona Industrial",
			"coimbra sul":                  "Coimbra Sul",
			"serviço móvel rep. lisboa":    "Lisboa SMR",
			"servico movel rep. lisboa":    "Lisboa SMR",
			"servico movel rep lisboa":     "Lisboa SMR",
			"sm lisboa ii (movida)":        "Movida",
			"sm lisboa ii":                 "Movida",
			"porto marquês":                "Porto Marquês",
			"porto marques":                "Porto Marquês",
			"porto zona industrial":        "Porto Zona Industrial",
			"serviço móvel porto (maia)":   "SM Porto Maia",
			"servico movel porto (maia)":   "SM Porto Maia",
			"servico movel porto":          "SM Porto Maia",
			"caldas da rainha":             "Caldas da Rainha",
			"caldas rainha":                "Caldas da Rainha",
			"caldas":                       "Caldas da Rainha",
			"castanheira do ribatejo":      "Castanheira do Ribatejo",
			"castanheira":                  "Castanheira do Ribatejo",
			"castanheira ribatejo":         "Castanheira do Ribatejo",
			"faro sm":                      "Faro SM",
			"sm faro":                      "Faro SM",
			"serviço móvel faro":           "Faro SM",
			"servico movel faro":           "Faro SM",
			"leziria sm":                   "Lezíria SM",
			"lezíria sm":                   "Lezíria SM",
			"leziria do tejo sm":           "Lezíria SM",
			"lezíria do tejo sm":           "Lezíria SM",
			"sm leziria":                   "Lezíria SM",
			"sm caldas da rainha":          "SM Caldas da Rainha",
			"sm caldas":                    "SM Caldas da Rainha",
			"serviço móvel caldas":         "SM Caldas da Rainha",
			"servico movel caldas":         "SM Caldas da Rainha",
			"serviço móvel caldas da rainha": "SM Caldas da Rainha",
			"servico movel caldas da rainha": "SM Caldas da Rainha",
			"vale do tejo sm":              "Vale do Tejo SM",
			"sm vale do tejo":              "Vale do Tejo SM",
			"serviço móvel vale do tejo":   "Vale do Tejo SM",
			"servico movel vale do tejo":   "Vale do Tejo SM",
			"portimão":                     "Portimão",
			"portimao":                     "Portimão",
			"santarém":                     "Santarém",
			"santarem":                     "Santarém",
		},
		ExcludedStatuses:     []string{"Serviço Pronto", "REVISAR"},
		AlertStatuses:        []string{"FALTA DOCUMENTOS", "RECUSADO", "INCIDÊNCIA"},
		ReturnGlassStatus:    "Devolve Vidro e Encerra!",
		MissingNotesSentinel: "falta notas",
		InternalEmailDomains: []string{"expressglass.pt"},
	}
}

// LoadRules reads a JSON override file and merges it over the defaults.
// Only non-empty fields replace the default lists.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var override Rules
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, err
	}
	if len(override.MobileMarkers) > 0 {
		// Marker matching runs over lowercased text; overrides must follow.
		markers := make([]string, len(override.MobileMarkers))
		for i, marker := range override.MobileMarkers {
			markers[i] = strings.ToLower(marker)
		}
		rules.MobileMarkers = markers
	}
	if len(override.Cities) > 0 {
		rules.Cities = override.Cities
	}
	if len(override.StoreAliases) > 0 {
		rules.StoreAliases = lowercaseKeys(override.StoreAliases)
	}
	if len(override.ExcludedStatuses) > 0 {
		rules.ExcludedStatuses = override.ExcludedStatuses
	}
	if len(override.AlertStatuses) > 0 {
		rules.AlertStatuses = override.AlertStatuses
	}
	if override.ReturnGlassStatus != "" {
		rules.ReturnGlassStatus = override.ReturnGlassStatus
	}
	if override.MissingNotesSentinel != "" {
		rules.MissingNotesSentinel = strings.ToLower(override.MissingNotesSentinel)
	}
	if len(override.InternalEmailDomains) > 0 {
		rules.InternalEmailDomains = override.InternalEmailDomains
	}
	return rules, nil
}

func (r *Rules) IsExcludedStatus(status string) bool {
	return containsString(r.ExcludedStatuses, status)
}

func (r *Rules) IsAlertStatus(status string) bool {
	return containsString(r.AlertStatuses, status)
}

// IsInternalEmail reports whether the address belongs to a company domain.
// An empty address also counts: there is no client contact either way.
func (r *Rules) IsInternalEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return true
	}
	for _, domain := range r.InternalEmailDomains {
		if strings.Contains(email, "@"+strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// HasNotes reports whether the notes field carries real content. The
// sentinel phrase the upstream system writes counts as no notes.
func (r *Rules) HasNotes(notes string) bool {
	v := strings.ToLower(strings.TrimSpace(notes))
	if v == "" || strings.Contains(v, r.MissingNotesSentinel) {
		return false
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func lowercaseKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
