package analysis

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/poweringeg/fichas-backend/internal/models"
)

var (
	storeNumberPattern = regexp.MustCompile(`(?i)ficha\s*servi[cç]o\s*(\d+)`)
	citySuffixPattern  = regexp.MustCompile(`(?i)\d+\s*-\s*([a-zA-Zà-úÀ-Ú\s]+)`)

	mobileStripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)serviço\s*móvel`),
		regexp.MustCompile(`(?i)servico\s*movel`),
		regexp.MustCompile(`(?i)s\.?movel`),
		regexp.MustCompile(`(?i)sm\s*`),
	}
)

type cityMatcher struct {
	name     string
	anchored *regexp.Regexp
	loose    *regexp.Regexp
}

// Normalizer derives canonical store identities from the free-text doc-type
// and store-name labels of a ticket. It is a pure function of its inputs;
// all vocabulary comes from Rules.
type Normalizer struct {
	rules  *Rules
	cities []cityMatcher
}

func NewNormalizer(rules *Rules) *Normalizer {
	// Longest city name first so "Porto Alto" is found before "Porto".
	ordered := make([]string, len(rules.Cities))
	copy(ordered, rules.Cities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	matchers := make([]cityMatcher, 0, len(ordered))
	for _, city := range ordered {
		escaped := regexp.QuoteMeta(city)
		// Whitespace-tolerant inter-word matching.
		flexible := strings.ReplaceAll(escaped, `\ `, `\s*`)
		matchers = append(matchers, cityMatcher{
			name:     city,
			anchored: regexp.MustCompile(`(?i)(?:^|[\s-])` + flexible + `(?:[\s-]|$)`),
			loose:    regexp.MustCompile(`(?i)` + flexible),
		})
	}
	return &Normalizer{rules: rules, cities: matchers}
}

// Normalize resolves a ticket's canonical store identity.
//
// "Ficha Servico 7" + "Guimarães"                       -> Guimarães (#7)
// "Ficha S.Movel 7-Leiria" + "Serviço Móvel Leiria"     -> Leiria SM (no number)
// "Ficha Servico 18" + "Braga"                          -> Braga (#18)
func (n *Normalizer) Normalize(docTypeLabel, storeNameLabel string) models.StoreIdentity {
	identity := models.StoreIdentity{
		IsMobileService: n.isMobileService(docTypeLabel, storeNameLabel),
	}
	identity.CanonicalName = n.canonicalName(docTypeLabel, storeNameLabel, identity.IsMobileService)
	if !identity.IsMobileService {
		identity.StoreNumber = extractStoreNumber(docTypeLabel)
	}
	return identity
}

func (n *Normalizer) isMobileService(docTypeLabel, storeNameLabel string) bool {
	text := strings.ToLower(docTypeLabel + " " + storeNameLabel)
	for _, marker := range n.rules.MobileMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func (n *Normalizer) extractCity(docTypeLabel, storeNameLabel string) string {
	text := docTypeLabel + " " + storeNameLabel

	for _, city := range n.cities {
		if city.anchored.MatchString(text) {
			return city.name
		}
	}
	// Loose pass for city names glued to other tokens.
	for _, city := range n.cities {
		if city.loose.MatchString(text) {
			return city.name
		}
	}
	// Last resort: the "<digits>-<city>" suffix in the doc-type label.
	if m := citySuffixPattern.FindStringSubmatch(docTypeLabel); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (n *Normalizer) canonicalName(docTypeLabel, storeNameLabel string, mobile bool) string {
	if alias, ok := n.rules.StoreAliases[strings.ToLower(strings.TrimSpace(storeNameLabel))]; ok {
		return alias
	}

	city := n.extractCity(docTypeLabel, storeNameLabel)

	if mobile {
		if city != "" {
			return city + " SM"
		}
		base := storeNameLabel
		for _, pattern := range mobileStripPatterns {
			base = pattern.ReplaceAllString(base, "")
		}
		base = strings.TrimSpace(base)
		if base != "" {
			return base + " SM"
		}
		return storeNameLabel + " SM"
	}

	if city != "" && strings.Contains(strings.ToLower(storeNameLabel), strings.ToLower(city)) {
		return city
	}
	return storeNameLabel
}

// extractStoreNumber pulls the store number from a "Ficha Servico <N>"
// label. Only positive integers count.
func extractStoreNumber(docTypeLabel string) *int {
	m := storeNumberPattern.FindStringSubmatch(docTypeLabel)
	if m == nil {
		return nil
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num <= 0 {
		return nil
	}
	return &num
}
