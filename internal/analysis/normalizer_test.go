package analysis

import "testing"

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return NewNormalizer(DefaultRules())
}

func TestNormalizeFixedStore(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha Servico 7", "Guimarães")
	if id.CanonicalName != "Guimarães" {
		t.Fatalf("expected Guimarães, got %q", id.CanonicalName)
	}
	if id.IsMobileService {
		t.Fatalf("expected fixed store")
	}
	if id.StoreNumber == nil || *id.StoreNumber != 7 {
		t.Fatalf("expected store number 7, got %v", id.StoreNumber)
	}
}

func TestNormalizeMobileService(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha S.Movel 7-Leiria", "Serviço Móvel Leiria")
	if id.CanonicalName != "Leiria SM" {
		t.Fatalf("expected Leiria SM, got %q", id.CanonicalName)
	}
	if !id.IsMobileService {
		t.Fatalf("expected mobile service")
	}
	if id.StoreNumber != nil {
		t.Fatalf("mobile service must not carry a store number, got %d", *id.StoreNumber)
	}
}

func TestNormalizeSeparatesSharedTicketNumbers(t *testing.T) {
	n := newTestNormalizer(t)
	fixed := n.Normalize("Ficha Servico 7", "Guimarães")
	mobile := n.Normalize("Ficha S.Movel 7-Leiria", "Serviço Móvel Leiria")
	if fixed.CanonicalName == mobile.CanonicalName {
		t.Fatalf("fixed and mobile tickets sharing number 7 must land in different groups")
	}
}

func TestNormalizeMobileNeverHasStoreNumber(t *testing.T) {
	n := newTestNormalizer(t)
	cases := [][2]string{
		{"Ficha S.Movel 86-Faro", "Faro SM"},
		{"Ficha S.Movel 86", "faro sm"},
		{"Ficha S.Movel 97-Leziria", "Leziria SM"},
		{"Ficha SMovel 33", "Serviço Móvel Caldas"},
	}
	for _, c := range cases {
		id := n.Normalize(c[0], c[1])
		if !id.IsMobileService {
			t.Fatalf("expected mobile service for %q/%q", c[0], c[1])
		}
		if id.StoreNumber != nil {
			t.Fatalf("expected nil store number for %q/%q, got %d", c[0], c[1], *id.StoreNumber)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer(t)
	first := n.Normalize("Ficha S.Movel 64-Vale do Tejo", "Vale do Tejo SM")
	second := n.Normalize("Ficha S.Movel 64-Vale do Tejo", "Vale do Tejo SM")
	if first.CanonicalName != second.CanonicalName || first.IsMobileService != second.IsMobileService {
		t.Fatalf("normalize is not idempotent: %+v vs %+v", first, second)
	}
}

func TestNormalizeCityPrecedence(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha Servico 94", "Loja Porto Alto")
	if id.CanonicalName != "Porto Alto" {
		t.Fatalf("expected Porto Alto to win over Porto, got %q", id.CanonicalName)
	}
}

func TestNormalizeCompositeCityName(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha Servico 10", "Caldas da Rainha")
	if id.CanonicalName != "Caldas da Rainha" {
		t.Fatalf("expected Caldas da Rainha, got %q", id.CanonicalName)
	}
	if id.StoreNumber == nil || *id.StoreNumber != 10 {
		t.Fatalf("expected store number 10, got %v", id.StoreNumber)
	}
}

func TestNormalizeStoreAlias(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha Servico 55", "paredes ii")
	if id.CanonicalName != "Mycarcenter" {
		t.Fatalf("expected alias Mycarcenter, got %q", id.CanonicalName)
	}
}

func TestNormalizeMobileWithoutCity(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha S.Movel 12", "Serviço Móvel Quinta Nova")
	if !id.IsMobileService {
		t.Fatalf("expected mobile service")
	}
	if id.CanonicalName != "Quinta Nova SM" {
		t.Fatalf("expected marker-stripped name with SM suffix, got %q", id.CanonicalName)
	}
}

func TestNormalizeEmptyLabels(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("", "")
	if id.CanonicalName != "" {
		t.Fatalf("expected empty canonical name for empty labels, got %q", id.CanonicalName)
	}
	if id.IsMobileService || id.StoreNumber != nil {
		t.Fatalf("expected zero identity, got %+v", id)
	}
}

func TestNormalizeCitySuffixFallback(t *testing.T) {
	n := newTestNormalizer(t)
	id := n.Normalize("Ficha S.Movel 3-Valverde", "")
	if id.CanonicalName != "Valverde SM" {
		t.Fatalf("expected city from doc-label suffix, got %q", id.CanonicalName)
	}
}

func TestExtractStoreNumberVariants(t *testing.T) {
	cases := map[string]int{
		"Ficha Servico 23":  23,
		"Ficha Serviço 102": 102,
		"ficha  servico 4":  4,
	}
	for label, want := range cases {
		got := extractStoreNumber(label)
		if got == nil || *got != want {
			t.Fatalf("label %q: expected %d, got %v", label, want, got)
		}
	}
	if extractStoreNumber("Ficha Servico 0") != nil {
		t.Fatalf("zero is not a valid store number")
	}
	if extractStoreNumber("Orçamento 12") != nil {
		t.Fatalf("non-ticket labels must not yield a store number")
	}
}
