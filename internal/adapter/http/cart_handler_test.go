package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

func TestRejectMessage_Localization(t *testing.T) {
	en := rejectMessage(interfaces.ReasonExpired, 0, domain.LanguageEnglish)
	if en != "This coupon has expired" {
		t.Errorf("unexpected english message %q", en)
	}

	sv := rejectMessage(interfaces.ReasonExpired, 0, domain.LanguageSwedish)
	if sv != "Rabattkoden har gått ut" {
		t.Errorf("unexpected swedish message %q", sv)
	}
}

func TestRejectMessage_ShortfallQuoted(t *testing.T) {
	msg := rejectMessage(interfaces.ReasonMinimumOrder, 50, domain.LanguageEnglish)
	if !strings.Contains(msg, "50 kr") {
		t.Errorf("expected shortfall amount in message, got %q", msg)
	}

	msg = rejectMessage(interfaces.ReasonMinimumOrder, 12.5, domain.LanguageSwedish)
	if !strings.Contains(msg, "12.5 kr") {
		t.Errorf("expected shortfall amount in message, got %q", msg)
	}
}

func TestRejectMessage_UnknownReasonFallsBackToInvalid(t *testing.T) {
	msg := rejectMessage(interfaces.ReasonInvalid, 0, domain.LanguageEnglish)
	if msg != "Invalid coupon code" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestRequestLanguage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/cart?lang=sv", nil)
	if lang := requestLanguage(r); lang != domain.LanguageSwedish {
		t.Errorf("expected swedish from query, got %s", lang)
	}

	r = httptest.NewRequest("GET", "/api/cart", nil)
	r.Header.Set("Accept-Language", "sv-SE,sv;q=0.9")
	if lang := requestLanguage(r); lang != domain.LanguageSwedish {
		t.Errorf("expected swedish from header, got %s", lang)
	}

	r = httptest.NewRequest("GET", "/api/cart", nil)
	if lang := requestLanguage(r); lang != domain.LanguageEnglish {
		t.Errorf("expected english default, got %s", lang)
	}
}

func TestSessionID_MintsWhenMissing(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/cart", nil)

	id := sessionID(w, r)
	if id == "" {
		t.Fatal("expected a minted session id")
	}
	if echoed := w.Header().Get(sessionHeader); echoed != id {
		t.Errorf("expected minted id echoed in response header, got %q", echoed)
	}

	r.Header.Set(sessionHeader, "sess-existing")
	if got := sessionID(httptest.NewRecorder(), r); got != "sess-existing" {
		t.Errorf("expected existing session id kept, got %q", got)
	}
}
