package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"zh":          LocaleZH,
		"zh_CN":       LocaleZH,
		"en-GB":       LocaleEN,
		"EN":          LocaleEN,
		"fr-FR":       "",
		"":            "",
		"zh-TW;q=0.8": LocaleZH,
	}
	for input, want := range cases {
		if got := NormalizeLocale(input); got != want {
			t.Fatalf("NormalizeLocale(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolveLocalePrefersQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=zh", nil)
	c.Request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if got := ResolveLocale(c); got != LocaleZH {
		t.Fatalf("expected zh locale, got %s", got)
	}

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "fr-FR, zh-CN;q=0.8")
	if got := ResolveLocale(c); got != LocaleZH {
		t.Fatalf("expected fallback to first supported header locale, got %s", got)
	}

	if got := ResolveLocale(nil); got != DefaultLocale {
		t.Fatalf("expected default locale, got %s", got)
	}
}

func TestTFallsBack(t *testing.T) {
	if got := T(LocaleZH, "error.promo_not_valid"); got != "优惠码无效或已过期" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T("xx", "error.promo_not_valid"); got != "Promo code is not valid or has expired" {
		t.Fatalf("unexpected fallback message: %s", got)
	}
	if got := T(LocaleEN, "error.unknown_key"); got != "error.unknown_key" {
		t.Fatalf("expected key echo, got %s", got)
	}
	if got := Sprintf(LocaleEN, "error.promo_below_minimum", "50.00"); got != "Minimum order amount of $50.00 required" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range messagesEN {
		if _, ok := messagesZH[key]; !ok {
			t.Fatalf("zh catalog missing key %s", key)
		}
	}
	for key := range messagesZH {
		if _, ok := messagesEN[key]; !ok {
			t.Fatalf("en catalog missing key %s", key)
		}
	}
}
