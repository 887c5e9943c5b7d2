package service

import (
	"errors"
	"net/textproto"
	"strings"
	"testing"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/models"
)

func receiptOrder() *models.Order {
	return &models.Order{
		OrderNo:        "PT20261019000000123456",
		UserEmail:      "buyer@example.com",
		UserName:       "Jane <Doe>",
		OriginalAmount: models.MustMoney("200"),
		DiscountAmount: models.MustMoney("20"),
		Amount:         models.MustMoney("180"),
		AppliedPromoCode: &models.AppliedPromoSnapshot{
			Code: "SAVE10",
		},
		Items: models.OrderItems{
			{
				TakeoffID: 1,
				Title:     "Warehouse Slab",
				Price:     models.MustMoney("200"),
				Quantity:  1,
				Files: []models.FileMeta{
					{Filename: "a.pdf", OriginalName: "slab-plan.pdf", URL: "/uploads/takeoffs/a.pdf"},
				},
			},
			{
				TakeoffID:    2,
				Title:        "Retail Fitout",
				Price:        models.MustMoney("0"),
				Quantity:     1,
				BlueprintURL: "https://cdn.example.com/fitout.zip",
			},
		},
	}
}

func TestBuildReceiptContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:                "receipt_en",
			locale:              i18n.LocaleEN,
			wantSubjectContains: []string{"Your ProTakeoff order", "PT20261019000000123456"},
			wantBodyContains: []string{
				"Hi Jane &lt;Doe&gt;",
				"Warehouse Slab x 1",
				`href="https://shop.example.com/uploads/takeoffs/a.pdf"`,
				"slab-plan.pdf",
				`href="https://cdn.example.com/fitout.zip"`,
				"Discount (SAVE10): -$20.00",
				"Total paid: $180.00",
			},
		},
		{
			name:                "receipt_zh",
			locale:              "zh",
			wantSubjectContains: []string{"您的 ProTakeoff 订单"},
			wantBodyContains:    []string{"感谢您的购买", "实付金额: $180.00", "下载"},
		},
		{
			name:                "receipt_unknown_locale_falls_back",
			locale:              "fr-FR",
			wantSubjectContains: []string{"Your ProTakeoff order"},
			wantBodyContains:    []string{"Subtotal: $200.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, err := buildReceiptContent(receiptOrder(), "https://shop.example.com", tt.locale)
			if err != nil {
				t.Fatalf("build receipt failed: %v", err)
			}
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func TestBuildReceiptContentWithoutDiscount(t *testing.T) {
	order := receiptOrder()
	order.DiscountAmount = models.MustMoney("0")
	order.AppliedPromoCode = nil
	_, body, err := buildReceiptContent(order, "", i18n.LocaleEN)
	if err != nil {
		t.Fatalf("build receipt failed: %v", err)
	}
	if strings.Contains(body, "Discount") {
		t.Fatalf("discount line should be hidden: %s", body)
	}
	if !strings.Contains(body, `href="/uploads/takeoffs/a.pdf"`) {
		t.Fatalf("relative link should be kept without site url: %s", body)
	}
}

func TestBuildContactContent(t *testing.T) {
	subject, body := buildContactContent(&models.ContactMessage{
		Name:    "Sam",
		Email:   "sam@example.com",
		Company: "Sam Homes",
		Subject: "Custom takeoff",
		Message: "Need a quote for a 3 storey build.",
	})
	if !strings.Contains(subject, "Sam") {
		t.Fatalf("subject missing name: %s", subject)
	}
	for _, expected := range []string{"Email: sam@example.com", "Company: Sam Homes", "Subject: Custom takeoff", "3 storey build"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("body missing %q: %s", expected, body)
		}
	}
	if strings.Contains(body, "Phone:") {
		t.Fatalf("empty phone should be omitted: %s", body)
	}
}

func TestBuildContactConfirmation(t *testing.T) {
	msg := &models.ContactMessage{Name: "Sam", Email: "sam@example.com", Message: "Need a quote"}

	subject, body := buildContactConfirmation(msg, "en-US")
	if subject != "We received your message" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.HasPrefix(body, "Hi Sam,") || !strings.Contains(body, "Need a quote") {
		t.Fatalf("unexpected body: %s", body)
	}

	zhSubject, zhBody := buildContactConfirmation(msg, "zh-CN")
	if zhSubject != "我们已收到您的留言" || !strings.HasPrefix(zhBody, "Sam，您好") {
		t.Fatalf("unexpected zh content: %s / %s", zhSubject, zhBody)
	}
}

func TestEmailServiceSendGuards(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendOrderReceipt(receiptOrder(), i18n.LocaleEN); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}

	missingHost := NewEmailService(&config.EmailConfig{Enabled: true, From: "shop@example.com"})
	if err := missingHost.SendOrderReceipt(receiptOrder(), i18n.LocaleEN); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}

	configured := NewEmailService(&config.EmailConfig{Enabled: true, Host: "127.0.0.1", Port: 25, From: "shop@example.com"})
	order := receiptOrder()
	order.UserEmail = "not-an-email"
	if err := configured.SendOrderReceipt(order, i18n.LocaleEN); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email error, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "smtp_reply_code_553",
			err:  &textproto.Error{Code: 553, Msg: "5.1.3 bad destination"},
			want: true,
		},
		{
			name: "smtp_reply_code_421",
			err:  &textproto.Error{Code: 421, Msg: "service not available"},
			want: false,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}

func TestBuildEmailMessageHeaders(t *testing.T) {
	msg := string(buildEmailMessage("ops@example.com", "buyer@example.com", "Receipt", contentTypeHTML, "<p>hi</p>"))
	for _, want := range []string{
		"From: ops@example.com\r\n",
		"To: buyer@example.com\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
		"\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q: %s", want, msg)
		}
	}
}
