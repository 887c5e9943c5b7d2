package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/models"
)

const (
	contentTypePlain = "text/plain"
	contentTypeHTML  = "text/html"

	smtpDialTimeout    = 10 * time.Second
	smtpSessionTimeout = 30 * time.Second
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否启用邮件发送
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderReceipt 发送订单收据（含图纸下载链接）
func (s *EmailService) SendOrderReceipt(order *models.Order, locale string) error {
	if order == nil {
		return ErrOrderNotFound
	}
	subject, body, err := buildReceiptContent(order, s.siteURL(), locale)
	if err != nil {
		return err
	}
	return s.send(order.UserEmail, subject, contentTypeHTML, body)
}

// SendContactNotification 将联系留言转发给运营邮箱
func (s *EmailService) SendContactNotification(toEmail string, msg *models.ContactMessage) error {
	if msg == nil {
		return ErrContactNotFound
	}
	subject, body := buildContactContent(msg)
	return s.send(toEmail, subject, contentTypePlain, body)
}

// SendContactConfirmation 给留言人发送已收到回执
func (s *EmailService) SendContactConfirmation(msg *models.ContactMessage, locale string) error {
	if msg == nil {
		return ErrContactNotFound
	}
	subject, body := buildContactConfirmation(msg, locale)
	return s.send(msg.Email, subject, contentTypePlain, body)
}

func (s *EmailService) siteURL() string {
	if s.cfg == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s.cfg.SiteURL), "/")
}

func (s *EmailService) send(toEmail, subject, contentType, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, contentType, body)
	return normalizeEmailSendError(deliverSMTP(s.cfg, toEmail, msg))
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<html><body style="font-family:Arial,sans-serif;color:#222">
<p>{{.Greeting}}</p>
<p><strong>{{.OrderNo}}</strong></p>
<table cellpadding="6" style="border-collapse:collapse">
{{range .Items}}<tr><td>{{.Title}} x {{.Quantity}}</td><td>${{.Price}}</td><td>{{range .Links}}<a href="{{.URL}}">{{.Label}}</a><br>{{end}}</td></tr>
{{end}}</table>
<p>{{.SubtotalLabel}}: ${{.Subtotal}}</p>
{{if .HasDiscount}}<p>{{.DiscountLabel}}{{if .PromoCode}} ({{.PromoCode}}){{end}}: -${{.Discount}}</p>{{end}}
<p><strong>{{.TotalLabel}}: ${{.Total}}</strong></p>
</body></html>`))

type receiptLink struct {
	Label string
	URL   string
}

type receiptLine struct {
	Title    string
	Quantity int
	Price    string
	Links    []receiptLink
}

type receiptView struct {
	Greeting      string
	OrderNo       string
	Items         []receiptLine
	SubtotalLabel string
	Subtotal      string
	HasDiscount   bool
	DiscountLabel string
	Discount      string
	PromoCode     string
	TotalLabel    string
	Total         string
}

func buildReceiptContent(order *models.Order, siteURL, locale string) (string, string, error) {
	locale = normalizeLocale(locale)
	name := strings.TrimSpace(order.UserName)
	if name == "" {
		name = order.UserEmail
	}
	view := receiptView{
		Greeting:      i18n.Sprintf(locale, "email.receipt.greeting", name),
		OrderNo:       order.OrderNo,
		SubtotalLabel: i18n.T(locale, "email.receipt.subtotal"),
		Subtotal:      order.OriginalAmount.String(),
		HasDiscount:   order.DiscountAmount.Decimal.IsPositive(),
		DiscountLabel: i18n.T(locale, "email.receipt.discount"),
		Discount:      order.DiscountAmount.String(),
		TotalLabel:    i18n.T(locale, "email.receipt.total"),
		Total:         order.Amount.String(),
	}
	if order.AppliedPromoCode != nil {
		view.PromoCode = order.AppliedPromoCode.Code
	}
	download := i18n.T(locale, "email.receipt.download")
	for _, item := range order.Items {
		line := receiptLine{Title: item.Title, Quantity: item.Quantity, Price: item.Price.String()}
		for _, file := range item.Files {
			label := file.OriginalName
			if label == "" {
				label = file.Filename
			}
			line.Links = append(line.Links, receiptLink{Label: label, URL: absoluteURL(siteURL, file.URL)})
		}
		if len(line.Links) == 0 && item.BlueprintURL != "" {
			line.Links = append(line.Links, receiptLink{Label: download, URL: absoluteURL(siteURL, item.BlueprintURL)})
		}
		view.Items = append(view.Items, line)
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return "", "", err
	}
	return i18n.Sprintf(locale, "email.receipt.subject", order.OrderNo), buf.String(), nil
}

func buildContactContent(msg *models.ContactMessage) (string, string) {
	subject := i18n.Sprintf(i18n.DefaultLocale, "email.contact.subject", msg.Name)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Name: %s\n", msg.Name))
	b.WriteString(fmt.Sprintf("Email: %s\n", msg.Email))
	if msg.Company != "" {
		b.WriteString(fmt.Sprintf("Company: %s\n", msg.Company))
	}
	if msg.Phone != "" {
		b.WriteString(fmt.Sprintf("Phone: %s\n", msg.Phone))
	}
	if msg.Subject != "" {
		b.WriteString(fmt.Sprintf("Subject: %s\n", msg.Subject))
	}
	b.WriteString("\n")
	b.WriteString(msg.Message)
	return subject, b.String()
}

func buildContactConfirmation(msg *models.ContactMessage, locale string) (string, string) {
	locale = normalizeLocale(locale)
	subject := i18n.T(locale, "email.contact_confirm.subject")
	body := i18n.Sprintf(locale, "email.contact_confirm.body", msg.Name, msg.Message)
	return subject, body
}

func absoluteURL(siteURL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || siteURL == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return siteURL + link
}

func normalizeLocale(locale string) string {
	if normalized := i18n.NormalizeLocale(locale); normalized != "" {
		return normalized
	}
	return i18n.DefaultLocale
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, contentType, body string) []byte {
	var buf bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("UTF-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", contentType + "; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// deliverSMTP 建立连接（SSL 直连或明文后按需 STARTTLS），认证后投递一封邮件
func deliverSMTP(cfg *config.EmailConfig, to string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if cfg.UseSSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(smtpSessionTimeout))

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if cfg.UseTLS && !cfg.UseSSL {
		if err := client.StartTLS(tlsCfg); err != nil {
			return err
		}
	}
	if cfg.Username != "" || cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// normalizeEmailSendError 收件人被拒不可重试，单独映射
func normalizeEmailSendError(err error) error {
	if err != nil && isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

var recipientRejectKeywords = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 550, 551, 553:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range recipientRejectKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}
