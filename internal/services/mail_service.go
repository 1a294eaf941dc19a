// services/mail_service.go
package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	textTemplate "text/template"
	"time"

	"storefront/internal/notifier"
	"storefront/pkg/utils"
)

type IMailService interface {
	SendMailToNotifyUser(
		ctx context.Context, to, subject, body, ctaText, ctaURL string,
	) error
	SendOrderConfirmation(ctx context.Context, evt notifier.OrderConfirmedEvent) error
}

// SMTPConfig holds SMTP + branding config.
type SMTPConfig struct {
	Host       string // e.g. "smtp.gmail.com"
	Port       int    // 587 (STARTTLS) or 465 (SMTPS)
	Username   string
	Password   string
	From       string // envelope from
	FromName   string // display name
	UseSSL     bool   // true for SMTPS 465
	RequireTLS bool   // fail if STARTTLS is not offered

	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	textTpl *textTemplate.Template
}

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	htmlTpl, err := template.New("html").Parse(baseHTMLTemplate)
	if err != nil {
		return nil, err
	}
	textTpl, err := textTemplate.New("text").Parse(plainTextTemplate)
	if err != nil {
		return nil, err
	}

	return &smtpMailService{
		cfg:     cfg,
		htmlTpl: htmlTpl,
		textTpl: textTpl,
	}, nil
}

// ------------------- Public API -------------------

func (s *smtpMailService) SendMailToNotifyUser(
	ctx context.Context, to, subject, body, ctaText, ctaURL string,
) error {
	html, text, err := s.renderEmail(EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
		AppName:   s.cfg.AppName,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subject, html, text)
}

func (s *smtpMailService) SendOrderConfirmation(ctx context.Context, evt notifier.OrderConfirmedEvent) error {
	if strings.TrimSpace(evt.CustomerEmail) == "" {
		return fmt.Errorf("order %d has no customer email", evt.OrderID)
	}

	subject := fmt.Sprintf("Order #%d confirmed", evt.OrderID)
	html, text, err := s.renderEmail(orderConfirmationData(s.cfg, evt))
	if err != nil {
		return err
	}
	return s.send(ctx, evt.CustomerEmail, subject, html, text)
}

// ------------------- Rendering -------------------

type EmailLine struct {
	Label string
	Value string
}

type EmailData struct {
	Title     string
	Intro     string
	Lines     []EmailLine
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

func orderConfirmationData(cfg SMTPConfig, evt notifier.OrderConfirmedEvent) EmailData {
	greeting := "Hi"
	if name := strings.TrimSpace(evt.CustomerName); name != "" {
		greeting = "Hi " + name
	}

	lines := []EmailLine{
		{Label: "Order", Value: fmt.Sprintf("#%d", evt.OrderID)},
		{Label: "Amount paid", Value: strings.TrimSpace(evt.Currency + " " + evt.TotalAmount.StringFixed(2))},
	}
	if evt.PaymentID != "" {
		lines = append(lines, EmailLine{Label: "Payment reference", Value: evt.PaymentID})
	}
	if !evt.ConfirmedAt.IsZero() {
		lines = append(lines, EmailLine{Label: "Confirmed at", Value: utils.FormatDisplayIST(evt.ConfirmedAt)})
	}

	return EmailData{
		Title:     "Your order is confirmed",
		Intro:     greeting + ", we have received your payment and your order is being prepared.",
		Lines:     lines,
		ButtonURL: fmt.Sprintf("%s/orders/%d", strings.TrimRight(cfg.AppBaseURL, "/"), evt.OrderID),
		ButtonTxt: "View order",
		AppName:   cfg.AppName,
		Year:      time.Now().Year(),
	}
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f4f1ec; color: #2b2b2b; font-family: Georgia, "Times New Roman", serif; }
    .wrapper { width: 100%; padding: 32px 12px; box-sizing: border-box; }
    .container { max-width: 560px; margin: 0 auto; background: #ffffff; border: 1px solid #e4ded4; border-radius: 8px; }
    .header { padding: 24px 28px; border-bottom: 1px solid #efe9df; font-size: 20px; letter-spacing: 1px; color: #8a5a2b; }
    .body { padding: 28px; }
    h1 { margin: 0 0 12px; font-size: 24px; font-weight: normal; }
    p { margin: 0 0 18px; line-height: 1.6; }
    table.summary { width: 100%; border-collapse: collapse; margin: 8px 0 20px; }
    table.summary td { padding: 8px 0; border-bottom: 1px dashed #e4ded4; font-size: 15px; }
    table.summary td.value { text-align: right; font-family: Menlo, Consolas, monospace; }
    .btn { display: inline-block; padding: 12px 24px; background: #8a5a2b; color: #ffffff !important; text-decoration: none; border-radius: 4px; }
    .muted { color: #7a7268; font-size: 13px; word-break: break-all; }
    .footer { padding: 16px 28px; color: #7a7268; font-size: 12px; text-align: center; border-top: 1px solid #efe9df; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="container">
      <div class="header">{{.AppName}}</div>
      <div class="body">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{if .Lines}}
        <table class="summary">
          {{range .Lines}}<tr><td>{{.Label}}</td><td class="value">{{.Value}}</td></tr>{{end}}
        </table>
        {{end}}
        {{if .ButtonURL}}
        <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
        <p class="muted">Or open {{.ButtonURL}}</p>
        {{end}}
      </div>
      <div class="footer">© {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{range .Lines}}
{{.Label}}: {{.Value}}{{end}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// ------------------- SMTP Send -------------------

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *smtpMailService) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := s.buildMessage(to, subject, htmlBody, textBody)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		// SMTPS (implicit TLS, usually 465)
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("UTF-8", name), s.cfg.From)
}
