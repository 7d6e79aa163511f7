package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/redmonkez12/go-accounts-api/internal/config"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	productName  string
	baseURL      string

	send sendFunc
}

// NewService builds the SMTP notifier. baseURL is the public address of the
// API and prefixes every verification link.
func NewService(cfg config.EmailConfig, baseURL string) *Service {
	from := cfg.From
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    from,
		productName:  cfg.ProductName,
		baseURL:      strings.TrimRight(baseURL, "/"),
		send:         smtp.SendMail,
	}
}

// VerificationLink is the URL that consumes token
func (s *Service) VerificationLink(token string) string {
	return fmt.Sprintf("%s/api/users/verify/%s", s.baseURL, url.PathEscape(token))
}

// SendVerificationEmail sends the verification link to the account owner.
// Called from a background goroutine; the caller only logs the error.
func (s *Service) SendVerificationEmail(ctx context.Context, token, toEmail, name string) error {
	logger := logging.GetLoggerFromContext(ctx).WithFields(map[string]any{"email": toEmail})

	link := s.VerificationLink(token)

	if s.smtpHost == "" {
		logger.Warn("SMTP not configured, verification email skipped", "link", link)
		return nil
	}

	subject := fmt.Sprintf("Verify your email for %s", s.productName)
	body, err := s.renderVerificationEmail(name, link)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent")
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #22BC66;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .button {
            display: inline-block;
            background-color: #22BC66;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Product}}</h1>
    </div>
    <div class="content">
        <h2>Hi{{if .Name}} {{.Name}}{{end}},</h2>
        <p>Welcome to {{.Product}}! We're very excited to have you on board.</p>
        <p>To get started with {{.Product}}, please click here:</p>

        <a href="{{.Link}}" class="button" style="color: white !important;">Confirm your account</a>

        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all; color: #22BC66;">{{.Link}}</p>

        <p style="margin-top: 30px;">If you didn't create an account, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>{{.Product}}</p>
    </div>
</body>
</html>
`))

func (s *Service) renderVerificationEmail(name, link string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Product string
		Name    string
		Link    string
	}{
		Product: s.productName,
		Name:    name,
		Link:    link,
	}

	if err := verificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
