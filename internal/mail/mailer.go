package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"
)

const sendAttempts = 3

var resetTemplate = template.Must(template.New("reset").Parse(`
{{define "subject"}}Your password reset code{{end}}

{{define "plainBody"}}Hi,

Use the code {{.Code}} to reset your Goal Tracker password.
The code expires in {{.ExpiresIn}}.

If you did not ask for a reset you can ignore this message.
{{end}}

{{define "htmlBody"}}<!doctype html>
<html>
<body>
<p>Hi,</p>
<p>Use the code <strong>{{.Code}}</strong> to reset your Goal Tracker password.</p>
<p>The code expires in {{.ExpiresIn}}.</p>
<p>If you did not ask for a reset you can ignore this message.</p>
</body>
</html>
{{end}}
`))

// Mailer delivers password reset codes over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
	logger *zap.Logger
}

// New returns a Mailer. With an empty host it only logs that delivery was skipped.
func New(host string, port int, username, password, sender string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{sender: sender, logger: logger}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
		m.dialer.Timeout = 10 * time.Second
	}
	return m
}

// SendPasswordReset mails the reset code to the given address.
func (m *Mailer) SendPasswordReset(to, code string, ttl time.Duration) error {
	if m.dialer == nil {
		m.logger.Warn("smtp not configured, password reset mail skipped")
		return nil
	}

	msg, err := m.build(to, resetData{Code: code, ExpiresIn: ttl.String()})
	if err != nil {
		return err
	}
	for i := 0; i < sendAttempts; i++ {
		if err = m.dialer.DialAndSend(msg); err == nil {
			return nil
		}
	}
	return fmt.Errorf("send password reset mail: %w", err)
}

type resetData struct {
	Code      string
	ExpiresIn string
}

func (m *Mailer) build(to string, data resetData) (*gomail.Message, error) {
	var subject, plainBody, htmlBody bytes.Buffer
	if err := resetTemplate.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}
	if err := resetTemplate.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return nil, err
	}
	if err := resetTemplate.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())
	return msg, nil
}
