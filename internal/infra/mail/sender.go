package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/omerdahan/whatsapp-rsvp/internal/infra/queue"
)

const needsAttentionTemplate = `
<html>
  <body>
    <p>A guest reply could not be classified automatically and needs your review.</p>
    <ul>
      <li><b>Guest:</b> {{.GuestName}}</li>
      <li><b>Phone:</b> {{.Phone}}</li>
      <li><b>Reply:</b> {{.Reply}}</li>
    </ul>
    <p>Open the dashboard to resolve their RSVP.</p>
  </body>
</html>`

var needsAttentionTmpl = template.Must(template.New("needs-attention").Parse(needsAttentionTemplate))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// NotifyNeedsAttention emails the organizer about a reply the
// interpreter could not resolve.
func (s *EmailSender) NotifyNeedsAttention(payload queue.StatusChangePayload) error {
	data := NeedsAttentionEmailData{
		GuestName: payload.Name,
		Phone:     payload.Phone,
		Reply:     payload.ResponseMessage,
	}

	var body bytes.Buffer
	if err := needsAttentionTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("RSVP needs attention: %s", payload.Name))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}

	return nil
}
