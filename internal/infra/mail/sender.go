package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/smarttech/leadflow/internal/entity"
)

const hotLeadTemplate = `
<h2>Hot lead qualified 🔥</h2>
<p>The sales assistant just qualified a conversation as a hot lead.</p>
<ul>
  <li><strong>Lead:</strong> {{.Email}}</li>
  <li><strong>Qualification:</strong> {{.Tag}}</li>
  <li><strong>Lead ID:</strong> {{.LeadID}}</li>
</ul>
{{if .LastMessage}}<p><strong>Last reply:</strong> {{.LastMessage}}</p>{{end}}
<p>Follow up before the Calendly slot goes cold.</p>
`

func NewEmailSender(host string, port int, user, password, salesTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		SalesTo:  salesTo,
	}
}

// SendHotLeadAlert notifies the sales team that a conversation finalized as a
// hot lead. Best effort; the caller logs and moves on.
func (s *EmailSender) SendHotLeadAlert(lead *entity.Lead) error {
	data := HotLeadEmailData{
		LeadID: lead.ID,
		Email:  lead.Email,
		Tag:    string(lead.RelevanceTag),
	}
	if n := len(lead.ChatHistory); n > 0 {
		data.LastMessage = lead.ChatHistory[n-1].Message
	}

	t, err := template.New("hotlead").Parse(hotLeadTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse alert template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "no-reply@smarttech.dev")
	m.SetHeader("To", s.SalesTo)
	m.SetHeader("Subject", fmt.Sprintf("Hot lead: %s", lead.Email))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}
