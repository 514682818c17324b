// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"
)

// EscalationAlert carries the context a human agent needs to pick up a
// conversation that the bot handed off.
type EscalationAlert struct {
	UserId    string
	SessionId string
	Message   string
	Reason    string
	Time      time.Time
}

type IEmailService interface {
	SendEscalationAlert(toEmail string, alert EscalationAlert) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendEscalationAlert(toEmail string, alert EscalationAlert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("人工客服转接提醒 - 会话 %s", alert.SessionId))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>用户请求人工客服</h2>
			<p><b>用户:</b> %s</p>
			<p><b>会话:</b> %s</p>
			<p><b>时间:</b> %s</p>
			<p><b>原因:</b> %s</p>
			<p><b>用户消息:</b></p>
			<blockquote style="border-left: 3px solid #007BFF; padding-left: 10px; color: #555;">%s</blockquote>
			<p>请尽快在客服工作台接入该会话。</p>
		</div>
	`,
		html.EscapeString(alert.UserId),
		html.EscapeString(alert.SessionId),
		alert.Time.Format("2006-01-02 15:04:05"),
		html.EscapeString(alert.Reason),
		html.EscapeString(alert.Message),
	)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send escalation alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Escalation alert sent to %s\n", toEmail)
	return nil
}
