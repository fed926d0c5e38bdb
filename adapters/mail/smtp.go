package mail

import (
	"fmt"

	gomail "gopkg.in/mail.v2"
)

// SMTPSender 透過 SMTP 寄出信件，實作 ISender
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// SMTPConfig 是 SMTP 連線設定
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// UseSSL 為 true 時以 SMTPS (通常是 465 port) 連線
	UseSSL bool
}

// NewSMTPSender 建立新的 SMTPSender
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	dialer.SSL = config.UseSSL
	return &SMTPSender{dialer: dialer, from: config.From}
}

// Send 寄出一封純文字信件
func (s *SMTPSender) Send(msg Message) error {
	const op = "SMTPSender.Send"

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("[%s] Fail to send mail, err=%w", op, err)
	}
	return nil
}
