package notifier

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"monitor-apartamentos/internal/models"
)

// EmailSender envia o resumo de notificações por SMTP
type EmailSender struct {
	host       string
	port       int
	sender     string
	password   string
	recipients []string
}

// NewEmailSender cria uma nova instância do remetente de email
func NewEmailSender(host string, port int, sender, password string, recipients []string) *EmailSender {
	return &EmailSender{
		host:       host,
		port:       port,
		sender:     sender,
		password:   password,
		recipients: recipients,
	}
}

// Send monta e envia o email com uma linha por notificação
func (e *EmailSender) Send(notifications []models.Notification) error {
	subject, body, err := Digest(notifications)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.sender, strings.Join(e.recipients, ", "), subject, body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.sender, e.password, e.host)
	if err := smtp.SendMail(addr, auth, e.sender, e.recipients, []byte(msg)); err != nil {
		return fmt.Errorf("erro ao enviar email: %v", err)
	}

	log.Printf("Email enviado para %d destinatários", len(e.recipients))
	return nil
}
