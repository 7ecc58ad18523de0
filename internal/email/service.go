package email

import (
	"fmt"
	"net/smtp"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
)

// Service sends transactional mail via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{host: host, port: port, from: from}
}

// SendSaleConfirmation mails the customer an order confirmation for a
// newly recorded sale.
func (s *Service) SendSaleConfirmation(to string, sl sale.Sale) error {
	shortID := sl.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	subject := fmt.Sprintf("WearShop - Thank you for your order (#%s)", shortID)
	body := BuildSaleConfirmationBody(sl)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
