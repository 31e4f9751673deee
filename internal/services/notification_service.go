// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/config"
	"github.com/marketlink/backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":         user.FullName(),
		"PlatformName": s.config.Email.FromName,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

// SendOrderConfirmedEmail tells the buyer their order is in progress.
func (s *NotificationService) SendOrderConfirmedEmail(order *models.Order) error {
	tmpl := s.getEmailTemplate("order_confirmed")

	data := map[string]interface{}{
		"Name":    order.User.FullName(),
		"OrderID": order.ID.String(),
		"Status":  string(order.Status),
		"Total":   fmt.Sprintf("%.2f", order.Total()),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(order.User.Email, tmpl.Subject, body)
}

// SendNewOrderEmail tells a supplier that a placed order contains their
// listings.
func (s *NotificationService) SendNewOrderEmail(shop *models.Shop, order *models.Order) error {
	if shop.User == nil || shop.User.Email == "" {
		logrus.WithField("shop", shop.Name).Warn("Shop has no owner email, skipping new-order notice")
		return nil
	}

	tmpl := s.getEmailTemplate("new_order")

	data := map[string]interface{}{
		"ShopName": shop.Name,
		"OrderID":  order.ID.String(),
		"Buyer":    order.User.Username,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(shop.User.Email, tmpl.Subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" || s.config.Email.SMTPHost == "localhost" && s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email transport not configured, skipping send")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to MarketLink",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thank you for joining {{.PlatformName}}. You can now browse the catalog and place orders.</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"order_confirmed": {
			Subject: "Your order is confirmed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your order {{.OrderID}} has been confirmed and is now being processed.</p>
	<p>Current status: {{.Status}}. Order total: {{.Total}}.</p>
	<p>Best regards,<br>MarketLink Team</p>
</body>
</html>`,
		},
		"new_order": {
			Subject: "New order received",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>New order for {{.ShopName}}</h2>
	<p>Order {{.OrderID}} from {{.Buyer}} contains items from your shop.</p>
	<p>Please review it in your supplier dashboard.</p>
	<p>Best regards,<br>MarketLink Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
