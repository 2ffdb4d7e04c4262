package message

import (
	"context"
	"log"

	"token-scanner/internal/core"
)

// AlertNotifier fans one alert out to every configured channel. Telegram is
// the primary channel and its error is the one returned; Kafka and email are
// side channels whose failures are logged and swallowed.
type AlertNotifier struct {
	telegram *TelegramSender
	chatID   string

	publisher *KafkaAlertPublisher // optional
	email     MessageSender        // optional
	recipient string
}

// NewAlertNotifier creates a notifier delivering to the given Telegram chat.
// publisher and email may be nil; recipientEmail is only used when email is
// set.
func NewAlertNotifier(telegram *TelegramSender, chatID string, publisher *KafkaAlertPublisher, email MessageSender, recipientEmail string) *AlertNotifier {
	return &AlertNotifier{
		telegram:  telegram,
		chatID:    chatID,
		publisher: publisher,
		email:     email,
		recipient: recipientEmail,
	}
}

// Notify delivers the alert to all channels.
func (n *AlertNotifier) Notify(ctx context.Context, alert *core.TokenAlert) error {
	err := n.telegram.SendAlert(n.chatID, alert)

	if n.publisher != nil {
		if perr := n.publisher.SendAlert(ctx, alert); perr != nil {
			log.Printf("⚠️  Kafka publish failed: %v", perr)
		}
	}

	if n.email != nil && n.recipient != "" {
		if eerr := n.email.SendAlert(n.recipient, alert); eerr != nil {
			log.Printf("⚠️  Email alert failed: %v", eerr)
		}
	}

	return err
}
