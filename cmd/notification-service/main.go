package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"token-scanner/internal/message"

	kafka "github.com/segmentio/kafka-go"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	brokers := envSlice("KAFKA_BROKERS", "localhost:9092")
	resendKey := os.Getenv("RESEND_API_KEY")
	resendFrom := os.Getenv("RESEND_FROM_EMAIL")
	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")

	if telegramToken == "" && (resendKey == "" || resendFrom == "") {
		log.Fatal("Set TELEGRAM_BOT_TOKEN or RESEND_API_KEY + RESEND_FROM_EMAIL")
	}

	var resend *message.ResendEmailSender
	if resendKey != "" && resendFrom != "" {
		resend = message.NewResendEmailSender(resendKey, resendFrom)
		log.Println("📧 Email notifications enabled")
	} else {
		log.Println("ℹ️  RESEND_API_KEY not set — email notifications disabled")
	}

	var tg *message.TelegramSender
	if telegramToken != "" {
		tg = message.NewTelegramSender(telegramToken)
		log.Println("📨 Telegram notifications enabled")
	} else {
		log.Println("ℹ️  TELEGRAM_BOT_TOKEN not set — Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Block until the Kafka group coordinator is truly ready.
	// kafka.NewReader with a GroupID spawns a background goroutine that immediately
	// calls JoinGroup. Creating readers before the coordinator is ready floods the
	// logs with "Group Coordinator Not Available" errors from that goroutine.
	waitForGroupCoordinator(ctx, brokers)

	// For any consumer group that has no committed offset (fresh deploy, first run,
	// or after a coordinator failure that prevented committing), explicitly commit
	// the earliest available offset so the group starts from the beginning.
	// Groups that already have a committed offset are left completely untouched —
	// no duplicate alerts on normal restarts.
	initConsumerGroupOffsets(ctx, brokers, []consumerSpec{
		{"notification-service-mint", message.TopicMintAlert},
		{"notification-service-buy", message.TopicBuyAlert},
	})

	go consumeAlerts(ctx, brokers, message.TopicMintAlert, "notification-service-mint", resend, tg)
	go consumeAlerts(ctx, brokers, message.TopicBuyAlert, "notification-service-buy", resend, tg)

	log.Printf("🔔 Notification service started. Listening on brokers: %v", brokers)
	log.Println("Press Ctrl+C to stop...")

	<-sigChan
	log.Println("🛑 Shutting down notification service...")
	cancel()
	time.Sleep(1 * time.Second)
	log.Println("✅ Shutdown complete")
}

// consumeAlerts reads token alert events from one topic and delivers them to
// the channels named on each event.
func consumeAlerts(ctx context.Context, brokers []string, topic, groupID string, resend *message.ResendEmailSender, tg *message.TelegramSender) {
	consumeWithBackoff(ctx, brokers, topic, groupID,
		func(ctx context.Context, r *kafka.Reader) error {
			msg, err := r.FetchMessage(ctx)
			if err != nil {
				return err
			}
			var event message.TokenAlertEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("⚠️  [%s] unmarshal error: %v", topic, err)
				_ = r.CommitMessages(ctx, msg)
				return nil
			}
			alert := event.ToAlert()
			if tg != nil && event.TelegramChatID != "" {
				if err := tg.SendAlert(event.TelegramChatID, alert); err != nil {
					log.Printf("❌ [%s] failed to send Telegram to chat %s: %v", topic, event.TelegramChatID, err)
				} else {
					log.Printf("✅ [%s] sent Telegram alert for %s to chat %s", topic, event.Symbol, event.TelegramChatID)
				}
			}
			if resend != nil && event.RecipientEmail != "" {
				if err := resend.SendAlert(event.RecipientEmail, alert); err != nil {
					log.Printf("❌ [%s] failed to send email to %s: %v", topic, event.RecipientEmail, err)
				} else {
					log.Printf("✅ [%s] sent email alert for %s to %s", topic, event.Symbol, event.RecipientEmail)
				}
			}
			_ = r.CommitMessages(ctx, msg)
			return nil
		},
	)
}

// consumeWithBackoff runs the consume loop for a topic/group, recreating the reader with
// exponential backoff whenever FetchMessage returns a persistent error. This handles transient
// broker errors (e.g. "Group Coordinator Not Available") without spinning the CPU.
func consumeWithBackoff(
	ctx context.Context,
	brokers []string,
	topic, groupID string,
	handle func(context.Context, *kafka.Reader) error,
) {
	log.Printf("🔄 [%s] consumer goroutine started, waiting for messages...", topic)

	const (
		backoffMin = 2 * time.Second
		backoffMax = 60 * time.Second
	)
	backoff := backoffMin

	for {
		if ctx.Err() != nil {
			return
		}

		r := newReader(brokers, topic, groupID)
		for {
			if err := handle(ctx, r); err != nil {
				if ctx.Err() != nil {
					r.Close()
					return
				}
				log.Printf("⚠️  [%s] read error (retrying in %v): %v", topic, backoff, err)
				r.Close()
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				// Exponential backoff, capped at backoffMax
				backoff *= 2
				if backoff > backoffMax {
					backoff = backoffMax
				}
				break // recreate the reader
			}
			backoff = backoffMin // reset on successful message
		}
	}
}

type consumerSpec struct {
	groupID string
	topic   string
}

// initConsumerGroupOffsets ensures every consumer group starts from the earliest
// available message when no committed offset exists. On normal restarts the group
// already has a committed offset, so this function is a no-op and duplicate alerts
// are never sent.
func initConsumerGroupOffsets(ctx context.Context, brokers []string, specs []consumerSpec) {
	if len(brokers) == 0 {
		return
	}
	client := &kafka.Client{
		Addr:    kafka.TCP(brokers[0]),
		Timeout: 10 * time.Second,
	}
	for _, spec := range specs {
		// Check whether the group already has a committed offset for partition 0.
		fetchResp, err := client.OffsetFetch(ctx, &kafka.OffsetFetchRequest{
			GroupID: spec.groupID,
			Topics:  map[string][]int{spec.topic: {0}},
		})
		if err != nil {
			log.Printf("⚠️  [%s] offset check failed: %v", spec.groupID, err)
			continue
		}
		partitions := fetchResp.Topics[spec.topic]
		if len(partitions) == 0 {
			continue
		}
		p := partitions[0]
		if p.Error != nil || p.CommittedOffset >= 0 {
			// Already has a valid committed offset — leave it alone.
			if p.CommittedOffset >= 0 {
				log.Printf("📌 [%s/%s] committed offset=%d, resuming from there", spec.groupID, spec.topic, p.CommittedOffset)
			}
			continue
		}

		// No committed offset: dial the partition leader and read the earliest offset.
		conn, err := kafka.DialLeader(ctx, "tcp", brokers[0], spec.topic, 0)
		if err != nil {
			log.Printf("⚠️  [%s] dial leader error: %v", spec.groupID, err)
			continue
		}
		first, _, err := conn.ReadOffsets()
		conn.Close()
		if err != nil {
			log.Printf("⚠️  [%s] read offsets error: %v", spec.groupID, err)
			continue
		}

		// Commit the earliest offset so kafka-go starts consuming from there.
		if _, err = client.OffsetCommit(ctx, &kafka.OffsetCommitRequest{
			GroupID:      spec.groupID,
			GenerationID: -1, // -1 = standalone commit outside an active group session
			Topics: map[string][]kafka.OffsetCommit{
				spec.topic: {{Partition: 0, Offset: first}},
			},
		}); err != nil {
			log.Printf("⚠️  [%s] offset init failed: %v", spec.groupID, err)
			continue
		}
		log.Printf("📌 [%s/%s] no prior offset found, initialized to %d (earliest)", spec.groupID, spec.topic, first)
	}
}

// waitForGroupCoordinator polls the Kafka group coordinator API with exponential backoff
// until it responds successfully. Using kafka.Client.FindCoordinator directly avoids
// creating a full Reader (which would itself trigger the noisy background join goroutine).
func waitForGroupCoordinator(ctx context.Context, brokers []string) {
	if len(brokers) == 0 || ctx.Err() != nil {
		return
	}
	client := &kafka.Client{
		Addr:    kafka.TCP(brokers[0]),
		Timeout: 5 * time.Second,
	}
	backoff := 1 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		resp, err := client.FindCoordinator(ctx, &kafka.FindCoordinatorRequest{
			Addr:    kafka.TCP(brokers[0]),
			Key:     "__notification_healthcheck__",
			KeyType: kafka.CoordinatorKeyTypeConsumer,
		})
		if err == nil && resp.Error == nil {
			log.Printf("✅ Kafka group coordinator is ready")
			return
		}
		reason := "unknown"
		if err != nil {
			reason = err.Error()
		} else if resp.Error != nil {
			reason = resp.Error.Error()
		}
		log.Printf("⏳ Waiting for Kafka group coordinator (%s), retrying in %v...", reason, backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func newReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       1e6,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: 30 * time.Second,
		MaxWait:        10 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("[kafka-go][%s] ERROR: "+msg, append([]interface{}{topic}, args...)...)
		}),
	})
}

func envSlice(key, defaultVal string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
