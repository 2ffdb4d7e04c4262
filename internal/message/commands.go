package message

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"token-scanner/internal/core"
)

// StatsProvider exposes the pipeline counters the commands report.
type StatsProvider interface {
	Snapshot() core.StatsSnapshot
}

// CommandPoller long-polls the Telegram getUpdates API and answers the
// /start, /status, and /stats commands. One instance per bot token; run it
// in its own goroutine.
type CommandPoller struct {
	sender       *TelegramSender
	stats        StatsProvider
	scanInterval time.Duration

	offset  int64
	started bool
}

// NewCommandPoller creates a poller answering commands with figures from the
// given stats provider.
func NewCommandPoller(sender *TelegramSender, stats StatsProvider, scanInterval time.Duration) *CommandPoller {
	return &CommandPoller{
		sender:       sender,
		stats:        stats,
		scanInterval: scanInterval,
	}
}

// Run polls until the context is cancelled. Poll failures back off briefly
// and never kill the loop.
func (p *CommandPoller) Run(ctx context.Context) {
	log.Println("📲 Telegram command poller started")

	for {
		if ctx.Err() != nil {
			log.Println("📲 Telegram command poller stopped")
			return
		}

		updates, err := p.sender.getUpdates(ctx, p.offset, 10)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("📲 Telegram command poller stopped")
				return
			}
			log.Printf("⚠️  Telegram poll failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			p.offset = update.UpdateID + 1
			p.handle(update)
		}
	}
}

func (p *CommandPoller) handle(update telegramUpdate) {
	text := strings.TrimSpace(update.Message.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	// Strip bot-mention suffix: "/status@my_bot" -> "/status"
	command := text
	if i := strings.IndexAny(command, "@ "); i > 0 {
		command = command[:i]
	}

	var reply string
	switch command {
	case "/start":
		reply = p.startReply()
	case "/status":
		reply = p.statusReply()
	case "/stats":
		reply = p.statsReply()
	default:
		return
	}

	if err := p.sender.sendMessage(chatID, reply, false); err != nil {
		log.Printf("⚠️  Command reply failed: %v", err)
	}
}

func (p *CommandPoller) startReply() string {
	if p.started {
		return "✅ <b>Bot already running!</b>\n\n" +
			"Monitoring is active 24/7.\n" +
			"You'll receive alerts automatically.\n\n" +
			"Use /status to check current status."
	}
	p.started = true

	return fmt.Sprintf(
		"🚀 <b>X402 TOKEN SCANNER ACTIVATED!</b>\n\n"+
			"✅ Auto-monitoring: ENABLED\n"+
			"✅ Security checks: ACTIVE\n"+
			"✅ Scan interval: %s\n\n"+
			"📲 <b>You will receive:</b>\n"+
			"🎯 MINT alerts - New mintable tokens\n"+
			"💎 BUY alerts - High potential tokens\n\n"+
			"🛡️ <b>Security Features:</b>\n"+
			"• Contract verification\n"+
			"• Honeypot detection\n"+
			"• Liquidity check\n"+
			"• Holder analysis\n\n"+
			"⚡ <b>Bot is now scanning...</b>\n"+
			"You'll get notified when opportunities appear!\n\n"+
			"Commands:\n"+
			"/status - Check bot status\n"+
			"/stats - View statistics\n\n"+
			"💡 Just sit back and wait for alerts! 🔔",
		p.scanInterval,
	)
}

func (p *CommandPoller) statusReply() string {
	snap := p.stats.Snapshot()
	return fmt.Sprintf(
		"📊 <b>BOT STATUS</b>\n\n"+
			"✅ Status: <b>ONLINE</b>\n"+
			"🔄 Monitoring: <b>ACTIVE</b>\n"+
			"⏰ Time: %s\n"+
			"📊 Tokens tracked: %d\n"+
			"⚡ Scan interval: %s\n"+
			"🛡️ Security: ENABLED\n\n"+
			"Bot is working 24/7! 🚀",
		time.Now().UTC().Format("15:04:05 UTC"),
		snap.TrackedCount,
		p.scanInterval,
	)
}

func (p *CommandPoller) statsReply() string {
	snap := p.stats.Snapshot()
	return fmt.Sprintf(
		"📈 <b>STATISTICS</b>\n\n"+
			"🔄 Scan cycles: %d\n"+
			"🔎 Candidates evaluated: %d\n"+
			"🎯 Mint alerts sent: %d\n"+
			"💎 Buy alerts sent: %d\n"+
			"📊 Total tracked: %d\n\n"+
			"Keep monitoring! 👀",
		snap.CyclesRun,
		snap.Evaluated,
		snap.MintAlerts,
		snap.BuyAlerts,
		snap.TrackedCount,
	)
}
