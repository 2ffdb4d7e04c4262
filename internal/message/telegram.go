package message

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"time"

	"token-scanner/internal/core"
	"token-scanner/internal/utils"
)

// TelegramSender sends alert notifications via the Telegram Bot API.
type TelegramSender struct {
	botToken string
	client   *http.Client
}

func NewTelegramSender(botToken string) *TelegramSender {
	return &TelegramSender{
		botToken: botToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// sendMessage posts an HTML-formatted message to a Telegram chat.
// disablePreview suppresses link previews, which would otherwise bury alert
// text under a DEX screenshot.
func (t *TelegramSender) sendMessage(chatID, text string, disablePreview bool) error {
	if t.botToken == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat ID is required")
	}

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)

	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if disablePreview {
		payload["disable_web_page_preview"] = true
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("📨 Telegram message sent to chat %s", chatID)
	return nil
}

// SendAlert sends a token alert to the specified Telegram chat, formatted
// per candidate kind.
func (t *TelegramSender) SendAlert(chatID string, alert *core.TokenAlert) error {
	if chatID == "" || alert == nil || alert.Candidate == nil || alert.Verdict == nil {
		return nil
	}
	if alert.Candidate.Kind == core.KindMint {
		return t.sendMessage(chatID, formatMintAlertTelegram(alert), true)
	}
	return t.sendMessage(chatID, formatBuyAlertTelegram(alert), true)
}

// SendStartup announces that the daemon booted.
func (t *TelegramSender) SendStartup(chatID string) error {
	msg := "🟢 <b>BOT ONLINE</b>\n\n" +
		"Token scanner started successfully!\n" +
		"Send /start to begin monitoring.\n\n" +
		"Ready to scan! 🔍"
	return t.sendMessage(chatID, msg, false)
}

func formatMintAlertTelegram(alert *core.TokenAlert) string {
	c := alert.Candidate
	v := alert.Verdict

	server := c.Server
	if server == "" {
		server = "N/A"
	}

	msg := fmt.Sprintf(
		"🎯 <b>NEW MINT DETECTED!</b>\n\n"+
			"📛 <b>%s ($%s)</b>\n"+
			"💰 Price: $%g USDC\n"+
			"🌐 Server: %s\n\n"+
			"🔗 <b>MINT HERE:</b>\n%s\n\n"+
			"📋 Contract: <code>%s</code>\n\n"+
			"🛡️ <b>SECURITY CHECK:</b>\n"+
			"%s | Score: %d/%d\n%s\n\n",
		html.EscapeString(c.Name), html.EscapeString(c.Symbol),
		c.MintPriceUSDC,
		html.EscapeString(server),
		c.MintURL,
		c.Address,
		riskLine(v.Risk), v.Passed, v.Attempted, recommendationLine(v.Recommendation),
	)
	msg += checkLines(v)
	msg += "\n⚠️ <b>DISCLAIMER:</b>\n" +
		"Auto-scan bot. NOT financial advice!\n" +
		"DYOR. Only invest what you can lose.\n\n" +
		"🔗 https://x402scan.com"
	return msg
}

func formatBuyAlertTelegram(alert *core.TokenAlert) string {
	c := alert.Candidate
	v := alert.Verdict

	msg := fmt.Sprintf(
		"💎 <b>HIGH POTENTIAL TOKEN!</b>\n\n"+
			"📛 <b>%s ($%s)</b>\n"+
			"💰 Price: $%s\n"+
			"📊 Market Cap: $%s\n"+
			"💧 Liquidity: $%s\n"+
			"📈 24h Volume: $%s\n"+
			"🚀 24h Change: %+.1f%%\n\n"+
			"🎯 <b>POTENTIAL: %s</b>\n\n"+
			"🔗 <b>BUY HERE:</b>\n%s\n\n"+
			"📋 Contract: <code>%s</code>\n\n"+
			"🛡️ <b>SECURITY CHECK:</b>\n"+
			"%s | Score: %d/%d\n%s\n\n",
		html.EscapeString(c.Name), html.EscapeString(c.Symbol),
		utils.FormatPrice(c.PriceUSD),
		utils.FormatUSD(c.MarketCap),
		utils.FormatUSD(c.LiquidityUSD),
		utils.FormatUSD(c.Volume24h),
		c.PriceChange24h,
		c.Potential,
		c.URL,
		c.Address,
		riskLine(v.Risk), v.Passed, v.Attempted, recommendationLine(v.Recommendation),
	)
	msg += checkLines(v)
	msg += "\n⚠️ <b>DISCLAIMER:</b>\n" +
		"High risk, high reward. This is NOT advice!\n" +
		"Microcap tokens are EXTREMELY risky.\n" +
		"Only use money you can afford to lose!\n\n" +
		"🔗 https://x402scan.com"
	return msg
}

// checkLines renders one line per security check outcome.
func checkLines(v *core.SecurityVerdict) string {
	out := ""
	for _, check := range v.Checks {
		out += check.Message + "\n"
	}
	return out
}

// riskLine maps a risk tier to its display line.
func riskLine(risk core.Risk) string {
	switch risk {
	case core.RiskLow:
		return "🟢 LOW RISK"
	case core.RiskMedium:
		return "🟡 MEDIUM"
	default:
		return "🔴 HIGH RISK"
	}
}

// recommendationLine maps a recommendation tag to its display line.
func recommendationLine(rec string) string {
	switch rec {
	case core.RecommendSafe:
		return "✅ SAFE"
	case core.RecommendCaution:
		return "⚠️ CAUTION"
	default:
		return "🚨 RISKY"
	}
}

// telegramUpdate is one entry from the getUpdates long poll.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// getUpdates long-polls the Bot API for new messages. timeoutSec must stay
// under the HTTP client timeout or every poll surfaces as an error.
func (t *TelegramSender) getUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegramUpdate, error) {
	if t.botToken == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates", t.botToken)
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         timeoutSec,
		"allowed_updates": []string{"message"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal getUpdates payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create getUpdates request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll telegram updates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse getUpdates response: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram API rejected getUpdates: %s", string(body))
	}
	return parsed.Result, nil
}
