package message

import (
	"time"

	"token-scanner/internal/core"
)

// Kafka topic names
const (
	TopicMintAlert = "alerts.mint"
	TopicBuyAlert  = "alerts.buy"
)

// TokenAlertEvent is the Kafka message payload for a token alert. It flattens
// the candidate and its security verdict so consumers do not need the core
// types to render a notification.
type TokenAlertEvent struct {
	Kind    string `json:"kind"` // "mint" or "buy"
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Source  string `json:"source"`
	Tag     string `json:"tag,omitempty"`
	// Market context
	PriceUSD       float64 `json:"price_usd,omitempty"`
	MarketCap      float64 `json:"market_cap,omitempty"`
	LiquidityUSD   float64 `json:"liquidity_usd,omitempty"`
	Volume24h      float64 `json:"volume_24h,omitempty"`
	PriceChange24h float64 `json:"price_change_24h,omitempty"`
	URL            string  `json:"url,omitempty"`
	Potential      string  `json:"potential,omitempty"`
	// Mint context
	MintURL       string  `json:"mint_url,omitempty"`
	MintPriceUSDC float64 `json:"mint_price_usdc,omitempty"`
	Server        string  `json:"server,omitempty"`
	// Security verdict
	Score          float64  `json:"score"`
	Passed         int      `json:"passed"`
	Attempted      int      `json:"attempted"`
	Risk           string   `json:"risk"`
	Recommendation string   `json:"recommendation"`
	CheckMessages  []string `json:"check_messages"`
	// Delivery targets
	TelegramChatID string    `json:"telegram_chat_id,omitempty"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewTokenAlertEvent flattens an alert into its wire event. chatID and email
// tell the notification-service where to deliver; either may be empty.
func NewTokenAlertEvent(alert *core.TokenAlert, chatID, email string) TokenAlertEvent {
	c := alert.Candidate
	v := alert.Verdict

	messages := make([]string, 0, len(v.Checks))
	for _, check := range v.Checks {
		messages = append(messages, check.Message)
	}

	return TokenAlertEvent{
		Kind:           string(c.Kind),
		Address:        c.Address,
		Name:           c.Name,
		Symbol:         c.Symbol,
		Source:         c.Source,
		Tag:            c.Tag,
		PriceUSD:       c.PriceUSD,
		MarketCap:      c.MarketCap,
		LiquidityUSD:   c.LiquidityUSD,
		Volume24h:      c.Volume24h,
		PriceChange24h: c.PriceChange24h,
		URL:            c.URL,
		Potential:      c.Potential,
		MintURL:        c.MintURL,
		MintPriceUSDC:  c.MintPriceUSDC,
		Server:         c.Server,
		Score:          v.Score,
		Passed:         v.Passed,
		Attempted:      v.Attempted,
		Risk:           string(v.Risk),
		Recommendation: v.Recommendation,
		CheckMessages:  messages,
		TelegramChatID: chatID,
		RecipientEmail: email,
		Timestamp:      alert.Timestamp,
	}
}

// Topic returns the Kafka topic this event belongs on.
func (e TokenAlertEvent) Topic() string {
	if e.Kind == string(core.KindMint) {
		return TopicMintAlert
	}
	return TopicBuyAlert
}

// ToAlert rebuilds the alert for rendering on the consumer side. Check
// results carry only their display message; the verdict figures are taken
// from the event rather than recomputed.
func (e TokenAlertEvent) ToAlert() *core.TokenAlert {
	checks := make([]core.CheckResult, 0, len(e.CheckMessages))
	for _, m := range e.CheckMessages {
		checks = append(checks, core.CheckResult{Message: m})
	}

	return &core.TokenAlert{
		Candidate: &core.Candidate{
			Kind:           core.Kind(e.Kind),
			Address:        e.Address,
			Name:           e.Name,
			Symbol:         e.Symbol,
			Source:         e.Source,
			Tag:            e.Tag,
			PriceUSD:       e.PriceUSD,
			MarketCap:      e.MarketCap,
			LiquidityUSD:   e.LiquidityUSD,
			Volume24h:      e.Volume24h,
			PriceChange24h: e.PriceChange24h,
			URL:            e.URL,
			Potential:      e.Potential,
			MintURL:        e.MintURL,
			MintPriceUSDC:  e.MintPriceUSDC,
			Server:         e.Server,
		},
		Verdict: &core.SecurityVerdict{
			Checks:         checks,
			Passed:         e.Passed,
			Attempted:      e.Attempted,
			Score:          e.Score,
			Risk:           core.Risk(e.Risk),
			Recommendation: e.Recommendation,
		},
		Timestamp: e.Timestamp,
	}
}
