package message

import (
	"strings"
	"testing"
)

func TestFormatAlertEmailBuy(t *testing.T) {
	subject, textBody, htmlBody := FormatAlertEmail(sampleBuyAlert())

	if subject != "💎 High Potential: Moon <Cat> ($MOON) - 100-1000x" {
		t.Errorf("Unexpected buy subject: %s", subject)
	}

	for i, want := range []string{
		"High Potential Token Found!",
		"Contract: 0xaaaabbbbccccddddeeeeffff0000111122223333",
		"Market Cap: $40,000",
		"Change 24h: -3.2%",
		"Security: 2/3 (67%), risk MEDIUM (CAUTION)",
		"⚠️ Low liq: $3,000",
	} {
		if !strings.Contains(textBody, want) {
			t.Errorf("Case %d: expected text body to contain %q", i+1, want)
		}
	}

	if strings.Contains(htmlBody, "{{") {
		t.Error("Expected template placeholders to be fully rendered")
	}
	if !strings.Contains(htmlBody, "Moon &lt;Cat&gt;") {
		t.Error("Expected HTML body to escape the token name")
	}
	if !strings.Contains(htmlBody, "#f59e0b") {
		t.Error("Expected medium risk to tint the card amber")
	}
	if !strings.Contains(htmlBody, "Powered by x402scan &amp; DexScreener") {
		t.Error("Expected provider footer in HTML body")
	}
}

func TestFormatAlertEmailMint(t *testing.T) {
	subject, textBody, htmlBody := FormatAlertEmail(sampleMintAlert())

	if subject != "🎯 New Mint: Moon Pass ($MPASS)" {
		t.Errorf("Unexpected mint subject: %s", subject)
	}
	if !strings.Contains(textBody, "Mint Price: $0.5 USDC") {
		t.Errorf("Expected mint price in text body, got:\n%s", textBody)
	}
	if !strings.Contains(textBody, "Mint URL: https://mint.example.com/moonpass") {
		t.Error("Expected mint URL in text body")
	}
	if !strings.Contains(htmlBody, "New Mint Detected") {
		t.Error("Expected mint title in HTML body")
	}
}

func TestFormatAlertEmailNil(t *testing.T) {
	subject, textBody, htmlBody := FormatAlertEmail(nil)
	if subject != "" || textBody != "" || htmlBody != "" {
		t.Error("Expected empty output for nil alert")
	}
}
