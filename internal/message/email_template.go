package message

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"token-scanner/internal/core"
	"token-scanner/internal/utils"
)

// emailRow is one label/value line in the alert detail table.
type emailRow struct {
	Label string
	Value string
}

// emailData holds pre-rendered strings for the HTML template.
type emailData struct {
	Title      string
	TitleEmoji string
	Name       string
	Symbol     string
	Headline   string // the figure shown large, e.g. the price
	Color      string // risk tint for the headline
	Rows       []emailRow
	Contract   string
	Checks     []string
	ScoreLine  string
	Timestamp  string
}

// FormatAlertSubject formats the email subject for a token alert
func FormatAlertSubject(alert *core.TokenAlert) string {
	c := alert.Candidate
	if c.Kind == core.KindMint {
		return fmt.Sprintf("🎯 New Mint: %s ($%s)", c.Name, c.Symbol)
	}
	return fmt.Sprintf("💎 High Potential: %s ($%s) - %s", c.Name, c.Symbol, c.Potential)
}

// FormatAlertMessage formats the plain text body for a token alert
func FormatAlertMessage(alert *core.TokenAlert) string {
	c := alert.Candidate
	v := alert.Verdict

	var b strings.Builder
	if c.Kind == core.KindMint {
		b.WriteString("New Mint Detected!\n\n")
		fmt.Fprintf(&b, "Name: %s (%s)\n", c.Name, c.Symbol)
		fmt.Fprintf(&b, "Contract: %s\n", c.Address)
		if c.MintPriceUSDC > 0 {
			fmt.Fprintf(&b, "Mint Price: $%g USDC\n", c.MintPriceUSDC)
		}
		if c.Server != "" {
			fmt.Fprintf(&b, "Server: %s\n", c.Server)
		}
		if c.MintURL != "" {
			fmt.Fprintf(&b, "Mint URL: %s\n", c.MintURL)
		}
	} else {
		b.WriteString("High Potential Token Found!\n\n")
		fmt.Fprintf(&b, "Name: %s (%s)\n", c.Name, c.Symbol)
		fmt.Fprintf(&b, "Contract: %s\n", c.Address)
		fmt.Fprintf(&b, "Price: $%s\n", utils.FormatPrice(c.PriceUSD))
		fmt.Fprintf(&b, "Market Cap: $%s\n", utils.FormatUSD(c.MarketCap))
		fmt.Fprintf(&b, "Liquidity: $%s\n", utils.FormatUSD(c.LiquidityUSD))
		fmt.Fprintf(&b, "Volume 24h: $%s\n", utils.FormatUSD(c.Volume24h))
		fmt.Fprintf(&b, "Change 24h: %+.1f%%\n", c.PriceChange24h)
		if c.Potential != "" {
			fmt.Fprintf(&b, "Potential: %s\n", c.Potential)
		}
		if c.URL != "" {
			fmt.Fprintf(&b, "Chart: %s\n", c.URL)
		}
	}

	fmt.Fprintf(&b, "\nSecurity: %s, risk %s (%s)\n", v.Summary(), v.Risk, v.Recommendation)
	for _, check := range v.Checks {
		fmt.Fprintf(&b, "  %s\n", check.Message)
	}
	fmt.Fprintf(&b, "\nTimestamp: %s\n", alert.Timestamp.Format(time.RFC3339))
	b.WriteString("\nThis is an automated alert from your token scanner.\n")
	return b.String()
}

// FormatAlertHTML formats the HTML email body for a token alert
func FormatAlertHTML(alert *core.TokenAlert) string {
	data := buildEmailData(alert)

	htmlTemplate := `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Token Alert</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
		<h1 style="color: white; margin: 0; font-size: 28px;">{{.TitleEmoji}} {{.Title}}</h1>
	</div>

	<div style="background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; border: 1px solid #e5e7eb;">
		<div style="background: white; padding: 25px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
			<h2 style="margin-top: 0; color: #1f2937; font-size: 24px;">{{.Name}} ({{.Symbol}})</h2>

			<div style="margin: 20px 0;">
				<div style="font-size: 14px; color: #6b7280; text-transform: uppercase; letter-spacing: 1px;">Price</div>
				<div style="font-size: 32px; font-weight: bold; color: {{.Color}};">{{.Headline}}</div>
			</div>

			<div style="border-top: 1px solid #e5e7eb; padding-top: 20px; margin-top: 20px;">
				<table style="width: 100%; border-collapse: collapse;">
					{{range .Rows}}<tr>
						<td style="padding: 10px 0; color: #6b7280; font-weight: 500;">{{.Label}}:</td>
						<td style="padding: 10px 0; text-align: right; font-weight: 600;">{{.Value}}</td>
					</tr>
					{{end}}
				</table>
			</div>

			<div style="border-top: 1px solid #e5e7eb; padding-top: 20px; margin-top: 20px;">
				<div style="font-size: 14px; color: #6b7280; text-transform: uppercase; letter-spacing: 1px;">Security Check</div>
				<div style="font-weight: bold; color: {{.Color}}; margin: 8px 0;">{{.ScoreLine}}</div>
				{{range .Checks}}<div style="padding: 2px 0;">{{.}}</div>
				{{end}}
			</div>

			<div style="border-top: 1px solid #e5e7eb; padding-top: 20px; margin-top: 20px;">
				<div style="font-size: 14px; color: #6b7280; text-transform: uppercase; letter-spacing: 1px;">Contract</div>
				<div style="font-family: monospace; font-size: 13px; word-break: break-all;">{{.Contract}}</div>
			</div>
		</div>

		<div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
			<p style="margin: 0;">This is an automated alert from your token scanner. Always DYOR.</p>
			<p style="margin: 5px 0 0 0;">Powered by x402scan &amp; DexScreener</p>
		</div>
	</div>
</body>
</html>
`

	// Parse and execute template
	tmpl, err := template.New("email").Parse(htmlTemplate)
	if err != nil {
		// Fallback to simple HTML if template parsing fails
		return simpleAlertHTML(data)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		// Fallback to simple HTML if template execution fails
		return simpleAlertHTML(data)
	}

	return buf.String()
}

// simpleAlertHTML is the plain fallback when template rendering fails.
func simpleAlertHTML(data emailData) string {
	var b strings.Builder
	b.WriteString("<html>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s %s</h1>\n", data.TitleEmoji, template.HTMLEscapeString(data.Title))
	fmt.Fprintf(&b, "<h2>%s (%s)</h2>\n", template.HTMLEscapeString(data.Name), template.HTMLEscapeString(data.Symbol))
	fmt.Fprintf(&b, "<p><strong>Price:</strong> %s</p>\n", template.HTMLEscapeString(data.Headline))
	for _, row := range data.Rows {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", template.HTMLEscapeString(row.Label), template.HTMLEscapeString(row.Value))
	}
	fmt.Fprintf(&b, "<p><strong>Security:</strong> %s</p>\n", template.HTMLEscapeString(data.ScoreLine))
	for _, check := range data.Checks {
		fmt.Fprintf(&b, "<p>%s</p>\n", template.HTMLEscapeString(check))
	}
	fmt.Fprintf(&b, "<p><strong>Contract:</strong> %s</p>\n", template.HTMLEscapeString(data.Contract))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func buildEmailData(alert *core.TokenAlert) emailData {
	c := alert.Candidate
	v := alert.Verdict

	data := emailData{
		Name:      c.Name,
		Symbol:    c.Symbol,
		Contract:  c.Address,
		ScoreLine: fmt.Sprintf("%s risk %s - %s", v.Summary(), v.Risk, v.Recommendation),
		Timestamp: alert.Timestamp.Format(time.RFC3339),
	}
	for _, check := range v.Checks {
		data.Checks = append(data.Checks, check.Message)
	}

	switch v.Risk {
	case core.RiskLow:
		data.Color = "#10b981" // green
	case core.RiskMedium:
		data.Color = "#f59e0b" // amber
	default:
		data.Color = "#ef4444" // red
	}

	if c.Kind == core.KindMint {
		data.Title = "New Mint Detected"
		data.TitleEmoji = "🎯"
		data.Headline = fmt.Sprintf("$%g USDC", c.MintPriceUSDC)
		if c.Server != "" {
			data.Rows = append(data.Rows, emailRow{"Server", c.Server})
		}
		if c.MintURL != "" {
			data.Rows = append(data.Rows, emailRow{"Mint URL", c.MintURL})
		}
		data.Rows = append(data.Rows, emailRow{"Source", c.Source})
	} else {
		data.Title = "High Potential Token"
		data.TitleEmoji = "💎"
		data.Headline = "$" + utils.FormatPrice(c.PriceUSD)
		data.Rows = append(data.Rows,
			emailRow{"Market Cap", "$" + utils.FormatUSD(c.MarketCap)},
			emailRow{"Liquidity", "$" + utils.FormatUSD(c.LiquidityUSD)},
			emailRow{"Volume 24h", "$" + utils.FormatUSD(c.Volume24h)},
			emailRow{"Change 24h", fmt.Sprintf("%+.1f%%", c.PriceChange24h)},
		)
		if c.Potential != "" {
			data.Rows = append(data.Rows, emailRow{"Potential", c.Potential})
		}
		if c.URL != "" {
			data.Rows = append(data.Rows, emailRow{"Chart", c.URL})
		}
	}
	data.Rows = append(data.Rows, emailRow{"Time", data.Timestamp})

	return data
}

// FormatAlertEmail formats subject and both bodies for a token alert
func FormatAlertEmail(alert *core.TokenAlert) (subject, textBody, htmlBody string) {
	if alert == nil || alert.Candidate == nil || alert.Verdict == nil {
		return "", "", ""
	}

	subject = FormatAlertSubject(alert)
	textBody = FormatAlertMessage(alert)
	htmlBody = FormatAlertHTML(alert)

	return subject, textBody, htmlBody
}
