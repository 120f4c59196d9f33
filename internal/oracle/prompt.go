package oracle

import (
	"fmt"
	"strings"
)

// buildPrompt renders the market context the model analyzes. The last ten
// prices give it short-term momentum without blowing up the token budget.
func buildPrompt(req Request) string {
	recent := req.RecentPrices
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	prices := make([]string, len(recent))
	for i, p := range recent {
		prices[i] = fmt.Sprintf("%.2f", p)
	}

	ind := req.Indicators
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze data for %s.\n", req.Symbol)
	fmt.Fprintf(&b, "Current Price: $%.2f\n", req.Price)
	fmt.Fprintf(&b, "RSI: %.2f\n", ind.RSI)
	fmt.Fprintf(&b, "EMA(short): %.2f\n", ind.EMAShort)
	fmt.Fprintf(&b, "EMA(long): %.2f\n", ind.EMALong)
	fmt.Fprintf(&b, "MACD: %.4f\n", ind.MACD.MACD)
	fmt.Fprintf(&b, "MACD Signal: %.4f\n", ind.MACD.Signal)
	fmt.Fprintf(&b, "MACD Histogram: %.4f\n", ind.MACD.Histogram)
	fmt.Fprintf(&b, "Bollinger Bands: [%.2f, %.2f, %.2f]\n", ind.Bollinger.Upper, ind.Bollinger.Middle, ind.Bollinger.Lower)
	fmt.Fprintf(&b, "Strategy Signal: %s\n", req.Signal)
	fmt.Fprintf(&b, "Recent Prices: %s\n", strings.Join(prices, ", "))
	b.WriteString(`Return JSON: { "action": "LONG|SHORT|HOLD", "confidence": 0-100, "reasoning": "...", "riskLevel": "LOW|MEDIUM|HIGH" }`)
	return b.String()
}
