package report

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
)

// FormatTradeOrg renders a trade as an Org-mode heading with its facts in
// a PROPERTIES drawer. The notes become the body.
func FormatTradeOrg(t ledger.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s (%d)", t.Date, t.Symbol, strings.ToUpper(string(t.Outcome)), t.ID)
	if tags := orgTags(t.Tags); tags != "" {
		b.WriteString(" " + tags)
	}
	b.WriteString("\n:PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %d\n", t.ID)
	fmt.Fprintf(&b, ":DATE: %s\n", t.Date)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", t.Direction)
	fmt.Fprintf(&b, ":SIZE: %.2f\n", t.PositionSize)
	fmt.Fprintf(&b, ":OUTCOME: %s\n", t.Outcome)
	fmt.Fprintf(&b, ":PNL: %.2f\n", t.PnL)
	fmt.Fprintf(&b, ":EFFECT: %s\n", t.Effect().StringFixed(2))
	b.WriteString(":END:\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		b.WriteString("\n" + notes + "\n")
	}
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.Trade) string {
	blocks := make([]string, len(trades))
	for i, t := range trades {
		blocks[i] = FormatTradeOrg(t)
	}
	return strings.Join(blocks, "\n")
}

// FormatEntryOrg renders a journal entry. The date goes into an inactive
// timestamp so agenda views ignore it.
func FormatEntryOrg(e journal.Entry) string {
	var b strings.Builder
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "** %s", title)
	if tags := orgTags(e.Tags); tags != "" {
		b.WriteString(" " + tags)
	}
	b.WriteString("\n:PROPERTIES:\n")
	fmt.Fprintf(&b, ":ENTRY_ID: %d\n", e.ID)
	fmt.Fprintf(&b, ":CREATED: [%s]\n", orgDate(e.Date))
	if e.Mood != "" {
		fmt.Fprintf(&b, ":MOOD: %s\n", e.Mood)
	}
	b.WriteString(":END:\n")
	if content := strings.TrimSpace(e.Content); content != "" {
		b.WriteString("\n" + content + "\n")
	}
	return b.String()
}

// FormatEntriesOrg renders multiple entries separated by blank lines.
func FormatEntriesOrg(entries []journal.Entry) string {
	blocks := make([]string, len(entries))
	for i, e := range entries {
		blocks[i] = FormatEntryOrg(e)
	}
	return strings.Join(blocks, "\n")
}

// orgTags turns tags into ":a:b:". Org tags cannot hold spaces.
func orgTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ReplaceAll(strings.TrimSpace(t), " ", "_"); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return ":" + strings.Join(clean, ":") + ":"
}

func orgDate(rfc string) string {
	if len(rfc) >= 10 {
		return rfc[:10]
	}
	return rfc
}
