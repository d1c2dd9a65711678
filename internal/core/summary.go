package core

import (
	"strconv"
	"strings"
)

const summaryRule = "------------------------"

// ShareTitle is the title handed to a share target for a month summary.
func ShareTitle(monthLabel string) string {
	return monthLabel + " 가계부 내역"
}

// RenderSummary renders the plain-text summary used for the memo column,
// the clipboard and the share sheet. Entries with a zero amount are left
// out of the itemized list.
func RenderSummary(monthLabel string, base int64, entries []Entry, total int64) string {
	var b strings.Builder
	b.WriteString("[" + ShareTitle(monthLabel) + "]\n")
	b.WriteString("기준금액: " + FormatWon(base) + "\n")
	for _, e := range entries {
		if e.Amount <= 0 {
			continue
		}
		b.WriteString(e.Operator.Symbol() + " " + FormatWon(e.Amount) + " [" + e.Label + "]\n")
	}
	b.WriteString(summaryRule + "\n")
	b.WriteString("최종잔액: " + FormatWon(total))
	return b.String()
}

// HistoryHeader is the "#<id> | HH:MM" line of a history row, in local time.
func HistoryHeader(s Snapshot) string {
	return "#" + strconv.FormatInt(s.ID, 10) + " | " + s.CreatedAt.Local().Format("15:04")
}
