package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	labels := FormatDate(time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local))
	assert.Equal(t, "2024년 3월 15일 (금)", labels.Today)
	assert.Equal(t, "2024년 3월", labels.Month)

	sunday := FormatDate(time.Date(2024, time.March, 17, 0, 0, 0, 0, time.Local))
	assert.Equal(t, "2024년 3월 17일 (일)", sunday.Today)

	assert.Equal(t, "2023년 12월", NewMonth(2023, time.December).Label())
}

func TestRenderSummary(t *testing.T) {
	entries := DefaultEntries()
	entries[0].Amount = 500000
	entries[3].Amount = 1500
	entries[4].Amount = 200000
	entries[4].Operator = Increase
	base := int64(3000000)

	got := RenderSummary("2024년 3월", base, entries, Total(base, entries))

	want := strings.Join([]string{
		"[2024년 3월 가계부 내역]",
		"기준금액: 3,000,000원",
		"- 500,000원 [카드1[현대카드]]",
		"- 1,500원 [카드4[기타]]",
		"+ 200,000원 [용돈]",
		"------------------------",
		"최종잔액: 2,698,500원",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderSummaryEmptyAndNegative(t *testing.T) {
	entries := DefaultEntries()
	got := RenderSummary("2024년 1월", 0, entries, 0)
	assert.Equal(t, "[2024년 1월 가계부 내역]\n기준금액: 0원\n------------------------\n최종잔액: 0원", got)

	entries[7].Amount = 1500
	got = RenderSummary("2024년 1월", 0, entries, Total(0, entries))
	assert.True(t, strings.HasSuffix(got, "최종잔액: -1,500원"))
	assert.Contains(t, got, "- 1,500원 [기타3]")
}

func TestShareTitle(t *testing.T) {
	assert.Equal(t, "2024년 3월 가계부 내역", ShareTitle("2024년 3월"))
}

func TestHistoryHeader(t *testing.T) {
	created := time.Date(2024, time.March, 15, 8, 5, 0, 0, time.Local)
	assert.Equal(t, "#42 | 08:05", HistoryHeader(Snapshot{ID: 42, CreatedAt: created}))
}
