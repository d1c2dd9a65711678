package http

import (
	"gagyebu/internal/budget"
	"gagyebu/internal/core"
	"gagyebu/internal/share"
)

type entryRow struct {
	ID       string
	Label    string
	Input    string
	Symbol   string
	Increase bool
}

type breakdownRow struct {
	Symbol string
	Amount string
	Label  string
}

type historyRow struct {
	ID      int64
	Header  string
	Salary  string
	Balance string
	Memo    string
}

type dashboardData struct {
	Today      string
	MonthLabel string
	ShareTitle string

	// Notices shown by the copy and share buttons.
	ShareNotice  string
	CopiedNotice string

	BaseInput   string
	BaseDisplay string
	Entries     []entryRow
	Breakdown   []breakdownRow
	Total       string
	Negative    bool
	Loading     bool

	Saving       bool
	Saved        bool
	Failed       bool
	ErrorMessage string
	// Refresh asks the page to reload the fragment once a status reverts.
	Refresh bool

	HistoryOpen bool
	History     []historyRow
}

type gateData struct {
	Invalid bool
}

func newDashboardData(v budget.View) dashboardData {
	d := dashboardData{
		Today:        v.TodayLabel,
		MonthLabel:   v.MonthLabel,
		ShareTitle:   core.ShareTitle(v.MonthLabel),
		ShareNotice:  share.UnsupportedNotice,
		CopiedNotice: share.CopiedNotice,
		BaseInput:    core.FormatAmountInput(v.Base),
		BaseDisplay:  core.FormatWon(v.Base),
		Total:        core.FormatWon(v.Total),
		Negative:     v.Total < 0,
		Loading:      v.Loading,
		Saving:       v.Status == budget.StatusSaving,
		Saved:        v.Status == budget.StatusSaved,
		Failed:       v.Status == budget.StatusError,
		ErrorMessage: v.ErrorMessage,
		HistoryOpen:  v.HistoryOpen,
	}
	d.Refresh = d.Saved || d.Failed

	for _, e := range v.Entries {
		d.Entries = append(d.Entries, entryRow{
			ID:       e.ID,
			Label:    e.Label,
			Input:    core.FormatAmountInput(e.Amount),
			Symbol:   e.Operator.Symbol(),
			Increase: e.Operator == core.Increase,
		})
		if e.Amount > 0 {
			d.Breakdown = append(d.Breakdown, breakdownRow{
				Symbol: e.Operator.Symbol(),
				Amount: core.FormatWon(e.Amount),
				Label:  e.Label,
			})
		}
	}

	for _, s := range v.History {
		d.History = append(d.History, historyRow{
			ID:      s.ID,
			Header:  core.HistoryHeader(s),
			Salary:  core.FormatWon(s.Salary),
			Balance: core.FormatWon(s.Balance()),
			Memo:    s.Memo,
		})
	}
	return d
}
