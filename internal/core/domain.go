package core

import (
	"errors"
	"time"
)

const (
	Increase Operator = "+"
	Decrease Operator = "-"
)

// SlotCount is the number of fixed entry slots in a month.
const SlotCount = 8

type (
	// Operator decides whether an entry adds to or subtracts from the base amount.
	Operator string

	// Entry is one of the fixed labeled amounts of a month.
	Entry struct {
		ID       string
		Label    string
		Amount   int64
		Operator Operator
	}

	// Snapshot is a persisted monthly_money row.
	Snapshot struct {
		ID        int64     `json:"id"`
		Month     string    `json:"month"`
		Salary    int64     `json:"salary"`
		Card1     int64     `json:"card1"`
		Card2     int64     `json:"card2"`
		Card3     int64     `json:"card3"`
		Card4     int64     `json:"card4"`
		Extra1    int64     `json:"extra1"`
		Extra2    int64     `json:"extra2"`
		Extra3    int64     `json:"extra3"`
		Extra4    int64     `json:"extra4"`
		Memo      string    `json:"memo"`
		CreatedAt time.Time `json:"created_at"`
	}
)

var (
	ErrUnknownSlot   = errors.New("unknown entry slot")
	ErrInvalidMonth  = errors.New("invalid month key")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Slots lists the entry ids in display and storage order.
var Slots = [SlotCount]string{"card1", "card2", "card3", "card4", "extra1", "extra2", "extra3", "extra4"}

var slotLabels = map[string]string{
	"card1":  "카드1[현대카드]",
	"card2":  "카드2[하이패스]",
	"card3":  "카드3[교통카드]",
	"card4":  "카드4[기타]",
	"extra1": "용돈",
	"extra2": "기타1",
	"extra3": "기타2",
	"extra4": "기타3",
}

// Label returns the display label of a slot id, or "" for unknown ids.
func Label(id string) string {
	return slotLabels[id]
}

// Sign returns +1 for Increase and -1 for everything else.
func (o Operator) Sign() int64 {
	if o == Increase {
		return 1
	}
	return -1
}

// Toggle returns the opposite operator.
func (o Operator) Toggle() Operator {
	if o == Increase {
		return Decrease
	}
	return Increase
}

// Symbol is the character shown next to an amount.
func (o Operator) Symbol() string {
	if o == Increase {
		return "+"
	}
	return "-"
}

// Signed returns the entry's contribution to the total.
func (e Entry) Signed() int64 {
	return e.Amount * e.Operator.Sign()
}

// DefaultEntries returns the eight zero-amount entries with the Decrease operator.
func DefaultEntries() []Entry {
	entries := make([]Entry, SlotCount)
	for i, id := range Slots {
		entries[i] = Entry{ID: id, Label: slotLabels[id], Operator: Decrease}
	}
	return entries
}

// Total computes base plus the signed sum of all entries.
func Total(base int64, entries []Entry) int64 {
	total := base
	for _, e := range entries {
		total += e.Signed()
	}
	return total
}

// SlotAmounts returns the eight stored amounts in slot order.
func (s Snapshot) SlotAmounts() [SlotCount]int64 {
	return [SlotCount]int64{s.Card1, s.Card2, s.Card3, s.Card4, s.Extra1, s.Extra2, s.Extra3, s.Extra4}
}

// Entries rebuilds entries from the stored amounts. Operators are not
// persisted, so every entry comes back as Decrease.
func (s Snapshot) Entries() []Entry {
	entries := DefaultEntries()
	amounts := s.SlotAmounts()
	for i := range entries {
		entries[i].Amount = amounts[i]
	}
	return entries
}

// Balance is the salary minus every stored amount.
func (s Snapshot) Balance() int64 {
	balance := s.Salary
	for _, a := range s.SlotAmounts() {
		balance -= a
	}
	return balance
}

// Validate checks the fields a store relies on before insert.
func (s Snapshot) Validate() error {
	if _, err := ParseMonth(s.Month); err != nil {
		return err
	}
	if s.Salary < 0 {
		return ErrInvalidAmount
	}
	for _, a := range s.SlotAmounts() {
		if a < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// NewSnapshot builds an unsaved snapshot from editor state.
func NewSnapshot(month Month, base int64, entries []Entry, memo string) Snapshot {
	s := Snapshot{Month: month.String(), Salary: base, Memo: memo}
	for _, e := range entries {
		switch e.ID {
		case "card1":
			s.Card1 = e.Amount
		case "card2":
			s.Card2 = e.Amount
		case "card3":
			s.Card3 = e.Amount
		case "card4":
			s.Card4 = e.Amount
		case "extra1":
			s.Extra1 = e.Amount
		case "extra2":
			s.Extra2 = e.Amount
		case "extra3":
			s.Extra3 = e.Amount
		case "extra4":
			s.Extra4 = e.Amount
		}
	}
	return s
}
