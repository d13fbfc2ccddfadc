package ai

import (
	"errors"
	"sync"
	"time"
)

// ErrBudgetExhausted is returned when the daily API call allowance is spent.
var ErrBudgetExhausted = errors.New("daily API call budget exhausted")

// Budget tracks API calls against a daily limit. The counter resets at
// midnight UTC.
type Budget struct {
	mu    sync.Mutex
	limit int
	count int
	date  string
	now   func() time.Time
}

func NewBudget(dailyLimit int) *Budget {
	return &Budget{limit: dailyLimit, now: time.Now}
}

// Reserve consumes one call from today's allowance, or fails with
// ErrBudgetExhausted without consuming anything.
func (b *Budget) Reserve() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()
	if b.limit > 0 && b.count >= b.limit {
		return ErrBudgetExhausted
	}
	b.count++
	return nil
}

// Remaining reports how many calls are left today. Negative limits mean
// unlimited.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()
	if b.limit <= 0 {
		return -1
	}
	return b.limit - b.count
}

func (b *Budget) rollover() {
	today := b.now().UTC().Format("2006-01-02")
	if b.date != today {
		b.date = today
		b.count = 0
	}
}
