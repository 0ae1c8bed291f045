package library

// ledger owns the loan records in creation order. Keys repeat once a
// loan is returned and the same member borrows the same book again on
// one calendar day, so lookups scan rather than index by key, preferring
// the active loan.
type ledger struct {
	loans []*Loan
}

func newLedger() *ledger {
	return &ledger{}
}

func (g *ledger) append(l *Loan) {
	g.loans = append(g.loans, l)
}

func (g *ledger) findActive(key string) (*Loan, bool) {
	for _, l := range g.loans {
		if l.Key == key && l.Active() {
			return l, true
		}
	}
	return nil, false
}

// find returns the active loan with the key if one exists, otherwise the
// most recent returned one so a double return reports "already returned"
// rather than "not found".
func (g *ledger) find(key string) (*Loan, bool) {
	if l, ok := g.findActive(key); ok {
		return l, true
	}
	for i := len(g.loans) - 1; i >= 0; i-- {
		if g.loans[i].Key == key {
			return g.loans[i], true
		}
	}
	return nil, false
}

func (g *ledger) active() []Loan {
	out := make([]Loan, 0)
	for _, l := range g.loans {
		if l.Active() {
			out = append(out, *l)
		}
	}
	return out
}

func (g *ledger) overdue(today Date) []OverdueLoan {
	out := make([]OverdueLoan, 0)
	for _, l := range g.loans {
		if l.Active() && today.After(l.DueDate) {
			out = append(out, OverdueLoan{Loan: *l, OverdueDays: today.DaysSince(l.DueDate)})
		}
	}
	return out
}

func (g *ledger) list() []Loan {
	out := make([]Loan, 0, len(g.loans))
	for _, l := range g.loans {
		out = append(out, *l)
	}
	return out
}
