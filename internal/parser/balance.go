package parser

// BalanceState is the running balance of one extraction pass. The zero value
// is the unanchored start of a document.
type BalanceState struct {
	current  float64
	anchored bool
}

// Current returns the running balance and whether it has been set.
func (s BalanceState) Current() (float64, bool) {
	return s.current, s.anchored
}

// Step derives the pre and post balances for p and returns the state for the
// next line.
//
// The first line anchors the chain on its last amount-shaped token. The post
// balance is the running balance itself: a balance column, when present,
// already shows the state after the transaction. If no anchor has been found
// both balances are zero and the chain continues from zero.
func (s BalanceState) Step(p *Provisional) (next BalanceState, oldBalance, newBalance float64) {
	if !s.anchored && p.Anchor != nil {
		s.current = *p.Anchor
		s.anchored = true
	}

	if s.anchored {
		newBalance = s.current
		if p.Debit != nil {
			oldBalance = s.current + *p.Debit
		} else {
			oldBalance = s.current - *p.Credit
		}
	}

	return BalanceState{current: newBalance, anchored: true}, oldBalance, newBalance
}
