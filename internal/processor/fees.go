package processor

// FeePolicy computes the charge applied to cross-currency transfers. Same
// currency transfers are free.
type FeePolicy struct {
	rate float64
}

// NewFeePolicy takes the fee as a fraction of the transfer amount, e.g. 0.001
// charges 0.1%.
func NewFeePolicy(rate float64) *FeePolicy {
	return &FeePolicy{rate: rate}
}

func (p *FeePolicy) ComputeFee(amount float64, crossCurrency bool) float64 {
	if !crossCurrency {
		return 0.0
	}
	return amount * p.rate
}
