package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/taka-pay/taka_pay/internal/ledger"
)

// FeeSchedule maps (kind, amount) to a fee in minor units. It is pure data:
// new tiers are configuration, not engine changes.
type FeeSchedule struct {
	// SendFee is charged on send transfers strictly above SendFeeThreshold.
	SendFee          int64
	SendFeeThreshold int64
	// CashOutPercent is the cash-out commission, e.g. 1.5 for 1.5%.
	CashOutPercent decimal.Decimal
}

// DefaultFeeSchedule returns the production tariff: 5 on sends above 100,
// 1.5% on cash-out, cash-in free.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		SendFee:          5,
		SendFeeThreshold: 100,
		CashOutPercent:   decimal.NewFromFloat(1.5),
	}
}

// NewFeeSchedule builds a schedule from configuration values.
func NewFeeSchedule(sendFee, sendFeeThreshold int64, cashOutPercent float64) FeeSchedule {
	return FeeSchedule{
		SendFee:          sendFee,
		SendFeeThreshold: sendFeeThreshold,
		CashOutPercent:   decimal.NewFromFloat(cashOutPercent),
	}
}

// Fee computes the fee for a transfer. Percentage fees are rounded half-up to
// the minor unit, so a 1.5 fee on a 100 cash-out becomes 2.
func (f FeeSchedule) Fee(kind ledger.Kind, amount int64) int64 {
	switch kind {
	case ledger.KindSend:
		if amount > f.SendFeeThreshold {
			return f.SendFee
		}
		return 0
	case ledger.KindCashOut:
		return f.CashOutPercent.
			Mul(decimal.NewFromInt(amount)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	default:
		return 0
	}
}
