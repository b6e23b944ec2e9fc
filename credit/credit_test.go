package credit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
)

func cr(id, farmerID string, total float64) credit.Credit {
	return credit.Credit{
		ID:          id,
		FarmerID:    farmerID,
		Date:        ledger.NewTimePoint(2025, time.April, 1),
		TotalAmount: decimal.NewFromFloat(total),
	}
}

func rp(id, farmerID string, amount float64) credit.Repayment {
	return credit.Repayment{
		ID:       id,
		FarmerID: farmerID,
		Date:     ledger.NewTimePoint(2025, time.April, 15),
		Amount:   decimal.NewFromFloat(amount),
		Method:   credit.MethodCash,
	}
}

func TestBalance_CreditsMinusRepayments(t *testing.T) {
	credits := []credit.Credit{cr("c1", "f1", 5000)}
	repayments := []credit.Repayment{rp("r1", "f1", 2000)}

	bal := credit.Balance("f1", credits, repayments)
	assert.True(t, bal.Equal(decimal.NewFromInt(3000)), "5000 - 2000 = 3000, got %v", bal)
}

func TestBalance_IgnoresOtherFarmers(t *testing.T) {
	credits := []credit.Credit{
		cr("c1", "f1", 5000),
		cr("c2", "f2", 9000),
	}
	repayments := []credit.Repayment{rp("r1", "f2", 1000)}

	assert.True(t, credit.Balance("f1", credits, repayments).Equal(decimal.NewFromInt(5000)))
	assert.True(t, credit.Balance("f3", credits, repayments).IsZero(),
		"farmer with no records has zero balance")
}

func TestBalance_OverRepaymentGoesNegative(t *testing.T) {
	credits := []credit.Credit{cr("c1", "f1", 1000)}
	repayments := []credit.Repayment{rp("r1", "f1", 1500)}

	bal := credit.Balance("f1", credits, repayments)
	assert.True(t, bal.Equal(decimal.NewFromInt(-500)), "reporting keeps the sign")

	out := credit.OutstandingOrZero("f1", credits, repayments)
	assert.True(t, out.IsZero(), "deduction bound clamps at zero")
}

func TestCreditAmount_DerivedFromQuantityWhenTotalMissing(t *testing.T) {
	c := credit.Credit{
		ID:        "c1",
		FarmerID:  "f1",
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.NewFromInt(250),
	}
	assert.True(t, c.Amount().Equal(decimal.NewFromInt(2500)), "quantity x unit price")

	// A stored total wins over the derived product.
	c.TotalAmount = decimal.NewFromInt(2400)
	assert.True(t, c.Amount().Equal(decimal.NewFromInt(2400)))
}

func TestBalance_RunRepaymentsCount(t *testing.T) {
	// Repayments created by a payment run reduce the balance exactly like
	// cash repayments.
	credits := []credit.Credit{cr("c1", "f1", 5000)}
	repayments := []credit.Repayment{
		{
			ID:           "r1",
			FarmerID:     "f1",
			Date:         ledger.NewTimePoint(2025, time.May, 1),
			Amount:       decimal.NewFromInt(3000),
			Method:       credit.MethodHarvestDeduction,
			PaymentRunID: "pr-123",
		},
	}

	bal := credit.Balance("f1", credits, repayments)
	assert.True(t, bal.Equal(decimal.NewFromInt(2000)))
}
