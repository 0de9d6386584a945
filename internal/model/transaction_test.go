package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCategoryIsIncome(t *testing.T) {
	tests := []struct {
		cat  Category
		want bool
	}{
		{CategoryDeposit, true},
		{CategoryRefund, true},
		{CategoryPayment, false},
		{CategoryWithdrawal, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cat.IsIncome(), "IsIncome(%q)", tt.cat)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "%q should be valid", c)
	}
	assert.False(t, Category("").Valid())
	assert.False(t, Category("transfer").Valid())
}

func TestSignedAmount(t *testing.T) {
	tx := Transaction{Amount: decimal.NewFromInt(200), Category: CategoryRefund}
	assert.Equal(t, "200", tx.SignedAmount().String())

	tx.Category = CategoryWithdrawal
	assert.Equal(t, "-200", tx.SignedAmount().String())
}

func TestAnchoredToWallet(t *testing.T) {
	assert.True(t, SourceLedger.AnchoredToWallet())
	assert.True(t, SourceWithdrawalRequest.AnchoredToWallet())
	assert.False(t, SourceDirectGateway.AnchoredToWallet())
}
