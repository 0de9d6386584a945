package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tutorlink/walletview/internal/model"
)

func TestClassify_Precedence(t *testing.T) {
	c := New(DefaultRules())
	tests := []struct {
		name string
		tx   model.Transaction
		want model.Category
	}{
		{
			name: "explicit withdrawal hint",
			tx:   model.Transaction{SourceKind: model.SourceWithdrawalRequest, TypeHint: "withdrawal", Description: "refund"},
			want: model.CategoryWithdrawal,
		},
		{
			name: "explicit deposit hint beats refund keyword",
			tx:   model.Transaction{SourceKind: model.SourceLedger, TypeHint: "Deposit", Description: "refund of session"},
			want: model.CategoryDeposit,
		},
		{
			name: "explicit payment hint beats deposit keyword",
			tx:   model.Transaction{SourceKind: model.SourceLedger, TypeHint: "payment", Description: "top up"},
			want: model.CategoryPayment,
		},
		{
			name: "gateway inbound",
			tx:   model.Transaction{SourceKind: model.SourceDirectGateway, Direction: model.DirectionIn},
			want: model.CategoryDeposit,
		},
		{
			name: "gateway outbound",
			tx:   model.Transaction{SourceKind: model.SourceDirectGateway, Direction: model.DirectionOut},
			want: model.CategoryPayment,
		},
		{
			name: "gateway contract forces payment over inbound flag",
			tx:   model.Transaction{SourceKind: model.SourceDirectGateway, Direction: model.DirectionIn, ContractRef: "c1"},
			want: model.CategoryPayment,
		},
		{
			name: "explicit type hint outranks gateway contract",
			tx:   model.Transaction{SourceKind: model.SourceDirectGateway, Direction: model.DirectionIn, ContractRef: "c1", TypeHint: "refund"},
			want: model.CategoryRefund,
		},
		{
			name: "contract ref on ledger record does not force payment",
			tx:   model.Transaction{SourceKind: model.SourceLedger, ContractRef: "c1", TypeHint: "refund"},
			want: model.CategoryRefund,
		},
		{
			name: "refund keyword",
			tx:   model.Transaction{SourceKind: model.SourceLedger, Description: "REFUND for cancelled lesson"},
			want: model.CategoryRefund,
		},
		{
			name: "refund keyword checked before deposit keyword",
			tx:   model.Transaction{SourceKind: model.SourceLedger, Description: "refund deposit"},
			want: model.CategoryRefund,
		},
		{
			name: "vietnamese deposit keyword",
			tx:   model.Transaction{SourceKind: model.SourceLedger, Description: "Nạp tiền vào ví"},
			want: model.CategoryDeposit,
		},
		{
			name: "unknown hint falls back to keywords",
			tx:   model.Transaction{SourceKind: model.SourceLedger, TypeHint: "adjustment", Description: "Top up wallet"},
			want: model.CategoryDeposit,
		},
		{
			name: "default payment",
			tx:   model.Transaction{SourceKind: model.SourceLedger, Description: "Tutoring session with Ms. Lan"},
			want: model.CategoryPayment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.tx))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(DefaultRules())
	txs := []model.Transaction{
		{SourceKind: model.SourceLedger, Description: "refund"},
		{SourceKind: model.SourceLedger, Description: "whatever"},
		{SourceKind: model.SourceDirectGateway, Direction: model.DirectionIn},
		{SourceKind: model.SourceWithdrawalRequest, TypeHint: "withdrawal"},
		{},
	}
	for _, tx := range txs {
		first := c.Classify(tx)
		assert.Equal(t, first, c.Classify(tx))
		assert.True(t, first.Valid(), "category %q must be one of the four", first)
	}
}

func TestClassify_CustomRules(t *testing.T) {
	c := New(Rules{RefundKeywords: []string{" Trả Lại "}, DepositKeywords: nil})

	assert.Equal(t, model.CategoryRefund, c.Classify(model.Transaction{Description: "trả lại học phí"}))
	assert.Equal(t, model.CategoryPayment, c.Classify(model.Transaction{Description: "top up"}))
}

func TestApply(t *testing.T) {
	c := New(DefaultRules())
	in := []model.Transaction{
		{ID: "1", TypeHint: "deposit"},
		{ID: "2", Description: "Lesson"},
	}
	out := c.Apply(in)

	assert.Equal(t, model.CategoryDeposit, out[0].Category)
	assert.Equal(t, model.CategoryPayment, out[1].Category)
	assert.Empty(t, in[0].Category, "input is not modified")
}
