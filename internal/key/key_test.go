package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/walletview/internal/model"
)

func TestFormatKey(t *testing.T) {
	tests := []struct {
		kind model.SourceKind
		id   string
		want string
	}{
		{model.SourceLedger, "42", "ledger:42"},
		{model.SourceWithdrawalRequest, "w-1", "withdrawalRequest:w-1"},
		{model.SourceDirectGateway, "a:b", "directGateway:a:b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKey(tt.kind, tt.id))
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input    string
		wantKind model.SourceKind
		wantID   string
	}{
		{"ledger:42", model.SourceLedger, "42"},
		{"withdrawalRequest:w-1", model.SourceWithdrawalRequest, "w-1"},
		{"directGateway:a:b", model.SourceDirectGateway, "a:b"},
	}
	for _, tt := range tests {
		kind, id, err := ParseKey(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantKind, kind)
		assert.Equal(t, tt.wantID, id)
	}
}

func TestParseKey_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"ledger",
		"ledger:",
		"wallet:42",
	}
	for _, input := range badInputs {
		_, _, err := ParseKey(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestSameIDDifferentSources(t *testing.T) {
	a := Of(model.Transaction{ID: "7", SourceKind: model.SourceLedger})
	b := Of(model.Transaction{ID: "7", SourceKind: model.SourceDirectGateway})
	assert.NotEqual(t, a, b)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "~withdrawalRequest-3", Fallback(model.SourceWithdrawalRequest, 3))
	assert.True(t, IsFallback(Fallback(model.SourceLedger, 0)))
	assert.False(t, IsFallback("ledger-0"))

	kind, id, err := ParseKey(FormatKey(model.SourceLedger, Fallback(model.SourceLedger, 2)))
	assert.NoError(t, err)
	assert.Equal(t, model.SourceLedger, kind)
	assert.Equal(t, "~ledger-2", id)
}
