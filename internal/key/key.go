package key

import (
	"fmt"
	"strings"

	"github.com/tutorlink/walletview/internal/model"
)

const sep = ":"

// FormatKey returns a display key like "ledger:abc123".
// Transaction IDs are only unique within one source.
func FormatKey(kind model.SourceKind, id string) string {
	return string(kind) + sep + id
}

// Of returns the display key for a transaction.
func Of(tx model.Transaction) string {
	return FormatKey(tx.SourceKind, tx.ID)
}

// ParseKey splits "ledger:abc123" into its source kind and ID.
func ParseKey(k string) (model.SourceKind, string, error) {
	kind, id, ok := strings.Cut(k, sep)
	if !ok {
		return "", "", fmt.Errorf("invalid key format: %q", k)
	}

	sk := model.SourceKind(kind)
	switch sk {
	case model.SourceLedger, model.SourceWithdrawalRequest, model.SourceDirectGateway:
	default:
		return "", "", fmt.Errorf("unknown source kind in key %q", k)
	}

	if id == "" {
		return "", "", fmt.Errorf("empty id in key %q", k)
	}
	return sk, id, nil
}

// FallbackPrefix marks IDs generated for records that arrived without one.
const FallbackPrefix = "~"

// Fallback returns the ID assigned to a record that arrived without one.
// "~withdrawalRequest-3" for the fourth record of that source.
func Fallback(kind model.SourceKind, index int) string {
	return fmt.Sprintf("%s%s-%d", FallbackPrefix, kind, index)
}

// IsFallback reports whether id was generated by Fallback.
func IsFallback(id string) bool {
	return strings.HasPrefix(id, FallbackPrefix)
}
