package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes keep entity ids self-describing in logs and audit trails.
const (
	PrefixUser             = "usr"
	PrefixWallet           = "wal"
	PrefixBalance          = "bal"
	PrefixIntent           = "txn"
	PrefixLedgerEntry      = "led"
	PrefixFunding          = "fnd"
	PrefixTransfer         = "trf"
	PrefixWithdrawal       = "wdl"
	PrefixAuditLog         = "adt"
	PrefixIdempotencyKey   = "idk"
	PrefixExecutionAttempt = "att"
	PrefixFundingRef       = "fnd_ref"
	PrefixTransferRef      = "trf_ref"
	PrefixWithdrawalRef    = "wdl_ref"
)

const idLength = 20

// NewID returns a prefixed opaque id, e.g. "txn-9f1c2ab84d03e57b6a91".
// The random part is derived from a v4 UUID.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:idLength]
}
