package domain

// IntentMetadata carries the operation-specific payload of an intent as a
// tagged union. Exactly one arm is set, keyed by the intent type.
type IntentMetadata struct {
	Funding    *FundingMetadata    `json:"funding,omitempty"`
	Transfer   *TransferMetadata   `json:"transfer,omitempty"`
	Withdrawal *WithdrawalMetadata `json:"withdrawal,omitempty"`
}

type FundingMetadata struct {
	Provider string `json:"provider"`
}

type TransferMetadata struct {
	SenderWalletID   string `json:"sender_wallet_id"`
	ReceiverWalletID string `json:"receiver_wallet_id"`
}

type WithdrawalMetadata struct {
	Destination BankDetails `json:"destination"`
}
