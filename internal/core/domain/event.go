package domain

import "time"

// Notification topics. Consumers subscribe per topic; payloads are the
// JSON encodings of the event structs below.
const (
	TopicRecorded   = "ledger.recorded"
	TopicFlagged    = "ledger.flagged"
	TopicKycUpdated = "ledger.kyc_updated"
)

// RecordedEvent is emitted after a transaction is durably recorded.
type RecordedEvent struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// FlaggedEvent is emitted after a transaction is flagged.
type FlaggedEvent struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// KycUpdatedEvent is emitted after a party's KYC tag changes.
type KycUpdatedEvent struct {
	Party string `json:"party"`
	Tag   string `json:"tag"`
}
