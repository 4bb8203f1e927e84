package models

import "time"

// TransactionLog is an append-only snapshot of one provider round trip
// (success response or error body) linked to a transaction.
type TransactionLog struct {
	ID            string
	TransactionID string
	Payload       []byte // raw serialized provider response or error
	CreatedAt     time.Time
}
