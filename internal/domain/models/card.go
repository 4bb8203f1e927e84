package models

// CardInfo carries raw card data for the duration of a single request.
// It is never persisted; the provisioner exchanges it for a PaymentProfile
// and the charge builder copies it into a one-shot provider payload.
type CardInfo struct {
	Number       string
	ExpiryMonth  int
	ExpiryYear   int
	SecurityCode string
	OwnerName    string
	Address      *Address // optional billing address supplied with the card
}
