package models

// Party is a read model of the host's party entity: only the fields the
// charge engine needs.
type Party struct {
	ID    string
	Name  string
	Email string
}

// Address is a read model of the host's structured address entity. Missing
// fields stay empty and are omitted from provider payloads, never sent as
// placeholder strings.
type Address struct {
	ID          string
	PartyID     string
	Name        string
	Street      string
	StreetBis   string
	City        string
	Zip         string
	Subdivision string // state/province name
	Country     string // country name
}
