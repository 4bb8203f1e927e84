package ports

import "net/http"

// HTTPClient abstracts *http.Client so adapters can be tested with a fake
// transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
