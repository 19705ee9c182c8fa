package brief

import "fmt"

// ProviderError is a fetch-stage failure: network error, bad or missing
// API key, malformed response, or rate-limit rejection. It aborts the run
// before anything is ranked or sent.
type ProviderError struct {
	Provider string // e.g. "finviz"
	Op       string // what was being done, e.g. "screen"
	Status   int    // HTTP status code when one was received, else 0
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: %s: status %d: %v", e.Provider, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DeliveryError is a notify-stage failure: the email provider rejected the
// payload or could not be reached. The run counts as failed even though
// ranking succeeded.
type DeliveryError struct {
	Provider string // e.g. "mailjet"
	Op       string
	Status   int
	Err      error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("delivery via %s: %s: status %d: %v", e.Provider, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("delivery via %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
