package completion

import "context"

// Delimiter fences the customer's words inside every prompt.
const Delimiter = "####"

// Completer is the single-call completion surface the extractor and the
// composer depend on. *Client implements it.
type Completer interface {
	Complete(ctx context.Context, messages []Message, model string, temperature float64) (string, error)
}

var _ Completer = (*Client)(nil)

// Fence wraps text in Delimiter on both sides.
func Fence(text string) string {
	return Delimiter + text + Delimiter
}
