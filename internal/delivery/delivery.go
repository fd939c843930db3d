// Package delivery defines the contract every transport (HTTP, workers)
// implements so main can start them uniformly.
package delivery

import "context"

// Delivery is a long-running request-serving component.
type Delivery interface {
	// Serve blocks until the delivery stops or fails.
	Serve(ctx context.Context) error
}
