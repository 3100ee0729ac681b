// Package delivery defines the contract every transport implementation satisfies.
package delivery

import "context"

// Delivery is a serving surface (HTTP today) started by the application entrypoint.
type Delivery interface {
	Serve(ctx context.Context) error
}
