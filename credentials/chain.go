package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Chain is a Provider that tries each member in order and returns the first
// snapshot that resolves. Retrieval errors from earlier members are carried
// along when every member fails.
type Chain struct {
	providers []Provider
}

// NewChain returns a Provider over the given members, tried in order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Retrieve returns the first resolvable snapshot.
func (c *Chain) Retrieve(ctx context.Context) (Value, error) {
	if len(c.providers) == 0 {
		return Value{}, errors.New("credential chain is empty")
	}
	var errs []error
	for _, p := range c.providers {
		v, err := p.Retrieve(ctx)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return Value{}, fmt.Errorf("no provider in chain yielded credentials: %w", errors.Join(errs...))
}
