package ethtest

import (
	"context"
	"sync"

	"storj.io/permit-payment/pkg/wallet"
)

// Approver records every signing request and approves it unless told to
// decline the next request of a kind.
type Approver struct {
	mu       sync.Mutex
	decline  map[wallet.RequestKind]bool
	requests []wallet.Request
}

var _ wallet.Approver = (*Approver)(nil)

func NewApprover() *Approver {
	return &Approver{
		decline: make(map[wallet.RequestKind]bool),
	}
}

func (a *Approver) DeclineNext(kind wallet.RequestKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decline[kind] = true
}

func (a *Approver) Approve(ctx context.Context, req wallet.Request) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	if a.decline[req.Kind] {
		delete(a.decline, req.Kind)
		return wallet.Rejected("User denied %s signature", req.Kind)
	}
	return nil
}

func (a *Approver) Requests() []wallet.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]wallet.Request(nil), a.requests...)
}

// Count returns how many requests of kind were seen.
func (a *Approver) Count(kind wallet.RequestKind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, req := range a.requests {
		if req.Kind == kind {
			n++
		}
	}
	return n
}
