package address

import (
	"context"
	"sync"
)

// MockLookup is a test implementation of Lookup.
type MockLookup struct {
	SearchFunc func(ctx context.Context, postalCode string) (*Address, error)

	mu    sync.Mutex
	Calls []string
}

// NewMockLookup returns a mock that resolves every CEP to a fixed address.
func NewMockLookup() *MockLookup {
	return &MockLookup{}
}

// Search delegates to SearchFunc or returns a default address.
func (m *MockLookup) Search(ctx context.Context, postalCode string) (*Address, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, postalCode)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, postalCode)
	}
	return &Address{
		PostalCode:   postalCode,
		Street:       "Avenida Paulista",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}, nil
}

// CallCount returns how many searches were made.
func (m *MockLookup) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
