package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cardboard/internal/dependencies/mocks"
	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/services/policy"
	"github.com/mcoot/cardboard/internal/storage/memory"
	"github.com/mcoot/cardboard/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Password hashing uses the cheapest bcrypt cost.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		PolicyConfig: policy.Config{BcryptCost: bcrypt.MinCost},
	}
	app := newWithDependencies(store, store, mockClock, mockRandom, uuid.New(), cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
