package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/phrazzld/careplan-api/internal/platform/memory"
	"github.com/phrazzld/careplan-api/internal/store"
	"github.com/stretchr/testify/require"
)

var seeded atomic.Int64

var errProvider = errors.New("upstream unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedGenerator fails the first len(failures) calls with the listed
// errors, then returns content.
type scriptedGenerator struct {
	mu       sync.Mutex
	failures []error
	content  string
	calls    int
	inputs   []generation.Input
}

func (g *scriptedGenerator) Generate(_ context.Context, in generation.Input) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	g.inputs = append(g.inputs, in)
	if g.calls <= len(g.failures) {
		return "", generation.NewProviderError("scripted", g.failures[g.calls-1])
	}
	return g.content, nil
}

func (g *scriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// sleepRecorder records requested delays without waiting.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// seedPlan stores a medication guide plan for a new patient. mutate adjusts
// the plan before it is saved.
func seedPlan(t *testing.T, stores store.Stores, mutate func(*domain.CarePlan)) *domain.CarePlan {
	t.Helper()
	ctx := context.Background()

	// Patients without an MRN are unique by name and date of birth.
	dob := time.Date(1975, 2, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(seeded.Add(1)))
	patient, err := domain.NewClinicalPatient("Bob", "Smith", dob, domain.ClinicalFields{
		Medications: "Lisinopril 10mg",
		Allergies:   "Penicillin",
	})
	require.NoError(t, err)
	require.NoError(t, stores.Patients.Create(ctx, patient))

	plan, err := domain.NewCarePlan(patient.ID, nil, time.Now())
	require.NoError(t, err)
	if mutate != nil {
		mutate(plan)
	}
	require.NoError(t, stores.CarePlans.Create(ctx, plan))
	return plan
}

func newMemoryStores() store.Stores {
	return memory.NewDB().Stores()
}

func planStatus(t *testing.T, stores store.Stores, id uuid.UUID) *domain.CarePlan {
	t.Helper()
	plan, err := stores.CarePlans.GetByID(context.Background(), id)
	require.NoError(t, err)
	return plan
}
