package numbering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSequencer is a mock implementation of Sequencer
type MockSequencer struct {
	mock.Mock
}

var _ Sequencer = (*MockSequencer)(nil)

func (m *MockSequencer) NextInvoiceNumber(ctx context.Context, companyID uuid.UUID, financialYear, prefix string) (string, error) {
	args := m.Called(ctx, companyID, financialYear, prefix)
	return args.String(0), args.Error(1)
}

func newTestAllocator(seq Sequencer, companyID uuid.UUID, fy string) *Allocator {
	a := NewAllocator(seq, "INV")
	a.SetCompany(companyID, "INV")
	a.SetFinancialYear(fy)
	return a
}

func TestAllocate_IsIdempotentWithinFinancialYear(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0007", nil).Once()

	a := newTestAllocator(seq, companyID, "2024-2025")

	first, err := a.Allocate(ctx)
	require.NoError(t, err)
	second, err := a.Allocate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "INV/2024-2025/0007", first)
	assert.Equal(t, first, second)
	assert.Equal(t, Allocated, a.State())
	seq.AssertNumberOfCalls(t, "NextInvoiceNumber", 1)
}

func TestAllocate_FinancialYearChangeInvalidates(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2023-2024", "INV").Return("INV/2023-2024/0042", nil).Once()
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0001", nil).Once()

	a := newTestAllocator(seq, companyID, "2023-2024")
	_, err := a.Allocate(ctx)
	require.NoError(t, err)

	a.SetFinancialYear("2024-2025")
	assert.Equal(t, Unallocated, a.State())
	assert.Empty(t, a.Number())

	number, err := a.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV/2024-2025/0001", number)
	seq.AssertNumberOfCalls(t, "NextInvoiceNumber", 2)
}

func TestAllocate_SameFinancialYearKeepsNumber(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0003", nil).Once()

	a := newTestAllocator(seq, companyID, "2024-2025")
	_, err := a.Allocate(ctx)
	require.NoError(t, err)

	a.SetFinancialYear("2024-2025")
	assert.Equal(t, Allocated, a.State())
	assert.Equal(t, "INV/2024-2025/0003", a.Number())
}

func TestAllocate_FailureLeavesUnallocatedAndRetries(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("", errors.New("connection reset")).Once()
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0002", nil).Once()

	a := newTestAllocator(seq, companyID, "2024-2025")

	_, err := a.Allocate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSequenceUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, Unallocated, a.State())

	number, err := a.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV/2024-2025/0002", number)
}

func TestAllocate_MissingCompanyDoesNotCallBackend(t *testing.T) {
	seq := new(MockSequencer)
	a := NewAllocator(seq, "INV")
	a.SetFinancialYear("2024-2025")

	_, err := a.Allocate(context.Background())

	assert.ErrorIs(t, err, ErrCompanyMissing)
	assert.Equal(t, Unallocated, a.State())
	seq.AssertNotCalled(t, "NextInvoiceNumber", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAllocate_MissingFinancialYear(t *testing.T) {
	seq := new(MockSequencer)
	a := NewAllocator(seq, "INV")
	a.SetCompany(uuid.New(), "INV")

	_, err := a.Allocate(context.Background())

	assert.ErrorIs(t, err, ErrFinancialYearMissing)
	seq.AssertNotCalled(t, "NextInvoiceNumber", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetCompany_ChangeInvalidates(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0009", nil).Once()

	a := newTestAllocator(seq, companyID, "2024-2025")
	_, err := a.Allocate(ctx)
	require.NoError(t, err)

	a.SetCompany(companyID, "INV")
	assert.Equal(t, Allocated, a.State())

	a.SetCompany(companyID, "BILL")
	assert.Equal(t, Unallocated, a.State())
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	seq := new(MockSequencer)
	seq.On("NextInvoiceNumber", ctx, companyID, "2024-2025", "INV").Return("INV/2024-2025/0011", nil).Once()

	a := newTestAllocator(seq, companyID, "2024-2025")
	_, err := a.Allocate(ctx)
	require.NoError(t, err)

	restored := Restore(seq, a.Snapshot())
	number, err := restored.Allocate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "INV/2024-2025/0011", number)
	seq.AssertNumberOfCalls(t, "NextInvoiceNumber", 1)
}

func TestRestore_InterruptedAllocationIsUnallocated(t *testing.T) {
	restored := Restore(new(MockSequencer), Snapshot{
		State:         Allocating,
		CompanyID:     uuid.New(),
		FinancialYear: "2024-2025",
		Prefix:        "INV",
	})

	assert.Equal(t, Unallocated, restored.State())
}
