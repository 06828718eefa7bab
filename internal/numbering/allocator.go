// Package numbering hands out invoice numbers for a draft, calling the
// backend sequence at most once per (company, financial year).
package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// State of an allocator
type State string

const (
	Unallocated State = "unallocated"
	Allocating  State = "allocating"
	Allocated   State = "allocated"
)

var (
	// ErrCompanyMissing means there is no company profile to number against.
	// It is a precondition failure and must not be retried automatically.
	ErrCompanyMissing = errors.New("company profile is required before generating a document number")

	// ErrFinancialYearMissing means the draft has no document date yet
	ErrFinancialYearMissing = errors.New("financial year is required before generating a document number")

	// ErrAllocationInProgress is returned on re-entrant allocation
	ErrAllocationInProgress = errors.New("document number allocation already in progress")

	// ErrSequenceUnavailable wraps failures of the backend sequence; retryable
	ErrSequenceUnavailable = errors.New("document number sequence unavailable")
)

// Sequencer atomically increments and returns the next number for a scope
type Sequencer interface {
	NextInvoiceNumber(ctx context.Context, companyID uuid.UUID, financialYear, prefix string) (string, error)
}

// Snapshot is the persistable part of an allocator
type Snapshot struct {
	State         State     `json:"state"`
	CompanyID     uuid.UUID `json:"companyId"`
	FinancialYear string    `json:"financialYear"`
	Prefix        string    `json:"prefix"`
	Number        string    `json:"number,omitempty"`
}

// Allocator caches one allocated number for a draft. It is not safe for
// concurrent use; callers serialize access per draft.
type Allocator struct {
	seq           Sequencer
	state         State
	companyID     uuid.UUID
	financialYear string
	prefix        string
	number        string
}

// NewAllocator creates an allocator in the Unallocated state
func NewAllocator(seq Sequencer, prefix string) *Allocator {
	return &Allocator{
		seq:    seq,
		state:  Unallocated,
		prefix: prefix,
	}
}

// Restore rebuilds an allocator from a snapshot. An interrupted allocation
// (Allocating) comes back as Unallocated.
func Restore(seq Sequencer, snap Snapshot) *Allocator {
	a := &Allocator{
		seq:           seq,
		state:         snap.State,
		companyID:     snap.CompanyID,
		financialYear: snap.FinancialYear,
		prefix:        snap.Prefix,
		number:        snap.Number,
	}
	if a.state != Allocated || a.number == "" {
		a.state = Unallocated
		a.number = ""
	}
	return a
}

// Snapshot returns the persistable state
func (a *Allocator) Snapshot() Snapshot {
	return Snapshot{
		State:         a.state,
		CompanyID:     a.companyID,
		FinancialYear: a.financialYear,
		Prefix:        a.prefix,
		Number:        a.number,
	}
}

func (a *Allocator) State() State          { return a.state }
func (a *Allocator) Number() string        { return a.number }
func (a *Allocator) FinancialYear() string { return a.financialYear }

// SetFinancialYear records the draft's financial year. A change discards
// any allocated number so numbers never cross fiscal years.
func (a *Allocator) SetFinancialYear(fy string) {
	if fy == a.financialYear {
		return
	}
	a.financialYear = fy
	a.reset()
}

// SetCompany records the company being numbered against. A different
// company discards any allocated number.
func (a *Allocator) SetCompany(companyID uuid.UUID, prefix string) {
	if companyID == a.companyID && prefix == a.prefix {
		return
	}
	a.companyID = companyID
	a.prefix = prefix
	a.reset()
}

// Allocate returns the cached number or fetches a new one from the sequencer
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	switch a.state {
	case Allocated:
		return a.number, nil
	case Allocating:
		return "", ErrAllocationInProgress
	}

	if a.companyID == uuid.Nil {
		return "", ErrCompanyMissing
	}
	if a.financialYear == "" {
		return "", ErrFinancialYearMissing
	}

	a.state = Allocating
	number, err := a.seq.NextInvoiceNumber(ctx, a.companyID, a.financialYear, a.prefix)
	if err != nil {
		a.state = Unallocated
		return "", fmt.Errorf("%w: %w", ErrSequenceUnavailable, err)
	}

	a.number = number
	a.state = Allocated
	return number, nil
}

func (a *Allocator) reset() {
	a.state = Unallocated
	a.number = ""
}
