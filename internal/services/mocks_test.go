package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicing-service/internal/gateway"
	"invoicing-service/internal/models"
	"invoicing-service/internal/repository"
)

// MockCompanyRepository is a mock implementation of CompanyRepositoryInterface
type MockCompanyRepository struct {
	mock.Mock
}

var _ repository.CompanyRepositoryInterface = (*MockCompanyRepository)(nil)

func (m *MockCompanyRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) Upsert(ctx context.Context, company *models.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of CustomerRepositoryInterface
type MockCustomerRepository struct {
	mock.Mock
}

var _ repository.CustomerRepositoryInterface = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Customer, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]models.Customer), args.Get(1).(int64), args.Error(2)
}

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListAll(ctx context.Context, ownerID string) ([]models.Product, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) UpsertByName(ctx context.Context, ownerID string, products []models.Product) (int64, error) {
	args := m.Called(ctx, ownerID, products)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepositoryInterface
type MockInvoiceRepository struct {
	mock.Mock
}

var _ repository.InvoiceRepositoryInterface = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, companyID uuid.UUID, financialYear, prefix string) (string, error) {
	args := m.Called(ctx, companyID, financialYear, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, ownerID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]models.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) ListForExport(ctx context.Context, ownerID, financialYear string) ([]models.Invoice, error) {
	args := m.Called(ctx, ownerID, financialYear)
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, to models.InvoiceStatus) (*models.Invoice, models.InvoiceStatus, error) {
	args := m.Called(ctx, ownerID, id, to)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.Invoice), args.Get(1).(models.InvoiceStatus), args.Error(2)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockCreditNoteRepository is a mock implementation of CreditNoteRepositoryInterface
type MockCreditNoteRepository struct {
	mock.Mock
}

var _ repository.CreditNoteRepositoryInterface = (*MockCreditNoteRepository)(nil)

func (m *MockCreditNoteRepository) Create(ctx context.Context, note *models.CreditNote, prefix string, check repository.CreditCheck) error {
	args := m.Called(ctx, note, prefix, check)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.CreditNote, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.CreditNote, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]models.CreditNote), args.Get(1).(int64), args.Error(2)
}

// MockPaymentOrderRepository is a mock implementation of PaymentOrderRepositoryInterface
type MockPaymentOrderRepository struct {
	mock.Mock
}

var _ repository.PaymentOrderRepositoryInterface = (*MockPaymentOrderRepository)(nil)

func (m *MockPaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPaymentOrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.PaymentOrder, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.PaymentOrder), args.Error(1)
}

// MockGateway is a mock implementation of gateway.OrderGateway
type MockGateway struct {
	mock.Mock
}

var _ gateway.OrderGateway = (*MockGateway)(nil)

func (m *MockGateway) GetType() models.GatewayType {
	return models.GatewayRazorpay
}

func (m *MockGateway) CreateOrder(ctx context.Context, req *gateway.CreateOrderRequest) (*gateway.OrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.OrderResult), args.Error(1)
}

// memoryDraftStore keeps drafts as JSON, like the Redis store
type memoryDraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID][]byte
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{drafts: make(map[uuid.UUID][]byte)}
}

func (s *memoryDraftStore) Get(_ context.Context, id uuid.UUID) (*InvoiceDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	var draft InvoiceDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *memoryDraftStore) Save(_ context.Context, draft *InvoiceDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = data
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *memoryDraftStore) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[id]
	return ok
}

// memoryDraftLocker serializes access per draft within the process
type memoryDraftLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newMemoryDraftLocker() *memoryDraftLocker {
	return &memoryDraftLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *memoryDraftLocker) Lock(_ context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock, nil
}
