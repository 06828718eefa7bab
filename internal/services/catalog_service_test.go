package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/models"
	"invoicing-service/internal/repository"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestCompanyService_Save_DefaultsPrefixes(t *testing.T) {
	companies := new(MockCompanyRepository)
	svc := NewCompanyService(companies, quietLogger())
	companies.On("Upsert", mock.Anything, mock.MatchedBy(func(c *models.Company) bool {
		return c.OwnerID == testOwner && c.InvoicePrefix == models.DefaultInvoicePrefix && c.CreditNotePrefix == models.DefaultCreditNotePrefix
	})).Return(nil)

	company, err := svc.Save(context.Background(), testOwner, models.CompanyRequest{
		Name:  "Acme",
		State: "Karnataka",
		GSTIN: "29abcde1234f1z5",
	})

	require.NoError(t, err)
	assert.Equal(t, "29ABCDE1234F1Z5", company.GSTIN)
	companies.AssertExpectations(t)
}

func TestCompanyService_Save_GSTINStateMismatch(t *testing.T) {
	companies := new(MockCompanyRepository)
	svc := NewCompanyService(companies, quietLogger())

	_, err := svc.Save(context.Background(), testOwner, models.CompanyRequest{
		Name:  "Acme",
		State: "Karnataka",
		GSTIN: "27ABCDE1234F1Z5",
	})

	assert.ErrorIs(t, err, ErrGSTINStateMismatch)
	companies.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCustomerService_Update(t *testing.T) {
	customers := new(MockCustomerRepository)
	svc := NewCustomerService(customers)
	existing := createTestCustomer("Goa")
	customers.On("GetByID", mock.Anything, testOwner, existing.ID).Return(existing, nil)
	customers.On("Update", mock.Anything, existing).Return(nil)

	updated, err := svc.Update(context.Background(), testOwner, existing.ID, models.CustomerRequest{
		Name:  "Globex India",
		State: "Kerala",
		Tags:  []string{"wholesale"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Globex India", updated.Name)
	assert.Equal(t, "Kerala", updated.State)
	customers.AssertExpectations(t)
}

func TestCustomerService_Get_NotFound(t *testing.T) {
	customers := new(MockCustomerRepository)
	svc := NewCustomerService(customers)
	id := uuid.New()
	customers.On("GetByID", mock.Anything, testOwner, id).Return(nil, repository.ErrNotFound)

	_, err := svc.Get(context.Background(), testOwner, id)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCustomerService_List_Paginates(t *testing.T) {
	customers := new(MockCustomerRepository)
	svc := NewCustomerService(customers)
	customers.On("List", mock.Anything, testOwner, models.ListFilter{Page: 1, Limit: 20}).
		Return([]models.Customer{*createTestCustomer("Goa")}, int64(1), nil)

	result, err := svc.List(context.Background(), testOwner, models.ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.Limit)
}

func TestProductService_Import(t *testing.T) {
	products := new(MockProductRepository)
	svc := NewProductService(products, quietLogger())
	buf, err := ProductsWorkbook([]models.Product{
		{Name: "Chair", Price: 1500, GSTRate: 12, Unit: "pcs"},
		{Name: "Table", Price: 4500, GSTRate: 12, Unit: "pcs"},
	})
	require.NoError(t, err)
	products.On("UpsertByName", mock.Anything, testOwner, mock.MatchedBy(func(p []models.Product) bool {
		return len(p) == 2
	})).Return(int64(2), nil)

	result, err := svc.Import(context.Background(), testOwner, bytes.NewReader(buf.Bytes()))

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Imported)
	assert.Equal(t, 0, result.Rejected)
	assert.NotNil(t, result.Errors)
}

func TestProductService_Create_DefaultsUnit(t *testing.T) {
	products := new(MockProductRepository)
	svc := NewProductService(products, quietLogger())
	products.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil)

	product, err := svc.Create(context.Background(), testOwner, models.ProductRequest{Name: "Pen", Price: 10, GSTRate: 18})

	require.NoError(t, err)
	assert.Equal(t, "pcs", product.Unit)
	assert.Equal(t, testOwner, product.OwnerID)
}
