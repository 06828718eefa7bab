package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/repository"
)

// ErrGSTINStateMismatch means a GSTIN's state code does not match the address
var ErrGSTINStateMismatch = errors.New("GSTIN state code does not match the state")

func checkGSTIN(gstin, state string) error {
	if gstin == "" {
		return nil
	}
	if !gst.GSTINMatchesState(gstin, state) {
		return fmt.Errorf("%w: %s is not registered in %s", ErrGSTINStateMismatch, gstin, state)
	}
	return nil
}

// CompanyService manages the owner's seller profile
type CompanyService struct {
	companies repository.CompanyRepositoryInterface
	logger    *logrus.Entry
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companies repository.CompanyRepositoryInterface, logger *logrus.Logger) *CompanyService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CompanyService{companies: companies, logger: logger.WithField("component", "company-service")}
}

// Get returns the owner's company
func (s *CompanyService) Get(ctx context.Context, ownerID string) (*models.Company, error) {
	return s.companies.GetByOwner(ctx, ownerID)
}

// Save creates or updates the owner's company
func (s *CompanyService) Save(ctx context.Context, ownerID string, req models.CompanyRequest) (*models.Company, error) {
	company := &models.Company{OwnerID: ownerID}
	req.Apply(company)
	if err := checkGSTIN(company.GSTIN, company.State); err != nil {
		return nil, err
	}
	if err := s.companies.Upsert(ctx, company); err != nil {
		return nil, err
	}
	s.logger.WithField("ownerId", ownerID).Info("Company profile saved")
	return company, nil
}

// CustomerService manages the owner's customers
type CustomerService struct {
	customers repository.CustomerRepositoryInterface
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers repository.CustomerRepositoryInterface) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) Create(ctx context.Context, ownerID string, req models.CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{OwnerID: ownerID}
	req.Apply(customer)
	if err := checkGSTIN(customer.GSTIN, customer.State); err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Customer, error) {
	return s.customers.GetByID(ctx, ownerID, id)
}

func (s *CustomerService) Update(ctx context.Context, ownerID string, id uuid.UUID, req models.CustomerRequest) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	req.Apply(customer)
	if err := checkGSTIN(customer.GSTIN, customer.State); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.customers.Delete(ctx, ownerID, id)
}

func (s *CustomerService) List(ctx context.Context, ownerID string, filter models.ListFilter) (*models.ListResponse, error) {
	filter.Normalize()
	customers, total, err := s.customers.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return &models.ListResponse{Data: customers, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ProductService manages the owner's product catalog
type ProductService struct {
	products repository.ProductRepositoryInterface
	logger   *logrus.Entry
}

// NewProductService creates a new ProductService
func NewProductService(products repository.ProductRepositoryInterface, logger *logrus.Logger) *ProductService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProductService{products: products, logger: logger.WithField("component", "product-service")}
}

func (s *ProductService) Create(ctx context.Context, ownerID string, req models.ProductRequest) (*models.Product, error) {
	product := &models.Product{OwnerID: ownerID}
	req.Apply(product)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(ctx, ownerID, id)
}

func (s *ProductService) Update(ctx context.Context, ownerID string, id uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	req.Apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.products.Delete(ctx, ownerID, id)
}

func (s *ProductService) List(ctx context.Context, ownerID string, filter models.ListFilter) (*models.ListResponse, error) {
	filter.Normalize()
	products, total, err := s.products.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return &models.ListResponse{Data: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	Imported int64            `json:"imported"`
	Rejected int              `json:"rejected"`
	Errors   []ImportRowError `json:"errors"`
}

// Import upserts products by name from an xlsx upload
func (s *ProductService) Import(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	products, rowErrors, err := ParseProducts(r)
	if err != nil {
		return nil, err
	}

	imported, err := s.products.UpsertByName(ctx, ownerID, products)
	if err != nil {
		return nil, fmt.Errorf("failed to import products: %w", err)
	}

	if rowErrors == nil {
		rowErrors = make([]ImportRowError, 0)
	}
	s.logger.WithFields(logrus.Fields{
		"ownerId":  ownerID,
		"imported": imported,
		"rejected": len(rowErrors),
	}).Info("Products imported")
	return &ImportResult{Imported: imported, Rejected: len(rowErrors), Errors: rowErrors}, nil
}

// Export writes the owner's catalog as xlsx
func (s *ProductService) Export(ctx context.Context, ownerID string) (*bytes.Buffer, error) {
	products, err := s.products.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ProductsWorkbook(products)
}
