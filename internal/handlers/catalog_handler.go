package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/repository"
	"invoicing-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CatalogHandler serves the company profile, customers, products and the
// GST state list
type CatalogHandler struct {
	companies *services.CompanyService
	customers *services.CustomerService
	products  *services.ProductService
	states    repository.GSTStateRepositoryInterface
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	companies *services.CompanyService,
	customers *services.CustomerService,
	products *services.ProductService,
	states repository.GSTStateRepositoryInterface,
) *CatalogHandler {
	return &CatalogHandler{
		companies: companies,
		customers: customers,
		products:  products,
		states:    states,
	}
}

// ==================== Company ====================

// GetCompany returns the caller's company profile
// @Summary Get company profile
// @Tags company
// @Produce json
// @Success 200 {object} models.Company
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /company [get]
func (h *CatalogHandler) GetCompany(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err, "Failed to get company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// SaveCompany creates or replaces the caller's company profile
// @Summary Save company profile
// @Tags company
// @Accept json
// @Produce json
// @Param company body models.CompanyRequest true "Company profile"
// @Success 200 {object} models.Company
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /company [put]
func (h *CatalogHandler) SaveCompany(c *gin.Context) {
	var req models.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	company, err := h.companies.Save(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to save company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// ==================== Customers ====================

// ListCustomers handles GET /api/v1/customers
// @Summary List customers
// @Tags customers
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Name, email or GSTIN"
// @Success 200 {object} models.ListResponse
// @Security BearerAuth
// @Router /customers [get]
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	var filter models.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.customers.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateCustomer handles POST /api/v1/customers
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body models.CustomerRequest true "Customer"
// @Success 201 {object} models.Customer
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /customers [post]
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /api/v1/customers/:id
// @Summary Get customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
// @Summary Update customer
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body models.CustomerRequest true "Customer"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /customers/{id} [put]
func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), ownerID(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
// @Summary Delete customer
// @Tags customers
// @Param id path string true "Customer ID"
// @Success 204
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *CatalogHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.customers.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== Products ====================

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Name or HSN code"
// @Success 200 {object} models.ListResponse
// @Security BearerAuth
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter models.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.products.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateProduct handles POST /api/v1/products
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.ProductRequest true "Product"
// @Success 201 {object} models.Product
// @Security BearerAuth
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /api/v1/products/:id
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /api/v1/products/:id
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.ProductRequest true "Product"
// @Success 200 {object} models.Product
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), ownerID(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
// @Summary Delete product
// @Tags products
// @Param id path string true "Product ID"
// @Success 204
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportProducts handles POST /api/v1/products/import
// @Summary Import products from xlsx
// @Description Upserts products by name. Invalid rows are reported and skipped.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook in the template layout"
// @Success 200 {object} services.ImportResult
// @Security BearerAuth
// @Router /products/import [post]
func (h *CatalogHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "File is required",
			"message": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read file",
			"message": err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.products.Import(c.Request.Context(), ownerID(c), file)
	if err != nil {
		respondError(c, err, "Failed to import products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportProducts handles GET /api/v1/products/export
// @Summary Export products as xlsx
// @Tags products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security BearerAuth
// @Router /products/export [get]
func (h *CatalogHandler) ExportProducts(c *gin.Context) {
	buf, err := h.products.Export(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err, "Failed to export products")
		return
	}
	sendAttachment(c, fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102")), xlsxContentType, buf.Bytes())
}

// ProductTemplate handles GET /api/v1/products/template
// @Summary Download the product import template
// @Tags products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /products/template [get]
func (h *CatalogHandler) ProductTemplate(c *gin.Context) {
	buf, err := services.ProductTemplate()
	if err != nil {
		respondError(c, err, "Failed to generate template")
		return
	}
	sendAttachment(c, "products_import_template.xlsx", xlsxContentType, buf.Bytes())
}

// ==================== GST states ====================

// ListStates handles GET /api/v1/gst/states
// @Summary List GST state codes
// @Tags gst
// @Produce json
// @Success 200 {array} models.GSTState
// @Router /gst/states [get]
func (h *CatalogHandler) ListStates(c *gin.Context) {
	if h.states != nil {
		states, err := h.states.List(c.Request.Context())
		if err == nil && len(states) > 0 {
			c.JSON(http.StatusOK, states)
			return
		}
	}

	states := make([]models.GSTState, 0, len(gst.States))
	for _, s := range gst.States {
		states = append(states, models.GSTState{Code: s.Code, Name: s.Name, IsUnionTerritory: s.IsUnionTerritory})
	}
	c.JSON(http.StatusOK, states)
}

func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
