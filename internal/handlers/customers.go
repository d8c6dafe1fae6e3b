package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hindusthan/agriserve/internal/models"
	"github.com/hindusthan/agriserve/internal/services"
	"github.com/hindusthan/agriserve/pkg/response"
)

// CustomerHandler exposes the customer profile CRUD routes.
type CustomerHandler struct {
	customers *services.CustomerService
}

func NewCustomerHandler(customers *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0)
	limit := parseIntQuery(c, "limit", 10)

	customers, total, err := h.customers.List(c.Request.Context(), skip, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, customers, &response.Meta{
		Skip:  skip,
		Limit: limit,
		Total: total,
	})
}

// GET /api/v1/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, customer)
}

type createCustomerRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name" validate:"required"`
	NickName    string `json:"nick_name"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	District    string `json:"district" validate:"required"`
	Mandal      string `json:"mandal"`
	Village     string `json:"village"`
	RegisterBy  string `json:"register_by"`
	UserID      string `json:"user_id" validate:"required"`
	KYCNumber   string `json:"kyc_number"`
	KYCURL      string `json:"kyc_url"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Service     string `json:"service" validate:"required"`
	SubService  string `json:"sub_service"`
}

// POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req createCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	customer := &models.Customer{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		NickName:    req.NickName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		District:    req.District,
		Mandal:      req.Mandal,
		Village:     req.Village,
		RegisterBy:  req.RegisterBy,
		UserID:      req.UserID,
		KYCNumber:   req.KYCNumber,
		KYCURL:      req.KYCURL,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Service:     req.Service,
		SubService:  req.SubService,
	}

	if err := h.customers.Create(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, customer)
}

type updateCustomerRequest struct {
	FirstName   *string `json:"first_name"`
	MiddleName  *string `json:"middle_name"`
	LastName    *string `json:"last_name"`
	NickName    *string `json:"nick_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
	District    *string `json:"district"`
	Mandal      *string `json:"mandal"`
	Village     *string `json:"village"`
	RegisterBy  *string `json:"register_by"`
	UserID      *string `json:"user_id"`
	KYCNumber   *string `json:"kyc_number"`
	KYCURL      *string `json:"kyc_url"`
	Street      *string `json:"street"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	Service     *string `json:"service"`
	SubService  *string `json:"sub_service"`
}

func (r *updateCustomerRequest) fields() map[string]any {
	fields := map[string]any{}
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}

	set("first_name", r.FirstName)
	set("middle_name", r.MiddleName)
	set("last_name", r.LastName)
	set("nick_name", r.NickName)
	set("phone_number", r.PhoneNumber)
	set("email", r.Email)
	set("district", r.District)
	set("mandal", r.Mandal)
	set("village", r.Village)
	set("register_by", r.RegisterBy)
	set("user_id", r.UserID)
	set("kyc_number", r.KYCNumber)
	set("kyc_url", r.KYCURL)
	set("street", r.Street)
	set("city", r.City)
	set("state", r.State)
	set("postal_code", r.PostalCode)
	set("country", r.Country)
	set("service", r.Service)
	set("sub_service", r.SubService)

	return fields
}

// PATCH /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var req updateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	customer, err := h.customers.UpdateFields(c.Request.Context(), c.Param("id"), req.fields())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, customer)
}

// DELETE /api/v1/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
