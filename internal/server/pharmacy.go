package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
)

func (s *Server) registerPharmacyRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.POST("", s.guard(authorization.ObjectMedicine, authorization.ActionCreate), s.createMedicine)
		medicines.GET("", s.guard(authorization.ObjectMedicine, authorization.ActionView), s.listMedicines)
		medicines.GET("/:id", s.guard(authorization.ObjectMedicine, authorization.ActionView), s.getMedicine)
		medicines.PATCH("/:id", s.guard(authorization.ObjectMedicine, authorization.ActionUpdate), s.updateMedicine)
		medicines.POST("/:id/batches", s.guard(authorization.ObjectMedicine, authorization.ActionMedicineReceiveBatch), s.receiveBatch)
		medicines.GET("/:id/batches", s.guard(authorization.ObjectMedicine, authorization.ActionView), s.listBatches)
	}
}

type createMedicineRequest struct {
	Name         string  `json:"name"`
	GenericName  string  `json:"generic_name"`
	Form         string  `json:"form"`
	Strength     string  `json:"strength"`
	ReorderLevel int64   `json:"reorder_level"`
	UnitPrice    float64 `json:"unit_price"`
}

func (s *Server) createMedicine(c *gin.Context) {
	var req createMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pharmacySvc.CreateMedicine(c.Request.Context(), domain.CreateMedicineRequest{
		Name:         req.Name,
		GenericName:  req.GenericName,
		Form:         req.Form,
		Strength:     req.Strength,
		ReorderLevel: req.ReorderLevel,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getMedicine(c *gin.Context) {
	resp, err := s.pharmacySvc.GetMedicine(c.Request.Context(), domain.GetMedicineRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listMedicines(c *gin.Context) {
	lowStock, err := parseOptionalBool(c.Query("low_stock"))
	if err != nil {
		AbortWithError(c, newValidationError("low_stock", "invalid_low_stock", "must be a boolean"))
		return
	}

	req := domain.ListMedicineRequest{Query: c.Query("q")}
	if lowStock != nil {
		req.LowStock = *lowStock
	}

	resp, err := s.pharmacySvc.ListMedicines(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateMedicineRequest struct {
	Name         *string  `json:"name"`
	GenericName  *string  `json:"generic_name"`
	Form         *string  `json:"form"`
	Strength     *string  `json:"strength"`
	ReorderLevel *int64   `json:"reorder_level"`
	UnitPrice    *float64 `json:"unit_price"`
}

func (s *Server) updateMedicine(c *gin.Context) {
	var req updateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pharmacySvc.UpdateMedicine(c.Request.Context(), domain.UpdateMedicineRequest{
		ID:           c.Param("id"),
		Name:         req.Name,
		GenericName:  req.GenericName,
		Form:         req.Form,
		Strength:     req.Strength,
		ReorderLevel: req.ReorderLevel,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type receiveBatchRequest struct {
	BatchNumber string     `json:"batch_number"`
	Quantity    int64      `json:"quantity"`
	Cost        float64    `json:"cost"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

func (s *Server) receiveBatch(c *gin.Context) {
	var req receiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pharmacySvc.ReceiveBatch(c.Request.Context(), domain.ReceiveBatchRequest{
		MedicineID:  c.Param("id"),
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		Cost:        req.Cost,
		ExpiryDate:  req.ExpiryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listBatches(c *gin.Context) {
	expiringWithin, err := parseOptionalInt(c.Query("expiring_within_days"))
	if err != nil {
		AbortWithError(c, newValidationError("expiring_within_days", "invalid_expiring_within_days", "must be an integer"))
		return
	}
	req := domain.ListBatchRequest{MedicineID: c.Param("id")}
	if expiringWithin != nil {
		req.ExpiringWithin = *expiringWithin
	}

	resp, err := s.pharmacySvc.ListBatches(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
