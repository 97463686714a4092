package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/billing/domain"
)

func (s *Server) registerBillingRoutes(r *gin.RouterGroup) {
	bills := r.Group("/bills")
	{
		bills.POST("", s.guard(authorization.ObjectBill, authorization.ActionCreate), s.createBill)
		bills.GET("", s.guard(authorization.ObjectBill, authorization.ActionView), s.listBills)
		bills.GET("/:id", s.guard(authorization.ObjectBill, authorization.ActionView), s.getBill)
		bills.POST("/:id/payments", s.guard(authorization.ObjectBill, authorization.ActionBillRecordPayment), s.recordBillPayment)
		bills.POST("/:id/cancel", s.guard(authorization.ObjectBill, authorization.ActionBillCancel), s.cancelBill)
	}
}

type billItemRequest struct {
	Description string  `json:"description"`
	ItemType    string  `json:"item_type"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type createBillRequest struct {
	PatientID       string            `json:"patient_id"`
	Items           []billItemRequest `json:"items"`
	DiscountPercent float64           `json:"discount_percent"`
	Notes           string            `json:"notes"`
}

func (s *Server) createBill(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]domain.BillItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.BillItemInput{
			Description: item.Description,
			ItemType:    item.ItemType,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	resp, err := s.billingSvc.Create(c.Request.Context(), domain.CreateBillRequest{
		PatientID:       req.PatientID,
		Items:           items,
		DiscountPercent: req.DiscountPercent,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getBill(c *gin.Context) {
	resp, err := s.billingSvc.GetByID(c.Request.Context(), domain.GetBillRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listBills(c *gin.Context) {
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "must be an integer"))
		return
	}

	req := domain.ListBillRequest{
		PageToken: c.Query("page_token"),
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	}
	if pageSize != nil {
		req.PageSize = int32(*pageSize)
	}

	resp, err := s.billingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordBillPaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

func (s *Server) recordBillPayment(c *gin.Context) {
	var req recordBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.RecordPayment(c.Request.Context(), domain.RecordPaymentRequest{
		BillID:         c.Param("id"),
		Amount:         req.Amount,
		Method:         req.Method,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) cancelBill(c *gin.Context) {
	resp, err := s.billingSvc.Cancel(c.Request.Context(), domain.CancelBillRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
