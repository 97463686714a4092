package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/prescription/domain"
)

func (s *Server) registerPrescriptionRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("", s.guard(authorization.ObjectPrescription, authorization.ActionCreate), s.createPrescription)
		prescriptions.GET("", s.guard(authorization.ObjectPrescription, authorization.ActionView), s.listPrescriptions)
		prescriptions.GET("/:id", s.guard(authorization.ObjectPrescription, authorization.ActionView), s.getPrescription)
		prescriptions.POST("/:id/dispense", s.guard(authorization.ObjectPrescription, authorization.ActionPrescriptionDispense), s.dispensePrescription)
		prescriptions.POST("/:id/cancel", s.guard(authorization.ObjectPrescription, authorization.ActionPrescriptionCancel), s.cancelPrescription)
	}
}

type prescriptionItemRequest struct {
	MedicineID   string `json:"medicine_id"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	DurationDays int64  `json:"duration_days"`
	Quantity     int64  `json:"quantity"`
	Instructions string `json:"instructions"`
}

type createPrescriptionRequest struct {
	PatientID string                    `json:"patient_id"`
	VisitID   string                    `json:"visit_id"`
	Notes     string                    `json:"notes"`
	Items     []prescriptionItemRequest `json:"items"`
}

func (s *Server) createPrescription(c *gin.Context) {
	var req createPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]domain.PrescriptionItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.PrescriptionItemInput{
			MedicineID:   item.MedicineID,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}

	resp, err := s.prescriptionSvc.Create(c.Request.Context(), domain.CreatePrescriptionRequest{
		PatientID: req.PatientID,
		VisitID:   req.VisitID,
		Notes:     req.Notes,
		Items:     items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getPrescription(c *gin.Context) {
	resp, err := s.prescriptionSvc.GetByID(c.Request.Context(), domain.GetPrescriptionRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listPrescriptions(c *gin.Context) {
	resp, err := s.prescriptionSvc.List(c.Request.Context(), domain.ListPrescriptionRequest{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) dispensePrescription(c *gin.Context) {
	resp, err := s.prescriptionSvc.Dispense(c.Request.Context(), domain.DispensePrescriptionRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) cancelPrescription(c *gin.Context) {
	resp, err := s.prescriptionSvc.Cancel(c.Request.Context(), domain.CancelPrescriptionRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
