package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/visit/domain"
)

func (s *Server) registerVisitRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", s.guard(authorization.ObjectVisit, authorization.ActionCreate), s.createVisit)
		visits.GET("", s.guard(authorization.ObjectVisit, authorization.ActionView), s.listVisits)
		visits.GET("/:id", s.guard(authorization.ObjectVisit, authorization.ActionView), s.getVisit)
		visits.PATCH("/:id", s.guard(authorization.ObjectVisit, authorization.ActionUpdate), s.updateVisit)
	}
}

type createVisitRequest struct {
	PatientID      string     `json:"patient_id"`
	AppointmentID  string     `json:"appointment_id"`
	VisitDate      *time.Time `json:"visit_date"`
	ChiefComplaint string     `json:"chief_complaint"`
	Diagnosis      string     `json:"diagnosis"`
	TreatmentPlan  string     `json:"treatment_plan"`
	Notes          string     `json:"notes"`
}

func (s *Server) createVisit(c *gin.Context) {
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.visitSvc.Create(c.Request.Context(), domain.CreateVisitRequest{
		PatientID:      req.PatientID,
		AppointmentID:  req.AppointmentID,
		VisitDate:      req.VisitDate,
		ChiefComplaint: req.ChiefComplaint,
		Diagnosis:      req.Diagnosis,
		TreatmentPlan:  req.TreatmentPlan,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getVisit(c *gin.Context) {
	resp, err := s.visitSvc.GetByID(c.Request.Context(), domain.GetVisitRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listVisits(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "must be a date or RFC3339 timestamp"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "must be a date or RFC3339 timestamp"))
		return
	}

	resp, err := s.visitSvc.List(c.Request.Context(), domain.ListVisitRequest{
		PatientID: c.Query("patient_id"),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateVisitRequest struct {
	ChiefComplaint *string `json:"chief_complaint"`
	Diagnosis      *string `json:"diagnosis"`
	TreatmentPlan  *string `json:"treatment_plan"`
	Notes          *string `json:"notes"`
}

func (s *Server) updateVisit(c *gin.Context) {
	var req updateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.visitSvc.Update(c.Request.Context(), domain.UpdateVisitRequest{
		ID:             c.Param("id"),
		ChiefComplaint: req.ChiefComplaint,
		Diagnosis:      req.Diagnosis,
		TreatmentPlan:  req.TreatmentPlan,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
