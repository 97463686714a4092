package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/enrollment/domain"
)

func (s *Server) registerEnrollmentRoutes(r *gin.RouterGroup) {
	enrollments := r.Group("/enrollments")
	{
		enrollments.POST("", s.guard(authorization.ObjectEnrollment, authorization.ActionCreate), s.createEnrollment)
		enrollments.GET("", s.guard(authorization.ObjectEnrollment, authorization.ActionView), s.listEnrollments)
		enrollments.GET("/:id", s.guard(authorization.ObjectEnrollment, authorization.ActionView), s.getEnrollment)
		enrollments.PATCH("/:id/status", s.guard(authorization.ObjectEnrollment, authorization.ActionEnrollmentClose), s.updateEnrollmentStatus)
	}
}

type createEnrollmentRequest struct {
	PatientID string `json:"patient_id"`
	ProgramID string `json:"program_id"`
	Notes     string `json:"notes"`
}

func (s *Server) createEnrollment(c *gin.Context) {
	var req createEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Enroll(c.Request.Context(), domain.EnrollRequest{
		PatientID: req.PatientID,
		ProgramID: req.ProgramID,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getEnrollment(c *gin.Context) {
	resp, err := s.enrollmentSvc.GetByID(c.Request.Context(), domain.GetEnrollmentRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listEnrollments(c *gin.Context) {
	resp, err := s.enrollmentSvc.List(c.Request.Context(), domain.ListEnrollmentRequest{
		PatientID: c.Query("patient_id"),
		ProgramID: c.Query("program_id"),
		Status:    c.Query("status"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateEnrollmentStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (s *Server) updateEnrollmentStatus(c *gin.Context) {
	var req updateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.UpdateStatus(c.Request.Context(), domain.UpdateEnrollmentStatusRequest{
		ID:     c.Param("id"),
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
