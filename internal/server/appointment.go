package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
)

func (s *Server) registerAppointmentRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", s.guard(authorization.ObjectAppointment, authorization.ActionCreate), s.createAppointment)
		appointments.GET("", s.guard(authorization.ObjectAppointment, authorization.ActionView), s.listAppointments)
		appointments.GET("/queue", s.guard(authorization.ObjectAppointment, authorization.ActionView), s.todayQueue)
		appointments.GET("/:id", s.guard(authorization.ObjectAppointment, authorization.ActionView), s.getAppointment)
		appointments.PATCH("/:id", s.guard(authorization.ObjectAppointment, authorization.ActionUpdate), s.updateAppointment)
		appointments.PATCH("/:id/status", s.guard(authorization.ObjectAppointment, authorization.ActionAppointmentTransition), s.transitionAppointment)
	}
}

type createAppointmentRequest struct {
	PatientID       string    `json:"patient_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int64     `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}

func (s *Server) createAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Create(c.Request.Context(), domain.CreateAppointmentRequest{
		PatientID:       req.PatientID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getAppointment(c *gin.Context) {
	resp, err := s.appointmentSvc.GetByID(c.Request.Context(), domain.GetAppointmentRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listAppointments(c *gin.Context) {
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

	resp, err := s.appointmentSvc.List(c.Request.Context(), domain.ListAppointmentRequest{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) todayQueue(c *gin.Context) {
	queue, err := s.appointmentSvc.TodayQueue(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"appointments": queue}})
}

type updateAppointmentRequest struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int64     `json:"duration_minutes"`
	Reason          *string    `json:"reason"`
	Notes           *string    `json:"notes"`
}

func (s *Server) updateAppointment(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Update(c.Request.Context(), domain.UpdateAppointmentRequest{
		ID:              c.Param("id"),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionAppointmentRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (s *Server) transitionAppointment(c *gin.Context) {
	var req transitionAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Transition(c.Request.Context(), domain.TransitionAppointmentRequest{
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
