package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/vitals/domain"
)

func (s *Server) registerVitalsRoutes(r *gin.RouterGroup) {
	vitals := r.Group("/vitals")
	{
		vitals.POST("", s.guard(authorization.ObjectVitals, authorization.ActionVitalsRecord), s.recordVitals)
		vitals.GET("", s.guard(authorization.ObjectVitals, authorization.ActionView), s.listVitals)
	}
}

type recordVitalsRequest struct {
	PatientID        string     `json:"patient_id"`
	VisitID          string     `json:"visit_id"`
	TemperatureC     *float64   `json:"temperature_c"`
	PulseBPM         *int64     `json:"pulse_bpm"`
	RespiratoryRate  *int64     `json:"respiratory_rate"`
	SystolicBP       *int64     `json:"systolic_bp"`
	DiastolicBP      *int64     `json:"diastolic_bp"`
	OxygenSaturation *float64   `json:"oxygen_saturation"`
	WeightKG         *float64   `json:"weight_kg"`
	HeightCM         *float64   `json:"height_cm"`
	RecordedAt       *time.Time `json:"recorded_at"`
}

func (s *Server) recordVitals(c *gin.Context) {
	var req recordVitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vitalsSvc.Record(c.Request.Context(), domain.RecordVitalsRequest{
		PatientID:        req.PatientID,
		VisitID:          req.VisitID,
		TemperatureC:     req.TemperatureC,
		PulseBPM:         req.PulseBPM,
		RespiratoryRate:  req.RespiratoryRate,
		SystolicBP:       req.SystolicBP,
		DiastolicBP:      req.DiastolicBP,
		OxygenSaturation: req.OxygenSaturation,
		WeightKG:         req.WeightKG,
		HeightCM:         req.HeightCM,
		RecordedAt:       req.RecordedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listVitals(c *gin.Context) {
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

	resp, err := s.vitalsSvc.List(c.Request.Context(), domain.ListVitalsRequest{
		PatientID: c.Query("patient_id"),
		VisitID:   c.Query("visit_id"),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
