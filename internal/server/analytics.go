package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/analytics/domain"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
)

func (s *Server) registerAnalyticsRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/dashboard", s.guard(authorization.ObjectAnalytics, authorization.ActionAnalyticsView), s.dashboard)
		analytics.GET("/revenue", s.guard(authorization.ObjectAnalytics, authorization.ActionAnalyticsView), s.revenueSeries)
	}
}

func (s *Server) dashboard(c *gin.Context) {
	resp, err := s.analyticsSvc.Dashboard(c.Request.Context(), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) revenueSeries(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil || from == nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "must be a date or RFC3339 timestamp"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), false)
	if err != nil || to == nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "must be a date or RFC3339 timestamp"))
		return
	}

	points, err := s.analyticsSvc.RevenueSeries(c.Request.Context(), domain.RevenueSeriesRequest{
		From: *from,
		To:   *to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"points": points}})
}
