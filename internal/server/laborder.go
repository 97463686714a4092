package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/laborder/domain"
)

func (s *Server) registerLabOrderRoutes(r *gin.RouterGroup) {
	labOrders := r.Group("/lab-orders")
	{
		labOrders.POST("", s.guard(authorization.ObjectLabOrder, authorization.ActionCreate), s.createLabOrder)
		labOrders.GET("", s.guard(authorization.ObjectLabOrder, authorization.ActionView), s.listLabOrders)
		labOrders.GET("/:id", s.guard(authorization.ObjectLabOrder, authorization.ActionView), s.getLabOrder)
		labOrders.PATCH("/:id/status", s.guard(authorization.ObjectLabOrder, authorization.ActionLabOrderTransition), s.transitionLabOrder)
		labOrders.POST("/:id/results", s.guard(authorization.ObjectLabOrder, authorization.ActionLabOrderRecordResults), s.recordLabResults)
	}
}

type createLabOrderRequest struct {
	PatientID string `json:"patient_id"`
	VisitID   string `json:"visit_id"`
	TestName  string `json:"test_name"`
	TestCode  string `json:"test_code"`
	Priority  string `json:"priority"`
	Notes     string `json:"notes"`
}

func (s *Server) createLabOrder(c *gin.Context) {
	var req createLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.labOrderSvc.Create(c.Request.Context(), domain.CreateLabOrderRequest{
		PatientID: req.PatientID,
		VisitID:   req.VisitID,
		TestName:  req.TestName,
		TestCode:  req.TestCode,
		Priority:  req.Priority,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getLabOrder(c *gin.Context) {
	resp, err := s.labOrderSvc.GetByID(c.Request.Context(), domain.GetLabOrderRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listLabOrders(c *gin.Context) {
	resp, err := s.labOrderSvc.List(c.Request.Context(), domain.ListLabOrderRequest{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionLabOrderRequest struct {
	Status string `json:"status"`
}

func (s *Server) transitionLabOrder(c *gin.Context) {
	var req transitionLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.labOrderSvc.Transition(c.Request.Context(), domain.TransitionLabOrderRequest{
		ID:     c.Param("id"),
		Status: req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordLabResultsRequest struct {
	Results map[string]any `json:"results"`
	Notes   string         `json:"notes"`
}

func (s *Server) recordLabResults(c *gin.Context) {
	var req recordLabResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.labOrderSvc.RecordResults(c.Request.Context(), domain.RecordResultsRequest{
		ID:      c.Param("id"),
		Results: req.Results,
		Notes:   req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
