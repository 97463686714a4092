package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
)

func (s *Server) registerAuditLogRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", s.guard(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.listAuditLogs)
}

func (s *Server) listAuditLogs(c *gin.Context) {
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "must be an integer"))
		return
	}
	startAt, err := parseOptionalTime(c.Query("start_at"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "must be a date or RFC3339 timestamp"))
		return
	}
	endAt, err := parseOptionalTime(c.Query("end_at"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "must be a date or RFC3339 timestamp"))
		return
	}

	req := domain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: c.Query("page_token"),
		},
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   c.Query("target_id"),
		StartAt:    startAt,
		EndAt:      endAt,
	}
	if pageSize != nil {
		req.PageSize = *pageSize
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
