package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/program/domain"
)

func (s *Server) registerProgramRoutes(r *gin.RouterGroup) {
	programs := r.Group("/programs")
	{
		programs.POST("", s.guard(authorization.ObjectProgram, authorization.ActionCreate), s.createProgram)
		programs.GET("", s.guard(authorization.ObjectProgram, authorization.ActionView), s.listPrograms)
		programs.GET("/:id", s.guard(authorization.ObjectProgram, authorization.ActionView), s.getProgram)
		programs.PATCH("/:id", s.guard(authorization.ObjectProgram, authorization.ActionUpdate), s.updateProgram)
		programs.DELETE("/:id", s.guard(authorization.ObjectProgram, authorization.ActionDelete), s.deleteProgram)
	}
}

type createProgramRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createProgram(c *gin.Context) {
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.programSvc.Create(c.Request.Context(), domain.CreateProgramRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getProgram(c *gin.Context) {
	resp, err := s.programSvc.GetByID(c.Request.Context(), domain.GetProgramRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listPrograms(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "must be a boolean"))
		return
	}

	resp, err := s.programSvc.List(c.Request.Context(), domain.ListProgramRequest{
		Query:  c.Query("q"),
		Active: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProgramRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (s *Server) updateProgram(c *gin.Context) {
	var req updateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.programSvc.Update(c.Request.Context(), domain.UpdateProgramRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) deleteProgram(c *gin.Context) {
	if err := s.programSvc.Delete(c.Request.Context(), domain.DeleteProgramRequest{
		ID: c.Param("id"),
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
