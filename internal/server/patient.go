package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/patient/domain"
)

func (s *Server) registerPatientRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", s.guard(authorization.ObjectPatient, authorization.ActionCreate), s.createPatient)
		patients.GET("", s.guard(authorization.ObjectPatient, authorization.ActionView), s.listPatients)
		patients.GET("/:id", s.guard(authorization.ObjectPatient, authorization.ActionView), s.getPatient)
		patients.PATCH("/:id", s.guard(authorization.ObjectPatient, authorization.ActionUpdate), s.updatePatient)
		patients.DELETE("/:id", s.guard(authorization.ObjectPatient, authorization.ActionDelete), s.deletePatient)
	}
}

type createPatientRequest struct {
	Name        string     `json:"name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	BloodType   string     `json:"blood_type"`
}

func (s *Server) createPatient(c *gin.Context) {
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.patientSvc.Create(c.Request.Context(), domain.CreatePatientRequest{
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		BloodType:   req.BloodType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getPatient(c *gin.Context) {
	resp, err := s.patientSvc.GetByID(c.Request.Context(), domain.GetPatientRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listPatients(c *gin.Context) {
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "must be an integer"))
		return
	}

	req := domain.ListPatientRequest{
		PageToken: c.Query("page_token"),
		Query:     c.Query("q"),
		Gender:    c.Query("gender"),
	}
	if pageSize != nil {
		req.PageSize = int32(*pageSize)
	}

	resp, err := s.patientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePatientRequest struct {
	Name        *string    `json:"name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      *string    `json:"gender"`
	Phone       *string    `json:"phone"`
	Email       *string    `json:"email"`
	Address     *string    `json:"address"`
	BloodType   *string    `json:"blood_type"`
}

func (s *Server) updatePatient(c *gin.Context) {
	var req updatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.patientSvc.Update(c.Request.Context(), domain.UpdatePatientRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		BloodType:   req.BloodType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) deletePatient(c *gin.Context) {
	if err := s.patientSvc.Delete(c.Request.Context(), domain.DeletePatientRequest{
		ID: c.Param("id"),
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
