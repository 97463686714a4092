package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/provider/domain"
)

func (s *Server) registerProviderRoutes(r *gin.RouterGroup) {
	providers := r.Group("/providers")
	{
		providers.GET("/me", s.getCurrentProvider)
	}
}

func (s *Server) getCurrentProvider(c *gin.Context) {
	providerID, ok := authctx.ProviderIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.providerSvc.GetByID(c.Request.Context(), domain.GetProviderRequest{
		ID: providerID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
