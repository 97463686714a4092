package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	analyticsdomain "github.com/bizzy604/HIS-sub000/internal/analytics/domain"
	appointmentdomain "github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	billingdomain "github.com/bizzy604/HIS-sub000/internal/billing/domain"
	"github.com/bizzy604/HIS-sub000/internal/clock"
	"github.com/bizzy604/HIS-sub000/internal/config"
	enrollmentdomain "github.com/bizzy604/HIS-sub000/internal/enrollment/domain"
	laborderdomain "github.com/bizzy604/HIS-sub000/internal/laborder/domain"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	pharmacydomain "github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
	prescriptiondomain "github.com/bizzy604/HIS-sub000/internal/prescription/domain"
	programdomain "github.com/bizzy604/HIS-sub000/internal/program/domain"
	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	"github.com/bizzy604/HIS-sub000/internal/ratelimit"
	visitdomain "github.com/bizzy604/HIS-sub000/internal/visit/domain"
	vitalsdomain "github.com/bizzy604/HIS-sub000/internal/vitals/domain"
)

// NewEngine builds the gin engine with the shared middleware chain. The
// metrics endpoint serves the private registry, not the global one.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics, registry *prometheus.Registry) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

type ServerParams struct {
	fx.In

	Log    *zap.Logger
	Engine *gin.Engine

	ProviderSvc     providerdomain.Service
	AuthzSvc        authorization.Service
	PatientSvc      patientdomain.Service
	ProgramSvc      programdomain.Service
	EnrollmentSvc   enrollmentdomain.Service
	AppointmentSvc  appointmentdomain.Service
	VisitSvc        visitdomain.Service
	VitalsSvc       vitalsdomain.Service
	PrescriptionSvc prescriptiondomain.Service
	LabOrderSvc     laborderdomain.Service
	PharmacySvc     pharmacydomain.Service
	BillingSvc      billingdomain.Service
	AnalyticsSvc    analyticsdomain.Service
	AuditSvc        auditdomain.Service

	Limiter *ratelimit.RequestLimiter `optional:"true"`
	Metrics *metrics.Metrics
	Clock   clock.Clock
}

type Server struct {
	log    *zap.Logger
	engine *gin.Engine

	providerSvc     providerdomain.Service
	authzSvc        authorization.Service
	patientSvc      patientdomain.Service
	programSvc      programdomain.Service
	enrollmentSvc   enrollmentdomain.Service
	appointmentSvc  appointmentdomain.Service
	visitSvc        visitdomain.Service
	vitalsSvc       vitalsdomain.Service
	prescriptionSvc prescriptiondomain.Service
	labOrderSvc     laborderdomain.Service
	pharmacySvc     pharmacydomain.Service
	billingSvc      billingdomain.Service
	analyticsSvc    analyticsdomain.Service
	auditSvc        auditdomain.Service

	limiter *ratelimit.RequestLimiter
	metrics *metrics.Metrics
	clock   clock.Clock
}

func NewServer(p ServerParams) *Server {
	return &Server{
		log:             p.Log.Named("server"),
		engine:          p.Engine,
		providerSvc:     p.ProviderSvc,
		authzSvc:        p.AuthzSvc,
		patientSvc:      p.PatientSvc,
		programSvc:      p.ProgramSvc,
		enrollmentSvc:   p.EnrollmentSvc,
		appointmentSvc:  p.AppointmentSvc,
		visitSvc:        p.VisitSvc,
		vitalsSvc:       p.VitalsSvc,
		prescriptionSvc: p.PrescriptionSvc,
		labOrderSvc:     p.LabOrderSvc,
		pharmacySvc:     p.PharmacySvc,
		billingSvc:      p.BillingSvc,
		analyticsSvc:    p.AnalyticsSvc,
		auditSvc:        p.AuditSvc,
		limiter:         p.Limiter,
		metrics:         p.Metrics,
		clock:           p.Clock,
	}
}

// RegisterAPIRoutes mounts every authenticated resource under /v1.
func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/v1")
	api.Use(AuthRequired(s.providerSvc))
	api.Use(RateLimitMiddleware(s.limiter, s.metrics))

	s.registerProviderRoutes(api)
	s.registerPatientRoutes(api)
	s.registerProgramRoutes(api)
	s.registerEnrollmentRoutes(api)
	s.registerAppointmentRoutes(api)
	s.registerVisitRoutes(api)
	s.registerVitalsRoutes(api)
	s.registerPrescriptionRoutes(api)
	s.registerLabOrderRoutes(api)
	s.registerPharmacyRoutes(api)
	s.registerBillingRoutes(api)
	s.registerAnalyticsRoutes(api)
	s.registerAuditLogRoutes(api)
}

func (s *Server) guard(object, action string) gin.HandlerFunc {
	return authorize(s.authzSvc, object, action)
}

// RunHTTP starts the HTTP listener on fx startup and drains it on shutdown.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
