package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/bizzy604/HIS-sub000/internal/access"
	"github.com/bizzy604/HIS-sub000/internal/analytics"
	"github.com/bizzy604/HIS-sub000/internal/appointment"
	"github.com/bizzy604/HIS-sub000/internal/audit"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/billing"
	"github.com/bizzy604/HIS-sub000/internal/clock"
	"github.com/bizzy604/HIS-sub000/internal/config"
	"github.com/bizzy604/HIS-sub000/internal/enrollment"
	"github.com/bizzy604/HIS-sub000/internal/laborder"
	"github.com/bizzy604/HIS-sub000/internal/logger"
	"github.com/bizzy604/HIS-sub000/internal/migration"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	"github.com/bizzy604/HIS-sub000/internal/patient"
	"github.com/bizzy604/HIS-sub000/internal/pharmacy"
	"github.com/bizzy604/HIS-sub000/internal/prescription"
	"github.com/bizzy604/HIS-sub000/internal/program"
	"github.com/bizzy604/HIS-sub000/internal/provider"
	"github.com/bizzy604/HIS-sub000/internal/ratelimit"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"github.com/bizzy604/HIS-sub000/internal/server"
	"github.com/bizzy604/HIS-sub000/internal/visit"
	"github.com/bizzy604/HIS-sub000/internal/vitals"
	"github.com/bizzy604/HIS-sub000/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		metrics.Module,
		ratelimit.Module,

		sequence.Module,
		access.Module,
		authorization.Module,
		audit.Module,
		provider.Module,

		patient.Module,
		program.Module,
		enrollment.Module,
		appointment.Module,
		visit.Module,
		vitals.Module,
		prescription.Module,
		laborder.Module,
		pharmacy.Module,
		billing.Module,
		analytics.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
