package analytics

import (
	"github.com/bizzy604/HIS-sub000/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(service.New),
)
