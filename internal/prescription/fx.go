package prescription

import (
	"github.com/bizzy604/HIS-sub000/internal/prescription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prescription.service",
	fx.Provide(service.New),
)
