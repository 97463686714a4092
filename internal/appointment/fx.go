package appointment

import (
	"github.com/bizzy604/HIS-sub000/internal/appointment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("appointment.service",
	fx.Provide(service.New),
)
