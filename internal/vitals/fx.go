package vitals

import (
	"github.com/bizzy604/HIS-sub000/internal/vitals/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vitals.service",
	fx.Provide(service.New),
)
