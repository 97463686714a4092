package laborder

import (
	"github.com/bizzy604/HIS-sub000/internal/laborder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("laborder.service",
	fx.Provide(service.New),
)
