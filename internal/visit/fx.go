package visit

import (
	"github.com/bizzy604/HIS-sub000/internal/visit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("visit.service",
	fx.Provide(service.New),
)
