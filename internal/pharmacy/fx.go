package pharmacy

import (
	"github.com/bizzy604/HIS-sub000/internal/pharmacy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pharmacy.service",
	fx.Provide(service.New),
)
