package provider

import (
	"github.com/bizzy604/HIS-sub000/internal/provider/service"
	"go.uber.org/fx"
)

var Module = fx.Module("provider.service",
	fx.Provide(service.New),
)
