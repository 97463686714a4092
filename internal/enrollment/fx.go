package enrollment

import (
	"github.com/bizzy604/HIS-sub000/internal/enrollment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enrollment.service",
	fx.Provide(service.New),
)
