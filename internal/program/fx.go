package program

import (
	"github.com/bizzy604/HIS-sub000/internal/program/service"
	"go.uber.org/fx"
)

var Module = fx.Module("program.service",
	fx.Provide(service.New),
)
