package patient

import (
	"github.com/bizzy604/HIS-sub000/internal/patient/repository"
	"github.com/bizzy604/HIS-sub000/internal/patient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("patient.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
