package migration

import (
	"github.com/bizzy604/HIS-sub000/internal/config"
	"github.com/bizzy604/HIS-sub000/internal/seed"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		// Embedded migrations target postgres; other dialects (sqlite in
		// tests, mysql deployments) manage schema out of band.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.BootstrapAdminToken != "" {
			return seed.EnsureAdminProvider(conn, node, cfg.BootstrapAdminName, cfg.BootstrapAdminEmail, cfg.BootstrapAdminToken)
		}
		return nil
	}),
)
