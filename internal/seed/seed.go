package seed

import (
	"errors"
	"strings"
	"time"

	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// EnsureAdminProvider seeds an admin provider on first boot so the API is
// reachable with the bootstrap token. Idempotent: an existing provider with
// the same email is left untouched.
func EnsureAdminProvider(db *gorm.DB, node *snowflake.Node, name, email, token string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return errors.New("seed admin email and token are required")
	}

	var count int64
	if err := db.Model(&providerdomain.Provider{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	admin := providerdomain.Provider{
		ID:        node.Generate(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      providerdomain.RoleAdmin,
		APIToken:  token,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.Create(&admin).Error
}
