package database

import "vecinu/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Neighborhood{},
		&models.User{},
		&models.Post{},
		&models.PostImage{},
		&models.SavedPost{},
		&models.Comment{},
		&models.Report{},
		&models.AuditLog{},
		&models.Notification{},
	}
}
