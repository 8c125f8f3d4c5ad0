// Package catalog exposes the game-catalog lookup the review flow depends
// on. The backend only needs an existence check.
package catalog

import (
	"github.com/KevinT25/GameTracker-Backend/backend/models"

	"gorm.io/gorm"
)

type Catalog interface {
	Exists(gameID uint) (bool, error)
}

type GormCatalog struct {
	DB *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{DB: db}
}

func (c *GormCatalog) Exists(gameID uint) (bool, error) {
	var count int64
	err := c.DB.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
