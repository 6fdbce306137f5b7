package service

import (
	"gorm.io/gorm"

	"github.com/vouchpost/vouchpost/internal/background"
	"github.com/vouchpost/vouchpost/internal/db"
	"github.com/vouchpost/vouchpost/pkg/tokens"
)

// Info holds the collaborators a service needs to issue and judge challenges.
type Info struct {
	DB          *gorm.DB
	KeyStore    db.KeyStore
	Analysis    *background.AnalysisServer
	KeyResolver tokens.KeyResolver
	Difficulty  uint16
}
