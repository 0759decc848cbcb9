package app

import (
	"github.com/veridian-legal/discovery-backend/internal/pkg/envutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

type Config struct {
	Port          string
	PortalBaseURL string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.String("PORT", "8080"),
		PortalBaseURL: envutil.String("PORTAL_BASE_URL", "http://localhost:3000/portal"),
	}
	log.Info("config loaded", "port", cfg.Port)
	return cfg
}
