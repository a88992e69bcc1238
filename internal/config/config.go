package config

import (
	"github.com/kelseyhightower/envconfig"
)

// App is the process configuration. DATABASE_URL selects the storage
// backend: set, the service runs on Postgres; empty, it runs on the
// in-memory store, optionally persisted to SNAPSHOT_PATH.
type App struct {
	// Network
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	// Storage
	DatabaseURL  string `envconfig:"DATABASE_URL" default:""`
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:""`
	// Events
	AMQPURL       string `envconfig:"AMQP_URL" default:""`
	EventExchange string `envconfig:"EVENT_EXCHANGE" default:"slotbook.events"`
	// Lifecycle
	ShutdownTimeoutSec int `envconfig:"SHUTDOWN_TIMEOUT_SEC" default:"10"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
