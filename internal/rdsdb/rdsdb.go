// Package rdsdb manages the lifecycle of the managed PostgreSQL instance:
// DB subnet group, instance create/delete, status, and availability waits.
package rdsdb

import (
	"time"

	"go.uber.org/zap"
)

// defaultPollInterval matches the fixed polling cadence used when waiting
// for the instance to become available.
const defaultPollInterval = 30 * time.Second

// Manager wraps the RDS client with the operations this tool needs.
type Manager struct {
	rds          RDSAPI
	log          *zap.Logger
	pollInterval time.Duration
}

// New returns a Manager backed by the given RDS client.
func New(client RDSAPI, log *zap.Logger) *Manager {
	return &Manager{
		rds:          client,
		log:          log,
		pollInterval: defaultPollInterval,
	}
}
