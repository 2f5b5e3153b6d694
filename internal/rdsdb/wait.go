package rdsdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// terminalStates are instance states that will never progress to available.
var terminalStates = map[string]bool{
	"failed":                  true,
	"incompatible-parameters": true,
	"incompatible-restore":    true,
}

// WaitForAvailable polls the instance at a fixed interval until it reports
// available, a terminal state, or maxWait elapses. New instances take ten
// minutes or more, so progress is logged on every poll.
func (m *Manager) WaitForAvailable(ctx context.Context, identifier string, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)

	for {
		status, err := m.Status(ctx, identifier)
		if err != nil {
			return err
		}

		switch {
		case status.Status == "available":
			m.log.Info("DB instance is available", zap.String("identifier", identifier))
			return nil
		case terminalStates[status.Status]:
			return errors.Newf("DB instance %s entered terminal state %s",
				identifier, status.Status)
		}

		m.log.Info("DB instance not ready yet",
			zap.String("identifier", identifier),
			zap.String("status", status.Status),
		)

		if time.Now().Add(m.pollInterval).After(deadline) {
			return errors.Newf("DB instance %s did not become available within %s",
				identifier, maxWait)
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for DB instance %s", identifier)
		case <-time.After(m.pollInterval):
		}
	}
}
