package app

import (
	"context"
	"time"

	"connwatch/internals/modules/alert"
	"connwatch/internals/modules/monitor"
	"connwatch/pkg/rabbitmq"
)

// commandController lets queue commands drive the monitor and diagnostics.
type commandController struct {
	monitor *monitor.Monitor
	alerts  *alert.AlertService
}

func (cc commandController) StartMonitoring(interval time.Duration) error {
	return cc.monitor.Start(interval)
}

func (cc commandController) StopMonitoring() {
	cc.monitor.Stop()
}

func (cc commandController) RunDiagnostics(ctx context.Context) error {
	cc.alerts.RunDiagnostics(ctx)
	return nil
}

func StartConsumer(ctx context.Context, c *Container) {
	handler := rabbitmq.NewCommandHandler(commandController{monitor: c.Monitor, alerts: c.AlertSvc}, c.Logger)

	// Consume ranges over the delivery channel, so it gets its own goroutine.
	go func() {
		if err := c.Consumer.Consume(ctx, handler); err != nil {
			c.Logger.Error().
				Err(err).
				Msg("rabbitmq consumer stopped")
		}
	}()
}
