package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Controller is the slice of the monitor the command queue can drive.
type Controller interface {
	StartMonitoring(interval time.Duration) error
	StopMonitoring()
	RunDiagnostics(ctx context.Context) error
}

type CommandHandler struct {
	controller Controller
	logger     *zerolog.Logger
}

func NewCommandHandler(controller Controller, logger *zerolog.Logger) *CommandHandler {
	return &CommandHandler{
		controller: controller,
		logger:     logger,
	}
}

func (h *CommandHandler) Handle(ctx context.Context, msg amqp091.Delivery) error {
	return h.HandleBody(ctx, msg.Body)
}

// HandleBody dispatches one command. Unknown commands are acknowledged and
// ignored.
func (h *CommandHandler) HandleBody(ctx context.Context, body []byte) error {
	var event EventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return err
	}

	switch event.Type {
	case CommandMonitorStart:
		var cmd StartCommand
		if len(event.Payload) > 0 {
			if err := json.Unmarshal(event.Payload, &cmd); err != nil {
				return err
			}
		}
		if cmd.IntervalMs <= 0 {
			return fmt.Errorf("command %s: interval_ms must be positive", event.Type)
		}
		return h.controller.StartMonitoring(time.Duration(cmd.IntervalMs) * time.Millisecond)

	case CommandMonitorStop:
		h.controller.StopMonitoring()
		return nil

	case CommandDiagnosticsRun:
		return h.controller.RunDiagnostics(ctx)

	default:
		h.logger.Debug().Str("type", event.Type).Msg("ignoring unknown command")
		return nil
	}
}
