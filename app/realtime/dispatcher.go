package realtime

import (
	"errors"
	"log/slog"

	"github.com/dmitrymomot/pointersync/core/broadcast"
	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/registry"
)

// dispatcher feeds transport notifications into the registry and router.
type dispatcher struct {
	registry *registry.Registry
	router   *broadcast.Router
	logger   *slog.Logger
}

func (d *dispatcher) OnConnect(ch domain.Channel) error {
	err := d.registry.Connect(ch)
	if errors.Is(err, domain.ErrDuplicateConnection) {
		d.logger.Warn("transport reported a duplicate connection", logger.ConnectionID(ch.ID()))
	}
	return err
}

func (d *dispatcher) OnMessage(id domain.ConnectionID, msg domain.Message) {
	if msg.Type != domain.MessagePointer {
		return
	}

	ev := domain.NewPointerEvent(id, domain.Point{X: msg.X, Y: msg.Y}, msg.Sequence)
	if _, err := d.router.Publish(ev); err != nil {
		d.logger.Debug("pointer event rejected",
			logger.ConnectionID(id),
			logger.Sequence(msg.Sequence),
			logger.Error(err),
		)
	}
}

func (d *dispatcher) OnDisconnect(ch domain.Channel) bool {
	if err := d.registry.Detach(ch); err != nil {
		// Already replaced by a newer channel with the same id.
		return false
	}
	d.router.RemovePointer(ch.ID())
	return true
}
