package mqtt

import "github.com/sweeney/irrigator/internal/logic"

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(logic.Event) error { return nil }

func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

func (NopPublisher) IsConnected() bool { return false }
