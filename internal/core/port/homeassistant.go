package port

import (
	"context"

	"shellyboard/internal/core/domain"
)

// RegistryService is the contract with the host home-automation platform.
// Registry reads return immutable snapshots; command calls are
// fire-and-forget from the engine's perspective (no retries here).
type RegistryService interface {
	Connect(ctx context.Context) error
	Close() error

	ListDevices(ctx context.Context) ([]domain.DeviceRecord, error)
	ListEntities(ctx context.Context) ([]domain.EntityRecord, error)
	States(ctx context.Context) (map[string]domain.StateSnapshot, error)

	InstallUpdate(ctx context.Context, entityId string) error
	PressButton(ctx context.Context, entityId string) error
}
