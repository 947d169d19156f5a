package systemd

import (
	"context"
	"errors"

	"github.com/coreos/go-systemd/v22/dbus"
)

const (
	UnitActiveStateActive   = "active"
	UnitActiveStateInactive = "inactive"
	UnitActiveStateFailed   = "failed"
)

var ErrUnitNotFound = errors.New("unit not found")

// Manager defines the interface for interacting with systemd.
type Manager interface {
	// GetUnitStatus retrieves the status of a systemd unit by name.
	// Returns ErrUnitNotFound if no unit with the specified name exists.
	GetUnitStatus(ctx context.Context, unitName string) (dbus.UnitStatus, error)

	// IsActive reports whether the unit is in the active state.
	IsActive(ctx context.Context, unitName string) bool

	// EnableUnit registers the unit to start on boot.
	EnableUnit(ctx context.Context, unitName string) error

	// RestartUnit (re)starts the unit and waits for the start job to finish.
	RestartUnit(ctx context.Context, unitName string) error

	// DaemonReload reloads the systemd manager configuration.
	DaemonReload(ctx context.Context) error
}
