package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

type dbusImpl struct{}

// New creates a new instance of the systemd Manager.
func New() Manager {
	return &dbusImpl{}
}

var _ Manager = (*dbusImpl)(nil)

func (d *dbusImpl) DaemonReload(ctx context.Context) error {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.ReloadContext(ctx)
}

func (d *dbusImpl) GetUnitStatus(ctx context.Context, unitName string) (dbus.UnitStatus, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return dbus.UnitStatus{}, err
	}
	defer conn.Close()

	units, err := conn.ListUnitsByNamesContext(ctx, []string{unitName})
	if err != nil {
		return dbus.UnitStatus{}, err
	}

	for _, unit := range units {
		if unit.LoadState == "not-found" {
			// systemd returns "not-found" for units that don't exist, instead of an error.
			continue
		}

		if unit.Name == unitName {
			return unit, nil
		}
	}

	return dbus.UnitStatus{}, ErrUnitNotFound
}

func (d *dbusImpl) IsActive(ctx context.Context, unitName string) bool {
	status, err := d.GetUnitStatus(ctx, unitName)
	if err != nil {
		return false
	}
	return status.ActiveState == UnitActiveStateActive
}

func (d *dbusImpl) EnableUnit(ctx context.Context, unitName string) error {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, _, err = conn.EnableUnitFilesContext(ctx, []string{unitName}, false, true)
	return err
}

func (d *dbusImpl) RestartUnit(ctx context.Context, unitName string) error {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan string, 1)
	if _, err := conn.RestartUnitContext(ctx, unitName, "replace", done); err != nil {
		return err
	}

	select {
	case result := <-done:
		if result != "done" {
			return fmt.Errorf("restart job for %s finished with result %q", unitName, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
