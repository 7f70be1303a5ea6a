package notify

import (
	"context"
	"encoding/json"

	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/common/rmq"
	ws "fleet-dispatch/internal/common/websocket"
	fleetmodel "fleet-dispatch/internal/fleet/model"
	shiftmodel "fleet-dispatch/internal/shift/model"
)

// Dispatcher fans driver notifications out over RabbitMQ and the
// websocket hub. Every method is fire-and-forget: failures are logged
// here and never surface to the triggering operation.
type Dispatcher struct {
	pub *Publisher // nil when RabbitMQ is unavailable
	hub *ws.Hub
}

func NewDispatcher(pub *Publisher, hub *ws.Hub) *Dispatcher {
	return &Dispatcher{pub: pub, hub: hub}
}

func (d *Dispatcher) ShiftAssigned(ctx context.Context, shift *shiftmodel.Shift, driver *fleetmodel.Driver) {
	msg := rmq.ShiftAssignedMessage{
		ShiftID:     shift.ID,
		AgencyName:  shift.AgencyName,
		PlateNumber: shift.PlateNumber,
		DriverName:  shift.DriverName,
		Origin:      shift.Origin,
		Destination: shift.Destination,
		Date:        shift.Date,
		StartTime:   shift.StartTime,
	}
	if driver != nil {
		msg.DriverPhone = driver.Phone
	}

	if d.pub != nil {
		if err := d.pub.PublishShiftAssigned(ctx, msg); err != nil {
			logger.Warn("notify_assigned_failed", "Shift assignment notification not published", "", shift.ID, err.Error())
		}
	}
	d.sendToDriver(shift.ID, shift.DriverName, msg)
}

func (d *Dispatcher) ShiftUpdated(ctx context.Context, shift *shiftmodel.Shift, changedFields []string) {
	msg := rmq.ShiftUpdatedMessage{
		ShiftID:       shift.ID,
		AgencyName:    shift.AgencyName,
		PlateNumber:   shift.PlateNumber,
		DriverName:    shift.DriverName,
		Origin:        shift.Origin,
		Destination:   shift.Destination,
		Date:          shift.Date,
		StartTime:     shift.StartTime,
		ChangedFields: changedFields,
	}

	if d.pub != nil {
		if err := d.pub.PublishShiftUpdated(ctx, msg); err != nil {
			logger.Warn("notify_updated_failed", "Shift update notification not published", "", shift.ID, err.Error())
		}
	}
	d.sendToDriver(shift.ID, shift.DriverName, msg)
}

func (d *Dispatcher) sendToDriver(shiftID, driverName string, msg any) {
	if d.hub == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("notify_ws_marshal_failed", "Websocket notification not sent", "", shiftID, err.Error())
		return
	}
	if !d.hub.SendToClient("driver_"+driverName, data) {
		logger.Debug("notify_ws_offline", "Driver "+driverName+" not connected", "", shiftID)
	}
}
