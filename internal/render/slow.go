package render

import (
	"mirodash/internal/lookup"
	"mirodash/internal/telemetry"
)

// Slow picks the clock face for the robot's hour of day, hour 0 when unknown.
func (p *Pipeline) Slow(src telemetry.Source) SlowPayload {
	hour, err := src.Snapshot().TimeOfDay()
	if err != nil {
		hour = 0
	}
	return SlowPayload{Hour: hour, Clock: lookup.ClockFace(p.cfg.AssetPrefix, hour)}
}
