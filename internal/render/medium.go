package render

import (
	"mirodash/internal/telemetry"
)

// Medium encodes the camera and attention frames. Overlays are only produced
// when a toggle is on and the overlay frame is present.
func (p *Pipeline) Medium(src telemetry.Source, t Toggles) MediumPayload {
	snap := src.Snapshot()
	placeholderCam := p.cfg.AssetPrefix + PlaceholderCamera

	var out MediumPayload
	out.Small.CameraLeft, out.Large.CameraLeft = p.mainFrame(snap, telemetry.CameraLeft, placeholderCam)
	out.Small.CameraRight, out.Large.CameraRight = p.mainFrame(snap, telemetry.CameraRight, placeholderCam)

	if t.Any() {
		out.Small.PriorityLeft = p.frame(snap, telemetry.PriorityLeft, 1, "")
		out.Small.PriorityRight = p.frame(snap, telemetry.PriorityRight, 1, "")
		out.Large.PriorityLeft = out.Small.PriorityLeft
		out.Large.PriorityRight = out.Small.PriorityRight
	}

	out.WideAudio = p.frame(snap, telemetry.WideAudio, 1, p.cfg.AssetPrefix+PlaceholderWide)
	return out
}

func (p *Pipeline) mainFrame(snap telemetry.Snapshot, id telemetry.FrameID, placeholder string) (small, large string) {
	small = p.frame(snap, id, p.cfg.CamScale, placeholder)
	if p.cfg.CamScaleLarge == p.cfg.CamScale {
		return small, small
	}
	return small, p.frame(snap, id, p.cfg.CamScaleLarge, placeholder)
}

func (p *Pipeline) frame(snap telemetry.Snapshot, id telemetry.FrameID, scale int, placeholder string) string {
	img, err := snap.Frame(id)
	if err != nil {
		return placeholder
	}
	uri, err := EncodeFrame(img, scale)
	if err != nil {
		p.log.Warn("frame encoding failed", "frame", id, "error", err)
		return placeholder
	}
	return uri
}
