// Package ingest implements the live sensor-ingestion daemon: a UDP
// listener that decodes the wireproto binary packets, drives the core
// filter in the tick ordering its concurrency model mandates, and
// publishes the resulting status snapshot to a flight log, a websocket
// telemetry hub, and a broadcast fan-out sender.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"

	"flightekf/broadcast"
	"flightekf/flightlog"
	"flightekf/nav"
	"flightekf/telemetry"
	"flightekf/wireproto"
)

// Config configures one Daemon instance.
type Config struct {
	Port int

	Params                 nav.Params
	LatRef, LonRef, HgtRef float64

	FlightLog *flightlog.Writer // optional
	Hub       *telemetry.Hub    // optional
	Sender    *broadcast.Sender // optional
}

// Daemon owns exactly one Filter instance and processes inbound packets
// one at a time on its receive goroutine, so it never calls the filter
// re-entrantly.
type Daemon struct {
	cfg    Config
	conn   *net.UDPConn
	filter *nav.Filter

	lastMag nav.Vec3
	haveMag bool
}

// NewDaemon constructs a Daemon with a freshly constructed, uninitialized
// filter.
func NewDaemon(cfg Config) *Daemon {
	return &Daemon{
		cfg:    cfg,
		filter: nav.NewFilter(cfg.Params),
	}
}

// Filter returns the daemon's filter instance, for read-only inspection
// by a caller (e.g. a status-reporting HTTP handler) between packets.
func (d *Daemon) Filter() *nav.Filter { return d.filter }

// Start binds the UDP socket and runs the receive loop until ctx is
// canceled.
func (d *Daemon) Start(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: d.cfg.Port})
	if err != nil {
		return fmt.Errorf("ingest: bind udp :%d: %w", d.cfg.Port, err)
	}
	conn.SetReadBuffer(256 * 1024)
	d.conn = conn

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("ingest: udp read error: %v", err)
			continue
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		d.handlePacket(pkt)
	}
}

// Stop closes the UDP socket, interrupting the receive loop.
func (d *Daemon) Stop() {
	if d.conn != nil {
		d.conn.Close()
	}
}

func (d *Daemon) handlePacket(data []byte) {
	h, payload, err := wireproto.Decode(data)
	if err != nil {
		log.Printf("ingest: dropping malformed packet: %v", err)
		return
	}

	switch h.Kind {
	case wireproto.KindIMU:
		s, err := wireproto.DecodeIMU(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.handleIMU(h.TimestampMs, s)
	case wireproto.KindGNSS:
		s, err := wireproto.DecodeGNSS(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.handleGNSS(h.TimestampMs, s)
	case wireproto.KindBaro:
		hgt, err := wireproto.DecodeBaro(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.filter.FuseHeight(int64(h.TimestampMs), hgt)
	case wireproto.KindMag:
		x, y, z, err := wireproto.DecodeMag(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.lastMag = nav.Vec3{X: x, Y: y, Z: z}
		d.haveMag = true
		if d.filter.Initialized() {
			d.filter.FuseMagnetometer(int64(h.TimestampMs), d.lastMag)
		}
	case wireproto.KindAirspeed:
		eas, err := wireproto.DecodeAirspeed(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.filter.FuseAirspeed(int64(h.TimestampMs), eas)
	case wireproto.KindRange:
		r, err := wireproto.DecodeRange(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.filter.FuseRangeFinder(int64(h.TimestampMs), r)
	case wireproto.KindOpticalFlow:
		lx, ly, err := wireproto.DecodeOpticalFlow(payload)
		if err != nil {
			log.Printf("ingest: %v", err)
			return
		}
		d.filter.FuseOpticalFlow(int64(h.TimestampMs), lx, ly)
	default:
		log.Printf("ingest: unknown packet kind 0x%02x", h.Kind)
	}

	if d.filter.Initialized() {
		d.checkTimeouts()
		d.publish(int64(h.TimestampMs))
	}
}

func (d *Daemon) handleIMU(tsMs uint32, s wireproto.IMUSample) {
	if !d.filter.Initialized() {
		mag := d.lastMag
		if !d.haveMag {
			mag = nav.Vec3{X: 0.2, Y: 0, Z: 0.45}
		}
		d.filter.InitializeDynamic(nav.Vec3{X: s.DVelX, Y: s.DVelY, Z: s.DVelZ}, mag, nav.Vec3{},
			d.cfg.LatRef, d.cfg.LonRef, d.cfg.HgtRef)
	}

	dAng := nav.Vec3{X: s.DAngX, Y: s.DAngY, Z: s.DAngZ}
	dVel := nav.Vec3{X: s.DVelX, Y: s.DVelY, Z: s.DVelZ}
	d.filter.UpdateStrapdown(s.DtSec, dAng, dVel)
	d.filter.StoreState(int64(tsMs))
	if d.filter.CovarianceTriggered() {
		d.filter.PredictCovariance()
	}
}

func (d *Daemon) handleGNSS(tsMs uint32, s wireproto.GNSSSample) {
	if !d.filter.Initialized() {
		return
	}
	velNED := nav.Vec3{X: s.VelN, Y: s.VelE, Z: s.VelD}
	d.filter.FuseVelPosNED(int64(tsMs), velNED, s.HavePos, s.PosN, s.PosE, s.AccNavMag, s.FixType != 0)
}

// checkTimeouts is the daemon-side half of the health contract: the filter
// only flags a channel timeout, it never autonomously re-centers itself
// on stale data, so the host decides what a reset should snap to.
func (d *Daemon) checkTimeouts() {
	status := d.filter.GetFilterState()
	if status.HgtTimeout {
		d.filter.ResetHeight(-status.States[nav.IPD], 5.0)
	}
	if n := d.filter.CheckAndBound(); n > 0 {
		log.Printf("ingest: health monitor found %d invalid entries, filter reset", n)
	}
}

type statusMessage struct {
	TimestampMs int64      `json:"ts_ms"`
	Roll        float64    `json:"roll"`
	Pitch       float64    `json:"pitch"`
	Yaw         float64    `json:"yaw"`
	VelN        float64    `json:"vel_n"`
	VelE        float64    `json:"vel_e"`
	VelD        float64    `json:"vel_d"`
	PosN        float64    `json:"pos_n"`
	PosE        float64    `json:"pos_e"`
	PosD        float64    `json:"pos_d"`
	VelHealthy  bool       `json:"vel_healthy"`
	PosHealthy  bool       `json:"pos_healthy"`
	HgtHealthy  bool       `json:"hgt_healthy"`
	MagHealthy  bool       `json:"mag_healthy"`
}

func (d *Daemon) publish(tsMs int64) {
	status := d.filter.GetFilterState()
	q := nav.Quat{W: status.States[nav.IQ0], X: status.States[nav.IQ1], Y: status.States[nav.IQ2], Z: status.States[nav.IQ3]}
	roll, pitch, yaw := nav.QuatToEul(q)

	if d.cfg.FlightLog != nil {
		flags := flightlog.FlagsFromStatus(status)
		if err := d.cfg.FlightLog.WriteTick(tsMs, status.States, status.PDiag, flags); err != nil {
			log.Printf("ingest: flight log write failed: %v", err)
		}
	}

	healthMask := uint32(0)
	if !status.VelHealthy {
		healthMask |= broadcast.FlagWarning
	}
	line := broadcast.FormatStatusLine(tsMs, roll, pitch, yaw,
		status.States[nav.IVN], status.States[nav.IVE], status.States[nav.IVD],
		status.States[nav.IPN], status.States[nav.IPE], status.States[nav.IPD], healthMask)
	if d.cfg.Sender != nil {
		d.cfg.Sender.Send(line, broadcast.FlagAttitude|broadcast.FlagPosition|broadcast.FlagVelocity)
	}

	if d.cfg.Hub != nil {
		msg := statusMessage{
			TimestampMs: tsMs,
			Roll:        roll, Pitch: pitch, Yaw: yaw,
			VelN: status.States[nav.IVN], VelE: status.States[nav.IVE], VelD: status.States[nav.IVD],
			PosN: status.States[nav.IPN], PosE: status.States[nav.IPE], PosD: status.States[nav.IPD],
			VelHealthy: status.VelHealthy, PosHealthy: status.PosHealthy,
			HgtHealthy: status.HgtHealthy, MagHealthy: status.MagHealthy,
		}
		if b, err := json.Marshal(msg); err == nil {
			d.cfg.Hub.Broadcast(b)
		}
	}
}
