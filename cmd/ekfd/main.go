// Command ekfd runs the live navigation daemon: it listens for binary
// wire-protocol sensor packets on UDP, drives the 24-state filter, and
// publishes each resulting tick to a flight log, a websocket telemetry
// hub, and an optional UDP/TCP status fan-out.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flightekf/broadcast"
	"flightekf/config"
	"flightekf/flightlog"
	"flightekf/ingest"
	"flightekf/nav"
	"flightekf/telemetry"
)

func main() {
	port := flag.Int("port", 45500, "UDP port to listen on for sensor packets")
	httpPort := flag.Int("http", 0, "HTTP/WebSocket telemetry port (e.g. 8080). 0 to disable.")
	paramsXML := flag.String("params", "", "Path to params.xml overriding filter defaults. Empty for built-in defaults.")
	latRef := flag.Float64("lat-ref", 0.0, "Reference latitude in radians")
	lonRef := flag.Float64("lon-ref", 0.0, "Reference longitude in radians")
	hgtRef := flag.Float64("hgt-ref", 0.0, "Reference height in meters")
	logPath := flag.String("flight-log", "", "Path to write a binary flight log (optional)")
	broadcastUDP := flag.String("broadcast-udp", "", "host:port to fan out status lines via UDP (optional)")
	broadcastTCP := flag.String("broadcast-tcp", "", "host:port to fan out status lines via TCP (optional)")
	flag.Parse()

	params := nav.DefaultParams()
	if *paramsXML != "" {
		p, err := config.LoadParametersXML(*paramsXML)
		if err != nil {
			log.Fatalf("failed to load params from %s: %v", *paramsXML, err)
		}
		params = p
	}

	cfg := ingest.Config{
		Port:   *port,
		Params: params,
		LatRef: *latRef,
		LonRef: *lonRef,
		HgtRef: *hgtRef,
	}

	if *logPath != "" {
		w, err := flightlog.NewWriter(*logPath)
		if err != nil {
			log.Fatalf("failed to open flight log: %v", err)
		}
		defer w.Close()
		cfg.FlightLog = w
	}

	var telemetrySrv *telemetry.Server
	if *httpPort > 0 {
		telemetrySrv = telemetry.NewServer()
		cfg.Hub = telemetrySrv.Hub
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := telemetrySrv.Start(ctx, *httpPort); err != nil {
				log.Printf("telemetry server stopped: %v", err)
			}
		}()
		log.Printf("telemetry websocket listening on :%d/ws", *httpPort)
	}

	if *broadcastUDP != "" || *broadcastTCP != "" {
		sender := broadcast.NewSender()
		if *broadcastUDP != "" {
			if err := sender.AddUDPTarget(*broadcastUDP, broadcast.FlagAttitude|broadcast.FlagPosition|broadcast.FlagVelocity); err != nil {
				log.Fatalf("failed to add udp broadcast target: %v", err)
			}
		}
		if *broadcastTCP != "" {
			sender.AddTCPTarget(*broadcastTCP, broadcast.FlagAttitude|broadcast.FlagPosition|broadcast.FlagVelocity)
		}
		if err := sender.Start(); err != nil {
			log.Fatalf("failed to start broadcast sender: %v", err)
		}
		defer sender.Stop()
		cfg.Sender = sender
	}

	daemon := ingest.NewDaemon(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := daemon.Start(ctx); err != nil {
			log.Printf("daemon stopped: %v", err)
		}
	}()
	log.Printf("ekfd listening for sensor packets on udp :%d", *port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down...")
	cancel()
	daemon.Stop()
}
