package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"hsc-firmware/pkg/api"
	"hsc-firmware/pkg/config"
	"hsc-firmware/pkg/core"
	"hsc-firmware/pkg/globals"
	"hsc-firmware/pkg/hardware"
	"hsc-firmware/pkg/logger"
	"hsc-firmware/pkg/mqtt"
	"hsc-firmware/pkg/timesync"
	"hsc-firmware/pkg/wifi"
)

func main() {
	// Initialize logger first to capture all logs
	logger.Init()

	log.Println("--------------------------------")
	log.Printf("Starting HSC firmware, FW Rev: %s", globals.FirmwareVersion)
	log.Println("--------------------------------")

	store := config.NewStore(globals.ConfigPath)
	if err := store.Initialize(); err != nil {
		// Non-fatal: the store serves defaults and the device stays reachable
		log.Printf("Failed to initialize config store: %v", err)
	}

	board, err := hardware.Init()
	if err != nil {
		// A nil board is inert; run without button and LED
		log.Printf("GPIO unavailable: %v", err)
	}

	station := wifi.NewStation()

	c := core.New(core.Deps{
		Store: store,
		Wifi:  station,
		AP:    wifi.NewAP(),
		NewBroker: func(server string, port int, clientID, user, password string) core.Broker {
			return mqtt.NewClient(server, port, clientID, user, password)
		},
		Hardware:      board,
		Reboot:        rebootSystem,
		StartTimeSync: timesync.Start,
		TimeSynced:    timesync.Synced,
	})

	log.Printf("Board ID: %d", c.GetConfiguration().BoardID)

	server, err := api.New(c, station)
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}
	server.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := c.Run(ctx); err != nil {
		log.Fatalf("Control loop failed: %v", err)
	}
}

func rebootSystem() {
	if err := exec.Command("sudo", "systemctl", "reboot").Run(); err != nil {
		log.Printf("Failed to reboot: %v", err)
	}
}
