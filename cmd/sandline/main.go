// Command sandline streams a theta-rho pattern file to a polar drawing
// table over a serial connection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sandline/sandline/internal/config"
	"github.com/sandline/sandline/internal/driver"
	"github.com/sandline/sandline/internal/pattern"
	"github.com/sandline/sandline/internal/runner"
	"github.com/sandline/sandline/internal/serialport"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	portPath   = flag.String("port", "", "Serial port device (overrides config)")
	devMode    = flag.Bool("dev", false, "Run against a simulated controller instead of hardware")
	sendHome   = flag.Bool("home", false, "Send HOME before running the pattern")
	listPorts  = flag.Bool("list-ports", false, "List available serial ports and exit")
)

func main() {
	flag.Parse()

	if *listPorts {
		ports, err := serialport.List()
		if err != nil {
			log.Fatalf("failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *portPath != "" {
		cfg.Port = *portPath
	}

	file := flag.Arg(0)
	if file == "" && !*sendHome {
		log.Fatal("usage: sandline [flags] pattern.thr")
	}

	var port serialport.Port
	if *devMode {
		port = serialport.NewMockController()
		log.Print("dev mode: using simulated controller")
	} else {
		if cfg.Port == "" {
			log.Fatal("no serial port configured; use -port, a config file, or -list-ports")
		}
		var err error
		port, err = serialport.Open(cfg.Port, cfg.Serial)
		if err != nil {
			log.Fatalf("failed to open serial port %s: %v", cfg.Port, err)
		}
		log.Printf("connected to %s at %d baud", cfg.Port, cfg.Serial.BaudRate)
	}

	d := driver.New(port, driver.Options{AwaitTimeout: cfg.AwaitTimeout()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the monitor routine owns IO on the serial port's read side
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("serial monitor stopped: %v", err)
		}
	}()

	run := runner.New(d, runner.Config{
		StepSize:  cfg.Run.StepSize,
		BatchSize: cfg.Run.BatchSize,
	})

	exitCode := 0
	if *sendHome {
		log.Print("homing the table")
		if err := run.SendCommand(ctx, "HOME"); err != nil {
			log.Fatalf("failed to home: %v", err)
		}
	}

	if file != "" {
		coords, err := pattern.ParseFile(file)
		if err != nil {
			log.Fatalf("failed to read pattern: %v", err)
		}
		log.Printf("pattern %s: %d coordinates, path length %.3f", file, len(coords), pattern.PathLength(coords))

		id, err := run.Start(ctx, file)
		if err != nil {
			log.Fatalf("failed to start run: %v", err)
		}
		log.Printf("run %s started", id)

		select {
		case <-run.Done():
		case <-ctx.Done():
			log.Print("interrupt received, stopping after the current batch")
			run.Stop()
			<-run.Done()
		}

		st := run.Status()
		switch st.State {
		case runner.StateCompleted:
			log.Printf("run %s completed: %d/%d batches", st.RunID, st.BatchesSent, st.Batches)
		case runner.StateCancelled:
			log.Printf("run %s cancelled after %d/%d batches", st.RunID, st.BatchesSent, st.Batches)
		default:
			log.Printf("run %s %s: %v", st.RunID, st.State, st.Err)
			exitCode = 1
		}
	}

	stop()
	d.Close()
	wg.Wait()
	os.Exit(exitCode)
}
