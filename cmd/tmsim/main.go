// Command tmsim launches a fixed-size committee of Tendermint-family
// validators against an in-process gossip fabric and runs them for a
// bounded duration, logging every sent message, lock and decision. It is
// grounded on the teacher's eth/backend.go wiring (build the pieces,
// register them with each other, run until told to stop) and on the
// reference prototype's sim.py demo driver.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/tmsim/consensus/config"
	"github.com/tmsim/consensus/consensus/tendermint/core"
	"github.com/tmsim/consensus/gossip"
	"github.com/tmsim/consensus/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML run configuration (defaults to the built-in four-validator demo)",
	}
	durationFlag = cli.DurationFlag{
		Name:  "duration",
		Usage: "how long to run before shutting the committee down",
		Value: 0,
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "emit debug-level events, including timeout firings",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "tmsim"
	app.Usage = "run a simulated Tendermint-family committee"
	app.Flags = []cli.Flag{configFlag, durationFlag, verboseFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tmsim:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	handler := log.StreamHandler(os.Stderr)
	if !ctx.Bool(verboseFlag.Name) {
		stream := handler
		handler = log.FuncHandler(func(r *log.Record) error {
			if r.Lvl > log.LvlInfo {
				return nil
			}
			return stream.Log(r)
		})
	}
	log.SetHandler(handler)

	cfg := config.Defaults
	if p := ctx.String(configFlag.Name); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if d := ctx.Duration(durationFlag.Name); d > 0 {
		cfg.RunDuration = d
	}

	committee, err := cfg.Committee()
	if err != nil {
		return err
	}

	fabric := gossip.NewFabricWithDelay(cfg.GossipMinDelay, cfg.GossipMaxDelay)
	defer fabric.Close()

	validators := make([]*core.Validator, 0, len(committee.Members()))
	for _, id := range committee.Members() {
		if err := fabric.Register(id); err != nil {
			return err
		}
		v := core.NewValidator(id, committee, fabric, core.NewLogEventSink(), cfg.Timeouts())
		validators = append(validators, v)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), cfg.RunDuration)
	defer cancel()

	done := make(chan struct{}, len(validators))
	for _, v := range validators {
		v := v
		go func() {
			if err := v.Run(runCtx); err != nil {
				log.Error("validator exited with error", "pid", v.ID, "err", err)
			}
			done <- struct{}{}
		}()
	}

	log.Info("committee started", "validators", len(validators), "quorum", committee.Q(), "duration", cfg.RunDuration)

	<-runCtx.Done()
	deadline := time.After(2 * time.Second)
	for i := 0; i < len(validators); i++ {
		select {
		case <-done:
		case <-deadline:
			log.Warn("timed out waiting for validators to stop")
			return nil
		}
	}

	log.Info("committee stopped")
	return nil
}
