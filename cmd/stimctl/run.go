package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"

	"github.com/chuhuiyu/mxstim/experiment"
	"github.com/chuhuiyu/mxstim/maxwell"
)

// newRig builds the rig described by the config.  With Mock set, an
// in-memory rig is returned and no connection is made.
func newRig(cfg experiment.Config) (maxwell.Rig, error) {
	if cfg.Mock {
		log.Println("using mock rig, no hardware will be touched")
		return maxwell.NewMock(), nil
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("config: addr is empty and mock is false")
	}
	client := maxwell.NewClient(cfg.Addr, cfg.Serial)
	if err := client.Open(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// spinWait returns a WaitFunc that draws a spinner while sleeping, so
// the long download and offset settles do not look like a hang.
func spinWait() experiment.WaitFunc {
	return func(d time.Duration, reason string) {
		spinner, err := yacspin.New(yacspin.Config{
			Frequency:       100 * time.Millisecond,
			CharSet:         yacspin.CharSets[59],
			Suffix:          " " + reason,
			SuffixAutoColon: true,
			Message:         d.String(),
			StopCharacter:   "✓",
			StopColors:      []string{"fgGreen"},
		})
		if err != nil {
			time.Sleep(d)
			return
		}
		spinner.Start()
		time.Sleep(d)
		spinner.Stop()
	}
}

// newSession loads the config, connects the rig, and runs Setup.
func newSession() (*experiment.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rig, err := newRig(cfg)
	if err != nil {
		return nil, err
	}
	sess := experiment.New(rig, cfg)
	sess.Wait = spinWait()
	if err := sess.Setup(); err != nil {
		return nil, err
	}
	return sess, nil
}

func evokedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evoked",
		Short: "deliver evoked-response pulse trains",
		Long: `evoked compiles the configured pulse train, with any amplitude or
phase sweeps, and delivers it to every allocated stimulation unit.
With sequential: true in the config, units are stimulated one at a
time instead of all at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.PowerOffAll()
			return sess.RunEvoked()
		},
	}
}

func recurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recurrent",
		Short: "deliver trains with an increasing pulse count",
		Long: `recurrent delivers a series of pulse trains where train k carries
k+1 pulses, separated by the configured inter-train interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.PowerOffAll()
			return sess.RunRecurrent()
		},
	}
}

func spatialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spatial",
		Short: "deliver per-pattern trains across unit subsets",
		Long: `spatial powers subsets of the allocated units on and off around
single pulses, stepping through the configured patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.PowerOffAll()
			return sess.RunSpatial()
		},
	}
}
