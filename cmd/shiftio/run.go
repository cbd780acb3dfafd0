package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/shiftio/internal/logging"
	"github.com/sweeney/shiftio/internal/logic"
	"github.com/sweeney/shiftio/internal/mqtt"
	"github.com/sweeney/shiftio/internal/status"
	"github.com/sweeney/shiftio/internal/web"
)

type daemonFlags struct {
	poll        time.Duration
	debounce    time.Duration
	heartbeat   time.Duration
	broker      string
	topicPrefix string
	clientID    string
	httpAddr    string
}

var runFlags = defaultRunFlags()

func defaultRunFlags() daemonFlags {
	return daemonFlags{
		poll:        100 * time.Millisecond,
		debounce:    50 * time.Millisecond,
		heartbeat:   15 * time.Minute,
		broker:      "tcp://localhost:1883",
		topicPrefix: mqtt.DefaultPrefix,
		clientID:    "shiftio",
		httpAddr:    ":8080",
	}
}

// commandQueue is the number of output commands waiting for the next tick.
const commandQueue = 64

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the chain and bridge it to MQTT and HTTP",
	Long: `Run the daemon. Every poll interval the chain is updated: inputs are sampled,
debounced and published to <prefix>/events on change, and outputs queued by
commands since the last tick are latched.

Output commands arrive on <prefix>/set and POST /outputs as pin=state or
{"pin": ..., "state": ...}, where pin is an index or a configured name.
STARTUP, HEARTBEAT and SHUTDOWN are published to <prefix>/system.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.DurationVar(&runFlags.poll, "poll", runFlags.poll, "chain update interval")
	f.DurationVar(&runFlags.debounce, "debounce", runFlags.debounce, "input debounce duration")
	f.DurationVar(&runFlags.heartbeat, "heartbeat", runFlags.heartbeat, "heartbeat interval (0 to disable)")
	f.StringVar(&runFlags.broker, "broker", runFlags.broker, "MQTT broker address (empty to disable)")
	f.StringVar(&runFlags.topicPrefix, "topic-prefix", runFlags.topicPrefix, "MQTT topic prefix")
	f.StringVar(&runFlags.clientID, "client-id", runFlags.clientID, "MQTT client ID")
	f.StringVar(&runFlags.httpAddr, "http", runFlags.httpAddr, "HTTP status address (empty to disable)")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	if runFlags.poll <= 0 {
		return errors.New("--poll must be positive")
	}

	c, err := openChain(logging.Component(log, "gpio"))
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("close lines")
		}
	}()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:      flags.backend,
		Mode:         string(c.Mode()),
		Chips:        c.Chips(),
		PulseWidthUs: flags.pulseWidth.Microseconds(),
		PollMs:       runFlags.poll.Milliseconds(),
		DebounceMs:   runFlags.debounce.Milliseconds(),
		HeartbeatMs:  runFlags.heartbeat.Milliseconds(),
		Broker:       runFlags.broker,
		TopicPrefix:  runFlags.topicPrefix,
		HTTPAddr:     runFlags.httpAddr,
	}, c.inputs, c.outputs)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	commands := make(chan logic.Command, commandQueue)
	var submit web.SubmitFunc
	if c.outputs != nil {
		submit = func(cmd logic.Command) error {
			select {
			case commands <- cmd:
				return nil
			default:
				return web.ErrBusy
			}
		}
	}

	publisher, mqttStatus, err := newPublisher(logging.Component(log, "mqtt"), tracker, c.outputs, submit)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      mqtt.EventStartup,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.EventStartup, ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	}

	// Start HTTP status server
	if runFlags.httpAddr != "" {
		httpLog := logging.Component(log, "http")
		srv := web.New(runFlags.httpAddr, tracker, c.outputs, submit)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				httpLog.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		httpLog.WithField("addr", runFlags.httpAddr).Info("status server listening")
	}

	log.WithFields(logrus.Fields{
		"mode":      c.Mode(),
		"chips":     c.Chips(),
		"poll":      runFlags.poll,
		"debounce":  runFlags.debounce,
		"broker":    runFlags.broker,
		"heartbeat": runFlags.heartbeat,
	}).Info("started")

	ticker := time.NewTicker(runFlags.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		chain:      c,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		inputs:     c.inputs,
		outputs:    c.outputs,
		debounce:   runFlags.debounce,
		heartbeat:  runFlags.heartbeat,
		log:        logging.Component(log, "loop"),
	}, time.Now, ticker.C, commands, sigCh)
}

// newPublisher connects to the broker, or returns a publisher that drops
// everything when no broker is configured. Commands on the set topic are
// decoded against outputs and passed to submit.
func newPublisher(log *logrus.Entry, tracker *status.Tracker, outputs logic.Names, submit web.SubmitFunc) (mqtt.Publisher, mqtt.ConnectionStatus, error) {
	if runFlags.broker == "" {
		log.Info("no broker configured, MQTT disabled")
		return nopPublisher{}, nopPublisher{}, nil
	}

	opts := mqtt.Options{
		Broker:             runFlags.broker,
		ClientID:           runFlags.clientID,
		Topics:             mqtt.NewTopics(runFlags.topicPrefix),
		OnConnectionChange: tracker.SetMQTTConnected,
		Logger:             log,
	}
	if submit != nil {
		opts.OnCommand = func(payload []byte) {
			cmd, err := logic.DecodeCommand(payload, outputs)
			if err != nil {
				log.WithError(err).WithField("payload", string(payload)).Warn("rejected command")
				return
			}
			if err := submit(cmd); err != nil {
				log.WithError(err).Warn("dropped command")
			}
		}
	}

	p, err := mqtt.NewRealPublisher(opts)
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

// chainIO is what the loop needs from a chain.
type chainIO interface {
	Update() error
	Inputs() []bool
	Outputs() []bool
	Set(index int, level bool) error
}

type loop struct {
	chain      chainIO
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	inputs     logic.Names
	outputs    logic.Names
	debounce   time.Duration
	heartbeat  time.Duration
	log        *logrus.Entry
}

func runLoop(l loop, now func() time.Time, tick <-chan time.Time, commands <-chan logic.Command, sig <-chan os.Signal) error {
	startTime := now()
	detector := logic.NewDetector(l.debounce, l.inputs, startTime)

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.log.WithField("signal", signalName).Info("shutting down")
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     mqtt.EventShutdown,
				Reason:    signalName,
				Retained:  true,
			}
			if l.tracker != nil {
				if l.mqttStatus != nil {
					l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
				}
				snap := l.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, mqtt.EventShutdown, signalName)
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				l.log.WithError(err).Warn("failed to publish shutdown event")
			}
			return nil

		case c := <-commands:
			entry := l.log.WithFields(logrus.Fields{"pin": c.Pin, "name": l.outputs.Name(c.Pin), "state": c.State})
			if err := l.chain.Set(c.Pin, c.State.Level()); err != nil {
				entry.WithError(err).Warn("command rejected")
				continue
			}
			entry.Info("output queued")

		case <-tick:
			t := now()
			err := l.chain.Update()
			if l.tracker != nil {
				l.tracker.RecordTransfer(err, t)
			}
			if err != nil {
				l.log.WithError(err).Warn("chain update failed")
				continue
			}

			events := detector.Process(logic.Input{
				Levels: l.chain.Inputs(),
				Time:   t,
			})
			for _, event := range events {
				l.log.WithFields(logrus.Fields{"pin": event.Pin, "name": event.Name, "state": event.State}).Info("input changed")
				if err := l.publisher.Publish(event); err != nil {
					// Don't crash on publish failure
					l.log.WithError(err).Warn("publish error")
				}
			}

			if l.tracker != nil {
				l.tracker.Update(detector.CurrentState(), l.chain.Outputs(), detector.IsBaselined(), detector.Counts())
				if l.mqttStatus != nil {
					l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
				}
			}

			if !detector.IsBaselined() {
				// Still waiting for baseline
				continue
			}

			if hb := detector.CheckHeartbeat(t, l.heartbeat); hb != nil {
				l.log.WithField("uptime", hb.Uptime).Info("heartbeat")
				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     mqtt.EventHeartbeat,
				}
				if l.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						l.tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), mqtt.EventHeartbeat, "")
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					l.log.WithError(err).Warn("heartbeat publish error")
				}
			}
		}
	}
}

// nopPublisher stands in for MQTT when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(logic.Event) error             { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (nopPublisher) Close() error                          { return nil }
func (nopPublisher) IsConnected() bool                     { return false }
