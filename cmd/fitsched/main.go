package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"fitq/internal/dispatch"
	"fitq/internal/job"
	"fitq/internal/sched"
)

var (
	app = kingpin.New("fitsched", "Capacity-aware best-fit task dispatcher")

	cfgFile = app.Flag("config", "YAML config file").
		Short('c').
		Default("config.yml").
		Envar("FITQ_CONFIG").
		String()

	debug = app.Flag("debug", "enable debug logging").
		Short('d').
		Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Read the configuration
	cfg, err := sched.Load(*cfgFile)
	if err != nil {
		log.WithError(err).Fatal("Cannot load config")
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).WithField("log_level", cfg.LogLevel).Fatal("Invalid log level")
	}
	if *debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	log.WithFields(log.Fields{
		"backend":  cfg.Backend,
		"tick_ms":  cfg.TickMS,
		"capacity": cfg.Capacity.String(),
		"tasks":    len(cfg.Tasks),
	}).Info("Loaded config")

	q, err := sched.NewFromConfig(cfg)
	if err != nil {
		log.WithError(err).Fatal("Cannot create task queue")
	}

	plan := job.Plan{}
	for _, tc := range cfg.Tasks {
		plan[sched.TaskID(tc.ID)] = time.Duration(tc.WorkMS) * time.Millisecond
	}

	d := dispatch.New(q, cfg.Capacity, plan.Runner(),
		dispatch.WithTickInterval(time.Duration(cfg.TickMS)*time.Millisecond),
		dispatch.WithStopWhenDrained(),
	)
	if cfg.CSVPath != "" {
		if err := d.EnableCSVLogging(cfg.CSVPath); err != nil {
			log.WithError(err).Fatal("Cannot enable CSV logging")
		}
	}

	for _, tc := range cfg.Tasks {
		if err := d.Submit(tc.Task()); err != nil {
			log.WithError(err).WithField("task_id", tc.ID).Warn("Task not submitted")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		log.WithError(err).Fatal("Dispatcher failed")
	}

	log.WithFields(log.Fields{
		"completed": len(d.Completed()),
		"failed":    len(d.Failed()),
		"resident":  q.Len(),
	}).Info("Dispatcher stopped")
}
