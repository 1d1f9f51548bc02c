package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/brightpath/internal/config"
	"github.com/abhisek/brightpath/internal/course"
	"github.com/abhisek/brightpath/internal/events"
	"github.com/abhisek/brightpath/internal/llm"
	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/quiz"
	"github.com/abhisek/brightpath/internal/rewards"
	"github.com/abhisek/brightpath/internal/store"
	"github.com/abhisek/brightpath/internal/store/mongostore"
)

// deps holds everything a command may need. Fields are opened lazily by
// the helpers below and released by close.
type deps struct {
	store   *store.Store
	records store.RecordRepo
	events  store.EventRepo
	closers []func() error
}

// openDeps opens the event store and the configured record backend.
func openDeps(ctx context.Context) (*deps, error) {
	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("prepare database directory: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{store: st, events: st.EventRepo(), records: st.RecordRepo()}
	d.closers = append(d.closers, st.Close)

	if cfg.Store.Backend == config.BackendMongo {
		client, repo, err := mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			d.close()
			return nil, err
		}
		d.records = repo
		d.closers = append(d.closers, func() error { return client.Disconnect(context.Background()) })
		logger.Debug("using mongo record store", "database", cfg.Store.MongoDatabase)
	}
	return d, nil
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Warn("close", "error", err)
		}
	}
}

// publisher returns the AMQP publisher when a broker is configured and a
// log publisher otherwise.
func (d *deps) publisher() (events.Publisher, error) {
	if cfg.Events.AMQPURL == "" {
		return events.NewLogPublisher(logger), nil
	}
	p, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, p.Close)
	return p, nil
}

func (d *deps) quizService(pub events.Publisher) *quiz.Service {
	return quiz.NewService(performance.New(cfg.Engine), d.records,
		quiz.WithAdaptationLog(d.events),
		quiz.WithRewards(rewards.NewService(d.events, logger)),
		quiz.WithPublisher(pub),
		quiz.WithLogger(logger),
	)
}

var errLLMDisabled = errors.New("no LLM provider configured; set BRIGHTPATH_LLM_PROVIDER or a provider API key")

// planner builds the course planner, or returns errLLMDisabled.
func (d *deps) planner(ctx context.Context) (*course.Planner, error) {
	if !cfg.LLM.Enabled() {
		return nil, errLLMDisabled
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, d.events, logger)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return course.NewPlanner(provider, cfg.Course), nil
}
