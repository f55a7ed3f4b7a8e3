package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"traffic-forecast-api/aggregate"
	"traffic-forecast-api/config"
	"traffic-forecast-api/dataset"
	"traffic-forecast-api/forecast"
	"traffic-forecast-api/forest"
	"traffic-forecast-api/metrics"
	"traffic-forecast-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// State is everything the HTTP layer reads. It is built once at startup and
// never mutated, so handlers share it without locking.
type State struct {
	Routes     *aggregate.RouteAggregator
	Forecaster *forecast.Forecaster

	RouteStats    dataset.LoadStats
	LocationStats dataset.LoadStats

	// Version identifies the trained model. CacheNamespace also covers the
	// route records, so a change to either dataset invalidates cached
	// responses.
	Version        string
	CacheNamespace string
	LoadedAt       time.Time
}

// ModelLoaded reports whether the forecaster finished training.
func (s *State) ModelLoaded() bool {
	return s != nil && s.Forecaster != nil
}

// Build loads both datasets named by cfg and trains the forecast model.
// Any error is fatal for the process.
func Build(ctx context.Context, cfg *config.Config) (*State, error) {
	routes, routeStats, err := dataset.LoadRoutes(cfg.Dataset.RoutePath)
	if err != nil {
		return nil, err
	}
	logStats("routes", cfg.Dataset.RoutePath, routeStats)

	locations, locationStats, from, err := loadLocations(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logStats("locations", from, locationStats)

	state, err := New(ctx, routes, locations, ModelOptions(cfg.Model))
	if err != nil {
		return nil, err
	}
	state.RouteStats = routeStats
	state.LocationStats = locationStats

	m := state.Forecaster.Model().Metrics()
	log.Printf("Trained %s on %d rows in %.2fs (held out %d): r2=%.4f rmse=%.2f mae=%.2f",
		state.Version, m.TrainingSamples, m.TrainingSeconds, m.TestingSamples, m.R2, m.RMSE, m.MAE)
	return state, nil
}

// New builds a State from records already in memory.
func New(ctx context.Context, routes []models.RouteRecord, locations []models.Observation, opts forecast.Options) (*State, error) {
	aggregator, err := aggregate.NewRouteAggregator(routes, aggregate.FitRouteEncoders(routes))
	if err != nil {
		return nil, fmt.Errorf("index routes: %w", err)
	}

	if opts.Version == "" {
		opts.Version = "rf-" + dataset.Fingerprint(locations)[:12]
	}

	enc := forecast.FitEncoders(locations)
	model, err := forecast.Train(ctx, locations, enc, opts)
	if err != nil {
		return nil, fmt.Errorf("train forecast model: %w", err)
	}

	return &State{
		Routes:         aggregator,
		Forecaster:     forecast.NewForecaster(locations, enc, model, forecast.DefaultLadder),
		RouteStats:     dataset.LoadStats{Rows: len(routes), Kept: len(routes)},
		LocationStats:  dataset.LoadStats{Rows: len(locations), Kept: len(locations)},
		Version:        opts.Version,
		CacheNamespace: opts.Version + "-" + dataset.RouteFingerprint(routes)[:12],
		LoadedAt:       time.Now(),
	}, nil
}

// ModelOptions maps the model section of the configuration onto training
// options.
func ModelOptions(cfg config.ModelConfig) forecast.Options {
	opts := forecast.DefaultOptions()
	opts.TestFraction = cfg.TestFraction
	opts.Forest = forest.Config{
		Trees:           cfg.Trees,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
	}
	return opts
}

// Record publishes the startup figures of s on the collector.
func (s *State) Record(c *metrics.Collector) {
	for name, stats := range map[string]dataset.LoadStats{"routes": s.RouteStats, "locations": s.LocationStats} {
		c.DatasetRows.WithLabelValues(name, "kept").Set(float64(stats.Kept))
		c.DatasetRows.WithLabelValues(name, "dropped").Set(float64(stats.Dropped()))
	}
	m := s.Forecaster.Model().Metrics()
	c.TrainingDuration.Set(m.TrainingSeconds)
	c.ModelR2.Set(m.R2)
	c.ModelRMSE.Set(m.RMSE)
	c.ModelMAE.Set(m.MAE)
}

func loadLocations(ctx context.Context, cfg *config.Config) ([]models.Observation, dataset.LoadStats, string, error) {
	if cfg.Dataset.Source != config.SourcePostgres {
		records, stats, err := dataset.LoadLocations(cfg.Dataset.LocationPath)
		return records, stats, cfg.Dataset.LocationPath, err
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, dataset.LoadStats{}, "", fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, dataset.LoadStats{}, "", fmt.Errorf("get sql db handle: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, dataset.LoadStats{}, "", fmt.Errorf("ping database: %w", err)
	}

	from := fmt.Sprintf("postgres://%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	records, stats, err := dataset.LoadLocationsFromDB(ctx, db)
	return records, stats, from, err
}

func logStats(name, from string, s dataset.LoadStats) {
	log.Printf("Loaded %s dataset from %s: %d rows, %d kept", name, from, s.Rows, s.Kept)
	if s.Dropped() > 0 {
		log.Printf("Dropped %d %s rows: %d unparsable timestamps, %d incomplete",
			s.Dropped(), name, s.BadTimestamp, s.Incomplete)
	}
}
