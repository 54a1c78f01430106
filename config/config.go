// Package config provides the immutable configuration handle threaded
// through every pipeline constructor, per the "Global state" design note:
// configuration constants are set once at startup and never mutated.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StateCacheBackend selects the repeated-state closed-set implementation.
type StateCacheBackend string

const (
	// StateCacheMemory keeps the closed set in an in-process map. Default.
	StateCacheMemory StateCacheBackend = "memory"
	// StateCacheRedis shares the closed set across cooperating processes via
	// Redis, for portfolio or distributed search setups.
	StateCacheRedis StateCacheBackend = "redis"
)

// PlanArchiveBackend selects the solved-plan persistence implementation.
type PlanArchiveBackend string

const (
	// PlanArchiveNone disables plan persistence. Default.
	PlanArchiveNone PlanArchiveBackend = "none"
	// PlanArchiveMongo persists solved plans to MongoDB.
	PlanArchiveMongo PlanArchiveBackend = "mongo"
)

// Config is the immutable set of tunables governing a planning run. Build it
// once with New or Load and pass it by value (or as a read-only pointer)
// through every constructor; nothing in this package mutates a Config after
// construction.
type Config struct {
	// Epsilon is the minimal positive time separation the scheduler enforces
	// between causally ordered time points, and the duration assigned to the
	// end of a zero-duration action (§8 boundary behavior).
	Epsilon time.Duration

	// SignificativeLandmarks is carried in the configuration but no
	// component reads it; the landmark-deficit count in package heuristic
	// is the same whatever its value.
	SignificativeLandmarks bool

	// ValidatorCallThreshold is the heuristic-value gate at or below which the
	// search loop invokes the validator on a popped plan (§4.7). The source
	// hard-codes h<=1; the Open Question in §9 asks for this to be
	// configurable, so it is a Config field here.
	ValidatorCallThreshold int

	// WallClockBudget bounds total search wall-clock time. Zero means no
	// bound (run until the queue empties).
	WallClockBudget time.Duration

	// QueueLandmarkWeight is the weight applied to hLand in the informative
	// ordering g + h + w*hLand (§4.7 uses w=2).
	QueueLandmarkWeight int

	// QueueHeuristicWeight is the weight applied to h in the uninformative
	// ordering g + w*h (§4.7 uses w=2).
	QueueHeuristicWeight int

	// NumericReachabilityCutoff bounds how many layers the numeric RPG
	// heuristic (NRPG) explores; a goal not satisfiable by the last explored
	// layer is reported unreachable. The number of selected actions is not
	// capped.
	NumericReachabilityCutoff int

	// StateCacheBackend selects the repeated-state store implementation.
	StateCacheBackend StateCacheBackend
	// RedisAddr is the address used when StateCacheBackend is Redis.
	RedisAddr string

	// PlanArchiveBackend selects the solved-plan persistence implementation.
	PlanArchiveBackend PlanArchiveBackend
	// MongoURI is the connection string used when PlanArchiveBackend is Mongo.
	MongoURI string
	// MongoDatabase names the database solved plans are written to.
	MongoDatabase string

	// KeepStaticData preserves static predicates in the grounded task
	// instead of constant-folding them away (CLI flag -static).
	KeepStaticData bool
	// SkipSASTranslation leaves actions over booleans instead of deriving
	// multi-valued SAS variables (CLI flag -nsas).
	SkipSASTranslation bool
	// WriteMutexFile writes the computed mutex pairs to mutex.txt (CLI flag
	// -mutex).
	WriteMutexFile bool
}

// Default returns the engine's baseline configuration.
func Default() Config {
	return Config{
		Epsilon:                   time.Millisecond,
		SignificativeLandmarks:    true,
		ValidatorCallThreshold:    1,
		WallClockBudget:           0,
		QueueLandmarkWeight:       2,
		QueueHeuristicWeight:      2,
		NumericReachabilityCutoff: 10_000,
		StateCacheBackend:         StateCacheMemory,
		PlanArchiveBackend:        PlanArchiveNone,
	}
}

// New returns Default with the given options applied.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option mutates a Config under construction. Once New/Load returns, the
// Config is treated as immutable by every consumer.
type Option func(*Config)

// WithEpsilon overrides Epsilon.
func WithEpsilon(d time.Duration) Option { return func(c *Config) { c.Epsilon = d } }

// WithWallClockBudget overrides WallClockBudget.
func WithWallClockBudget(d time.Duration) Option { return func(c *Config) { c.WallClockBudget = d } }

// WithValidatorCallThreshold overrides ValidatorCallThreshold.
func WithValidatorCallThreshold(n int) Option {
	return func(c *Config) { c.ValidatorCallThreshold = n }
}

// Load reads a YAML configuration file layered on top of Default. Any field
// omitted in the file keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
