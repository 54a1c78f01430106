package planarchive

import (
	"context"
	"errors"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	defaultCollection = "solved_plans"
	defaultOpTimeout  = 5 * time.Second
)

// MongoOptions configures the Mongo-backed Archive.
type MongoOptions struct {
	Client     *mongodriver.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

// Mongo persists solved plans to MongoDB, one document per SavePlan call.
type Mongo struct {
	coll    collection
	timeout time.Duration
}

// NewMongo returns an Archive backed by MongoDB, per
// config.Config.PlanArchiveBackend/MongoURI/MongoDatabase.
func NewMongo(opts MongoOptions) (*Mongo, error) {
	if opts.Client == nil {
		return nil, errors.New("planarchive: mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("planarchive: database name is required")
	}
	coll := opts.Collection
	if coll == "" {
		coll = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	mcoll := opts.Client.Database(opts.Database).Collection(coll)
	return &Mongo{coll: mongoCollection{coll: mcoll}, timeout: timeout}, nil
}

// SavePlan implements Archive.
func (m *Mongo) SavePlan(ctx context.Context, rec Record) error {
	if rec.Task == "" {
		return errors.New("planarchive: task name is required")
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	doc := fromRecord(rec)
	_, err := m.coll.InsertOne(ctx, doc)
	return err
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

type stepDocument struct {
	ActionName string  `bson:"action_name"`
	Start      float64 `bson:"start"`
	Duration   float64 `bson:"duration"`
}

type recordDocument struct {
	Task     string         `bson:"task"`
	Makespan float64        `bson:"makespan"`
	Cost     int            `bson:"cost"`
	Steps    []stepDocument `bson:"steps"`
	SavedAt  time.Time      `bson:"saved_at"`
}

func fromRecord(rec Record) recordDocument {
	steps := make([]stepDocument, len(rec.Steps))
	for i, s := range rec.Steps {
		steps[i] = stepDocument{ActionName: s.ActionName, Start: s.Start, Duration: s.Duration}
	}
	return recordDocument{
		Task:     rec.Task,
		Makespan: rec.Makespan,
		Cost:     rec.Cost,
		Steps:    steps,
		SavedAt:  time.Now().UTC(),
	}
}

// collection is the narrow slice of *mongodriver.Collection this package
// uses, kept as an interface so tests can substitute a fake without a
// live server.
type collection interface {
	InsertOne(ctx context.Context, document any) (*mongodriver.InsertOneResult, error)
}

type mongoCollection struct {
	coll *mongodriver.Collection
}

func (c mongoCollection) InsertOne(ctx context.Context, document any) (*mongodriver.InsertOneResult, error) {
	return c.coll.InsertOne(ctx, document)
}
