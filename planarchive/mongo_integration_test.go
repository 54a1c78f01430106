package planarchive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	testMongoClient    *mongodriver.Client
	testMongoContainer testcontainers.Container
	skipMongoTests     bool
)

// setupMongo starts a disposable MongoDB container the first time an
// integration test needs one; Docker being unavailable skips every test
// in this file instead of failing the run.
func setupMongo() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
		Tmpfs:        map[string]string{"/data/db": "rw"},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("docker not available, mongo archive tests will be skipped: %v\n", err)
		skipMongoTests = true
		return
	}
	testMongoContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		skipMongoTests = true
		return
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		skipMongoTests = true
		return
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	client, err := mongodriver.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		skipMongoTests = true
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		skipMongoTests = true
		return
	}
	testMongoClient = client
}

func mongoArchive(t *testing.T) *Mongo {
	t.Helper()
	if testMongoClient == nil && !skipMongoTests {
		setupMongo()
	}
	if skipMongoTests {
		t.Skip("docker not available, skipping mongo archive test")
	}
	archive, err := NewMongo(MongoOptions{
		Client:   testMongoClient,
		Database: "nextflap_test",
	})
	require.NoError(t, err)
	return archive
}

// TestMongoSavePlanPersistsAgainstRealServer exercises Mongo.SavePlan
// against an actual MongoDB instance rather than the in-package fake
// collection, the way Redis.CheckAndRecord is exercised against a real
// Redis instance in TestRedisCheckAndRecordAgainstRealServer.
func TestMongoSavePlanPersistsAgainstRealServer(t *testing.T) {
	archive := mongoArchive(t)
	ctx := context.Background()

	rec := Record{
		Task:     "briefcase",
		Makespan: 3.5,
		Cost:     2,
		Steps: []Step{
			{ActionName: "move", Start: 0, Duration: 1.5},
			{ActionName: "put-in", Start: 1.5, Duration: 2},
		},
	}
	err := archive.SavePlan(ctx, rec)
	assert.NoError(t, err)

	collection := testMongoClient.Database("nextflap_test").Collection(defaultCollection)
	count, err := collection.CountDocuments(ctx, map[string]any{"task": "briefcase"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	_ = collection.Drop(ctx)
}

func TestMongoSavePlanRejectsEmptyTaskAgainstRealServer(t *testing.T) {
	archive := mongoArchive(t)
	err := archive.SavePlan(context.Background(), Record{})
	assert.Error(t, err)
}
