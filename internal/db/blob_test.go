//go:build integration

package db_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/soractl/internal/db"
	"github.com/raphaelgruber/soractl/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *db.Client

var _ kv.Store = (*db.Client)(nil)

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Ryuk can fail in rootless or CI docker setups.
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = db.NewClient(ctx, db.Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: db.AuthRoot,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestBlobRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))

	_, found, err := testDB.Get(ctx, "sora-video-prompts")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, testDB.Set(ctx, "sora-video-prompts", `{"video_1":{"prompt":"a cat"}}`))
	val, found, err := testDB.Get(ctx, "sora-video-prompts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"video_1":{"prompt":"a cat"}}`, val)

	require.NoError(t, testDB.Set(ctx, "sora-video-prompts", `{}`))
	val, _, err = testDB.Get(ctx, "sora-video-prompts")
	require.NoError(t, err)
	assert.Equal(t, `{}`, val)
}

func TestBlobRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))

	require.NoError(t, testDB.Set(ctx, "sora-prompt-history", "[]"))
	require.NoError(t, testDB.Remove(ctx, "sora-prompt-history"))

	_, found, err := testDB.Get(ctx, "sora-prompt-history")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, testDB.Remove(ctx, "sora-prompt-history"), "second remove is a no-op")
}

func TestBlobRejectsEmptyKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	assert.ErrorIs(t, testDB.Set(ctx, " ", "v"), db.ErrInvalidKey)
	_, _, err := testDB.Get(ctx, "")
	assert.ErrorIs(t, err, db.ErrInvalidKey)
}
