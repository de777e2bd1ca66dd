package testutil

import (
	"os"
	"testing"
	"time"

	"servicehub/pkg/client"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv skips the calling test unless TEST_SERVER_URL points at a
// running bookings service started with AUTH_TRUST_HEADER=true.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration test")
	}

	return &TestEnv{
		MongoURI:     os.Getenv("TEST_MONGO_URI"),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

// Setup waits for the server and returns a Mongo helper when TEST_MONGO_URI
// is set, nil otherwise. Tests isolate themselves with fresh user IDs either
// way; the helper only removes what they leave behind.
func (e *TestEnv) Setup(t *testing.T) *MongoHelper {
	t.Helper()

	if err := client.NewHttpClient(e.ServerURL).WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("server not healthy: %v", err)
	}

	if e.MongoURI == "" {
		return nil
	}
	return NewMongoHelper(t, e.MongoURI, e.DatabaseName)
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper, users ...string) {
	t.Helper()

	if mongo != nil {
		mongo.CleanUsers(t, users...)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
