package gateway_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and assertions shared by the gateway end-to-end tests.
 * The service runs with API_AUTH_MODE=none so no token issuer is needed.
 */

const (
	testImageName = "campusgate-test:latest"

	masterKey    = "e2e-master-key-0123456789abcdef"
	testUsername = "20300240001"
	testPassword = "Campus123!"
	testTOTP     = "JBSWY3DPEHPK3PXP"

	// Resolves nowhere, so any fetch against it fails in the transport.
	unreachableURL = "http://campus.invalid/eams/home.action"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building gateway Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up gateway Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/campusgate/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupGatewayContainer starts the gateway and returns an SDK client for it.
func setupGatewayContainer(t *testing.T) (*gatesdk.Client, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"ENV":                     "test",
			"LOG_LEVEL":               "debug",
			"LOG_FORMAT":              "json",
			"API_AUTH_MODE":           "none",
			"GATEWAY_MASTER_KEY":      masterKey,
			"GATEWAY_DATABASE_FILE":   "/data/gateway.db",
			"GATEWAY_REQUEST_TIMEOUT": "10s",
			// Tests make many rapid requests from one address.
			"RATELIMIT_FETCH_REQUESTS": "1000",
			"RATELIMIT_FETCH_BURST":    "1000",
			"RATELIMIT_ADMIN_REQUESTS": "1000",
			"RATELIMIT_ADMIN_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	client := gatesdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return client, cleanup
}

// storeCredentials saves the test account and checks the returned status.
func storeCredentials(t *testing.T, client *gatesdk.Client) {
	t.Helper()

	status, err := client.SetCredentials(t.Context(), gatesdk.SetCredentialsRequest{
		Username:   testUsername,
		Password:   testPassword,
		TOTPSecret: testTOTP,
	})
	require.NoError(t, err)
	require.True(t, status.Configured)
	require.Equal(t, testUsername, status.Username)
	require.True(t, status.HasTOTP)
}

// assertAPIError checks that err is an API error with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var apiErr *gatesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status for %s", apiErr.Code)
	require.Equal(t, code, apiErr.Code)
}

func assertHealthy(t *testing.T, health *gatesdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
