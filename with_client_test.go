package nersdk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWithClient_CallbackReceivesStartedClient tests the lifecycle helper happy path.
func TestWithClient_CallbackReceivesStartedClient(t *testing.T) {
	transport := newMockTransport(nil)

	var sawReady bool

	err := WithClient(context.Background(), func(c Client) error {
		sawReady = c.IsReady()

		result, err := c.GetEntities(context.Background(), "hello world")
		if err != nil {
			return err
		}

		require.Len(t, result, 1)

		return nil
	}, WithTransport(transport))

	require.NoError(t, err)
	require.True(t, sawReady)

	// The helper closes the client, which closes the transport.
	require.False(t, transport.IsReady())
}

// TestWithClient_CallbackErrorPropagates tests that callback errors are returned.
func TestWithClient_CallbackErrorPropagates(t *testing.T) {
	callbackErr := errors.New("callback failed")

	err := WithClient(context.Background(), func(Client) error {
		return callbackErr
	}, WithTransport(newMockTransport(nil)))

	require.ErrorIs(t, err, callbackErr)
}

// TestWithClient_StartErrorPropagates tests that a broken install fails the helper.
func TestWithClient_StartErrorPropagates(t *testing.T) {
	called := false

	err := WithClient(context.Background(), func(Client) error {
		called = true

		return nil
	},
		WithInstallPath(t.TempDir()),
		WithJavaPath("/nonexistent/path/to/java"),
	)

	require.Error(t, err)
	require.False(t, called)

	var jnfErr *JavaNotFoundError
	ok := errors.As(err, &jnfErr)
	require.True(t, ok)
}

// TestWithClient_CancelledContext tests that a cancelled context short-circuits.
func TestWithClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithClient(ctx, func(Client) error {
		return nil
	}, WithTransport(newMockTransport(nil)))

	require.ErrorIs(t, err, context.Canceled)
}

// TestGetEntities_OneShot tests the one-shot helper against a mock transport.
func TestGetEntities_OneShot(t *testing.T) {
	transport := newMockTransport(func(string) []string {
		return []string{"Angela/PERSON Merkel/PERSON of/O Germany/LOCATION resigned/O ./O"}
	})

	result, err := GetEntities(context.Background(), "Angela Merkel of Germany resigned .",
		WithTransport(transport),
	)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, []string{"Angela Merkel"}, result[0].Get("PERSON"))
	require.Equal(t, []string{"Germany"}, result[0].Get("LOCATION"))
	require.False(t, transport.IsReady())
}

// TestGetEntities_OneShotStartError tests one-shot failure on a broken install.
func TestGetEntities_OneShotStartError(t *testing.T) {
	_, err := GetEntities(context.Background(), "hello world",
		WithInstallPath(t.TempDir()),
		WithJavaPath("/nonexistent/path/to/java"),
	)

	require.Error(t, err)
}
