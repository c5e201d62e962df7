package nats

import (
	"context"
	"os"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNatsURL = "nats://127.0.0.1:8371"

func TestMain(m *testing.M) {
	opts := natsserver.DefaultTestOptions
	opts.Port = 8371
	testNatsServer := natsserver.RunServer(&opts)
	code := m.Run()
	testNatsServer.Shutdown()
	os.Exit(code)
}

func TestNewClient_InvalidAddress(t *testing.T) {
	client, err := NewClient("nats://127.0.0.1:1", nats.MaxReconnects(0))
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to NATS server")
}

func TestClient_RequestJSON(t *testing.T) {
	client, err := NewClient(testNatsURL)
	require.NoError(t, err)
	defer client.Close()
	assert.True(t, client.IsConnected())

	type ping struct {
		N int `json:"n"`
	}

	sub, err := client.QueueSubscribe("test.double", "workers", func(msg *nats.Msg) {
		_ = msg.Respond([]byte(`{"n":42}`))
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp ping
	require.NoError(t, client.RequestJSON(ctx, "test.double", ping{N: 21}, &resp))
	assert.Equal(t, 42, resp.N)
}

func TestClient_Request_NoResponders(t *testing.T) {
	client, err := NewClient(testNatsURL)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err = client.Request(ctx, "test.nobody", []byte("hi"))
	assert.Error(t, err)
}

func TestClient_PublishSubscribe(t *testing.T) {
	client, err := NewClient(testNatsURL)
	require.NoError(t, err)
	defer client.Close()

	got := make(chan string, 1)
	sub, err := client.Subscribe("test.pub", func(msg *nats.Msg) {
		got <- string(msg.Data)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, client.Publish("test.pub", []byte("hello")))

	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(2 * time.Second):
		t.Fatal("Did not receive published message")
	}
}
