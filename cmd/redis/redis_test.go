package redisclient_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/akhdanrgya/teluhub-client/cmd/config"
	redisclient "github.com/akhdanrgya/teluhub-client/cmd/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Disabled(t *testing.T) {
	for _, host := range []string{"", "off"} {
		c, err := redisclient.Connect(context.Background(), config.RedisConfig{Host: host, Port: 6379})
		assert.Nil(t, c)
		assert.True(t, errors.Is(err, redisclient.ErrDisabled), host)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	start := time.Now()
	c, err := redisclient.Connect(context.Background(), config.RedisConfig{
		Host:    "127.0.0.1",
		Port:    port,
		Timeout: 200 * time.Millisecond,
	})
	assert.Nil(t, c)
	require.Error(t, err)
	assert.False(t, errors.Is(err, redisclient.ErrDisabled))
	assert.Contains(t, err.Error(), "unable to ping redis at 127.0.0.1:")
	assert.Less(t, time.Since(start), 5*time.Second)
}
