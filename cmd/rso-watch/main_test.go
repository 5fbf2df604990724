package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelURL(t *testing.T) {
	got, err := channelURL("http://localhost:9090/", "abc")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:9090/ws?token=abc", got)

	got, err = channelURL("https://rate.example/base", "a b")
	require.NoError(t, err)
	assert.Equal(t, "wss://rate.example/base/ws?token=a+b", got)

	_, err = channelURL("ftp://x", "t")
	assert.Error(t, err)
}
