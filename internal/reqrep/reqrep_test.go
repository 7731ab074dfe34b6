package reqrep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestReplyRoundTrip(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()

		req, err := conn.RecvFrame()
		require.NoError(t, err)
		require.Equal(t, []byte("ping"), req)

		require.NoError(t, conn.SendFrame([]byte("pong")))
	}()

	client, err := Dial(ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Call([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), reply)

	<-serverDone
}

func TestEmptyFrameRoundTrip(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()

		req, err := conn.RecvFrame()
		require.NoError(t, err)
		require.Empty(t, req)
		require.NoError(t, conn.SendFrame(nil))
	}()

	client, err := Dial(ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Call(nil)
	require.NoError(t, err)
	require.Empty(t, reply)

	<-serverDone
}
