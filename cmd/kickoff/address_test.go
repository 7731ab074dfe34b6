package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseServerAddrDefaultsPort(t *testing.T) {
	addr, err := parseServerAddr("example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com:3355", addr)
}

func TestParseServerAddrExplicitPort(t *testing.T) {
	addr, err := parseServerAddr("example.com:4000")
	require.NoError(t, err)
	require.Equal(t, "example.com:4000", addr)
}

func TestParseServerAddrEmpty(t *testing.T) {
	_, err := parseServerAddr("")
	require.Error(t, err)
}

func TestParseTagsSplitsOnSpaceCommaSemicolon(t *testing.T) {
	require.Equal(t, []string{"cuda", "amd64", "fast-disk"}, parseTags("cuda, amd64;fast-disk"))
	require.Nil(t, parseTags(""))
	require.Nil(t, parseTags("   "))
}

func TestParseTaskIDRoundTrip(t *testing.T) {
	id, err := parseTaskID("DEADBEEFCAFEBABE")
	require.NoError(t, err)
	require.Equal(t, "deadbeefcafebabe", formatTaskID(id))

	id2, err := parseTaskID("0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeef), uint64(id2))
}

func TestParseTaskIDRejectsOverlongOrEmpty(t *testing.T) {
	_, err := parseTaskID("")
	require.Error(t, err)

	_, err = parseTaskID("deadbeefcafebabe00")
	require.Error(t, err)

	_, err = parseTaskID("not-hex")
	require.Error(t, err)
}
