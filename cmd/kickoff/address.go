package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/model"
)

// parseServerAddr normalizes a "host[:port]" connection string, defaulting
// the port to config.DefaultPort when omitted.
func parseServerAddr(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("-server is required")
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		host, portStr = s, strconv.Itoa(config.DefaultPort)
	}
	if host == "" {
		return "", fmt.Errorf("invalid server address %q: missing host", s)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		return "", fmt.Errorf("invalid server address %q: bad port %q", s, portStr)
	}
	return net.JoinHostPort(host, portStr), nil
}

// parseTags splits a resource-tag list on space, comma, or semicolon.
func parseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';'
	})
	return fields
}

// parseTaskID accepts up to 16 case-insensitive hex digits, with or without
// a leading "0x".
func parseTaskID(s string) (model.TaskID, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" || len(trimmed) > 16 {
		return 0, fmt.Errorf("invalid hexadecimal task id %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hexadecimal task id %q: %w", s, err)
	}
	return model.TaskID(v), nil
}

// formatTaskID renders a TaskID as the fixed-width hex string the CLI
// prints and accepts back via parseTaskID.
func formatTaskID(id model.TaskID) string {
	return fmt.Sprintf("%016x", uint64(id))
}
