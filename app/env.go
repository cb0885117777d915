package app

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultPort = "3005"

func getenvTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := getenvTrim(key); value != "" {
			return value
		}
	}
	return ""
}

func getenvInt(key string, fallback int) int {
	raw := getenvTrim(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Warnf("Invalid %s %q; falling back to %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := getenvTrim(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		log.Warnf("Invalid %s %q; falling back to %s", key, raw, fallback)
		return fallback
	}
	return value
}

func serverAddr() (string, string) {
	if addr := getenvTrim("CHATOPS_ADDR"); addr != "" {
		return normalizeAddr(addr)
	}

	if port := firstEnv("CHATOPS_PORT", "PORT"); port != "" {
		if !validPort(port) {
			log.Warnf("Invalid port %q; falling back to :%s", port, defaultPort)
			return normalizeAddr(":" + defaultPort)
		}
		return normalizeAddr(":" + port)
	}

	return normalizeAddr(":" + defaultPort)
}

func validPort(port string) bool {
	value, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return value > 0 && value <= 65535
}

// normalizeAddr returns a listen address and the URL to log for it. A bare
// port number and a bare host are both accepted.
func normalizeAddr(addr string) (string, string) {
	normalized := strings.TrimSpace(addr)
	if normalized == "" {
		normalized = ":" + defaultPort
	}

	if _, err := strconv.Atoi(normalized); err == nil {
		normalized = ":" + normalized
	}

	host, port, err := net.SplitHostPort(normalized)
	if err != nil {
		if !strings.Contains(normalized, ":") {
			host = normalized
			port = defaultPort
			normalized = net.JoinHostPort(host, port)
		} else {
			log.Warnf("Invalid address %q; falling back to :%s", addr, defaultPort)
			host = ""
			port = defaultPort
			normalized = ":" + defaultPort
		}
	}

	displayHost := host
	if displayHost == "" || displayHost == "0.0.0.0" || displayHost == "::" {
		displayHost = "localhost"
	}

	logURL := fmt.Sprintf("http://%s:%s", displayHost, port)
	return normalized, logURL
}
