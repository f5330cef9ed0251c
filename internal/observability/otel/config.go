// Package otel exports a span per policyconv command over OTLP. Tracing is
// off unless --otel is given.
package otel

import (
	"errors"
	"fmt"
	"strings"
)

// OTLP transports
const (
	ProtocolHTTP = "otlphttp"
	ProtocolGRPC = "otlpgrpc"
)

// Config is filled from the --otel-* flags
type Config struct {
	Enabled  bool
	Endpoint string // empty falls back to OTEL_EXPORTER_OTLP_ENDPOINT
	Protocol string
	Insecure bool

	ServiceName string
	SampleRatio float64
	Headers     map[string]string
}

// DefaultConfig has tracing off, HTTP transport and full sampling
func DefaultConfig() Config {
	return Config{
		Protocol:    ProtocolHTTP,
		ServiceName: "policyconv",
		SampleRatio: 1.0,
	}
}

// Validate only checks an enabled config
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Protocol != ProtocolHTTP && c.Protocol != ProtocolGRPC {
		return fmt.Errorf("otel: unknown protocol %q (want %s or %s)", c.Protocol, ProtocolHTTP, ProtocolGRPC)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return errors.New("otel: sample ratio must be between 0 and 1")
	}
	for k := range c.Headers {
		if k == "" {
			return errors.New("otel: header name must not be empty")
		}
	}
	return nil
}

// ParseHeaders turns repeated --otel-header key=value flags into a map
func ParseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("otel: header %q must be key=value", p)
		}
		headers[strings.TrimSpace(k)] = v
	}
	return headers, nil
}
