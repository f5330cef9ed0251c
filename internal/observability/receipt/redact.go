package receipt

import (
	"net/url"
	"strings"
)

const redactedValue = "[REDACTED]"

// secretFlags have their whole value replaced
var secretFlags = map[string]bool{
	"otel-header": true,
	"token":       true,
	"password":    true,
	"api-key":     true,
}

// endpointFlags keep their URL but lose any user:password@
var endpointFlags = map[string]bool{
	"otel-endpoint": true,
}

// RedactArgs masks credential flag values before the arguments go into a
// receipt. The flag is true when anything was masked.
func RedactArgs(args []string) ([]string, bool) {
	if len(args) == 0 {
		return args, false
	}

	out := make([]string, len(args))
	changed := false
	for i := 0; i < len(args); i++ {
		out[i] = args[i]
		if !strings.HasPrefix(args[i], "-") {
			continue
		}

		name, value, inline := strings.Cut(args[i], "=")
		flag := flagName(name)
		if !secretFlags[flag] && !endpointFlags[flag] {
			continue
		}
		if inline {
			if masked, ok := mask(flag, value); ok {
				out[i] = name + "=" + masked
				changed = true
			}
			continue
		}
		if i+1 < len(args) {
			i++
			masked, ok := mask(flag, args[i])
			out[i] = masked
			changed = changed || ok
		}
	}
	return out, changed
}

func mask(flag, value string) (string, bool) {
	if secretFlags[flag] {
		return redactedValue, true
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value, false
	}
	u.User = url.User(redactedValue)
	return u.String(), true
}

func flagName(s string) string {
	return strings.ToLower(strings.TrimLeft(s, "-"))
}
