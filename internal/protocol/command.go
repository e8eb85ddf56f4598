package protocol

import (
	"fmt"
	"strings"

	"github.com/altiplano-labs/camlink/internal/domain"
)

// Argument keys recognized by the grammar. Unknown keys are rejected at
// parse time rather than ignored silently.
const (
	keyResolution = "size_name"
	keyPath       = "path"
)

// ParseCommand parses one line of text against the grammar
//
//	<KIND:{key:value, key:value, ...}>
//
// where KIND is one of FOTO, CAPTURAR or ENVIAR. Whitespace around tokens
// is insignificant. The parse is pure: it produces a typed command or
// domain.ErrMalformedCommand, nothing else.
func ParseCommand(line string) (domain.Command, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return nil, fmt.Errorf("%w: missing brackets in %q", domain.ErrMalformedCommand, s)
	}

	kind, rest, ok := strings.Cut(s[1:len(s)-1], ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing kind separator in %q", domain.ErrMalformedCommand, s)
	}
	kind = strings.TrimSpace(kind)

	args, err := parseArgs(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}

	switch kind {
	case "FOTO":
		res, err := takeOnly(args, keyResolution)
		if err != nil {
			return nil, err
		}
		return domain.CaptureAndSendCommand{Resolution: res}, nil
	case "CAPTURAR":
		res, err := takeOnly(args, keyResolution)
		if err != nil {
			return nil, err
		}
		return domain.CaptureCommand{Resolution: res}, nil
	case "ENVIAR":
		path, err := takeOnly(args, keyPath)
		if err != nil {
			return nil, err
		}
		return domain.SendCommand{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedCommand, kind)
	}
}

// parseArgs parses the braced key/value body. Pairs are separated by
// commas, keys and values by the first colon, so values may themselves
// contain colons (device paths do).
func parseArgs(body string) (map[string]string, error) {
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return nil, fmt.Errorf("%w: missing braces in %q", domain.ErrMalformedCommand, body)
	}

	args := make(map[string]string)
	inner := strings.TrimSpace(body[1 : len(body)-1])
	if inner == "" {
		return args, nil
	}

	for _, pair := range strings.Split(inner, ",") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("%w: pair %q has no separator", domain.ErrMalformedCommand, pair)
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			return nil, fmt.Errorf("%w: empty key or value in %q", domain.ErrMalformedCommand, pair)
		}
		if _, dup := args[k]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", domain.ErrMalformedCommand, k)
		}
		args[k] = v
	}
	return args, nil
}

// takeOnly returns the value for key and rejects any other key present.
func takeOnly(args map[string]string, key string) (string, error) {
	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", domain.ErrMalformedCommand, key)
	}
	for k := range args {
		if k != key {
			return "", fmt.Errorf("%w: unknown key %q", domain.ErrMalformedCommand, k)
		}
	}
	return val, nil
}
