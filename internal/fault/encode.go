package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatMsgpack:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json, yaml or msgpack)", ErrUnknownFormat, s)
	}
}

// Encode writes v to w. FormatText is only meaningful for values with a
// Summary method and falls back to JSON otherwise.
func Encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatText:
		if s, ok := v.(interface{ Summary() string }); ok {
			_, err := fmt.Fprintln(w, s.Summary())
			return err
		}
		return Encode(w, FormatJSON, v)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DecodeMsgpack reads a single msgpack value into out.
func DecodeMsgpack(r io.Reader, out interface{}) error {
	return msgpack.NewDecoder(r).Decode(out)
}
