package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/value"
)

// NewCallCommand creates the call command.
func NewCallCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <name> [json-args...]",
		Short: "Call an exported function once",
		Long: `Call an exported function with JSON arguments and print the JSON result.

Arguments for string parameters may be given unquoted. Buffer parameters take
base64. An empty argument is passed as undefined.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), root, cmd, args[0], args[1:])
		},
	}
	return cmd
}

func runCall(ctx context.Context, root *RootOptions, cmd *cobra.Command, name string, raw []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fn, err := root.Registry.Resolve(name)
	if err != nil {
		return err
	}
	params := fn.Signature().Params

	args := make([]any, len(raw))
	for i, s := range raw {
		var t *value.Type
		if i < len(params) {
			t = &params[i].Type
		}
		if args[i], err = parseArg(s, t); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}

	rt, err := root.newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	result, err := rt.CallValues(ctx, fn.HostName(), args...)
	if err != nil {
		return err
	}

	out, err := formatResult(result)
	if err != nil {
		return err
	}
	root.Log.Debug("call finished", zap.String("function", fn.HostName()))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// parseArg decodes one argument. t is the declared parameter type, nil for
// arguments past the declared ones.
func parseArg(s string, t *value.Type) (any, error) {
	if s == "" {
		return value.Undefined{}, nil
	}
	if t != nil {
		switch t.Inner().Category {
		case value.CategoryString:
			if !strings.HasPrefix(s, `"`) && s != "null" {
				return s, nil
			}
		case value.CategoryBuffer:
			if s != "null" {
				b, err := base64.StdEncoding.DecodeString(strings.Trim(s, `"`))
				if err != nil {
					return nil, fmt.Errorf("decode base64: %w", err)
				}
				return b, nil
			}
		}
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parse JSON %q: %w", s, err)
	}
	return v, nil
}

// formatResult renders a host value as JSON. Buffers are base64 and
// undefined prints as the bare word.
func formatResult(v any) (string, error) {
	if _, ok := v.(value.Undefined); ok {
		return "undefined", nil
	}
	data, err := json.Marshal(undefinedToNull(v))
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

func undefinedToNull(v any) any {
	switch x := v.(type) {
	case value.Undefined:
		return nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = undefinedToNull(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = undefinedToNull(e)
		}
		return out
	}
	return v
}
