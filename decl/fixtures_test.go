package decl

import (
	"context"
	"testing"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/internal/demo"
	"github.com/wippyai/hostbridge/registry"
	"github.com/wippyai/hostbridge/shape"
	"github.com/wippyai/hostbridge/value"
)

type user struct {
	DisplayName string
	Tags        []string
	UserID      int64
	Active      bool
}

var userShape = shape.MustDescribe("user",
	shape.Required("user_id", convert.I64(), func(u *user) *int64 { return &u.UserID }),
	shape.Required("display_name", convert.String(), func(u *user) *string { return &u.DisplayName }),
	shape.Required("tags", convert.ArrayOf(convert.String()), func(u *user) *[]string { return &u.Tags }),
	shape.Required("active", convert.Bool(), func(u *user) *bool { return &u.Active }),
)

// fixture returns the demo functions followed by two functions covering
// arrays, options, keyed maps, buffers and undefined results.
func fixture(t *testing.T) []value.Function {
	t.Helper()
	r := registry.New()
	demo.Register(r)

	r.MustRegister(registry.Func2("tally",
		registry.P("values", convert.ArrayOf(convert.F64())),
		registry.P("label", convert.Option(convert.String())),
		convert.MapOf(convert.I32()),
		func(_ context.Context, values []float64, label *string) (map[string]int32, error) {
			return nil, nil
		}))

	r.MustRegister(registry.Func2("store_blob",
		registry.P("data", convert.Buffer()),
		registry.P("owner", userShape.Rule()),
		convert.Undefined(),
		func(_ context.Context, data []byte, owner user) (value.Undefined, error) {
			return value.Undefined{}, nil
		}))

	return r.Signatures()
}

func fn(name string, result value.Type, params ...value.Type) value.Function {
	f := value.Function{Name: name, HostName: name, Result: result}
	for i, p := range params {
		n := string(rune('a' + i))
		f.Params = append(f.Params, value.Param{Name: n, Key: n, Type: p})
	}
	return f
}
