// Package demo registers the sample functions exposed by the hostbridge CLI.
// Importing it for side effects fills registry.Default().
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/registry"
	"github.com/wippyai/hostbridge/shape"
)

// PackageJSON is the subset of package.json read by read_package_json.
type PackageJSON struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Dependencies *map[string]string `json:"dependencies,omitempty"`
}

// PackageJSONShape describes PackageJSON to the host.
var PackageJSONShape = shape.MustDescribe("package_json",
	shape.Required("name", convert.String(), func(p *PackageJSON) *string { return &p.Name }),
	shape.Required("version", convert.String(), func(p *PackageJSON) *string { return &p.Version }),
	shape.Optional("dependencies", convert.MapOf(convert.String()),
		func(p *PackageJSON) **map[string]string { return &p.Dependencies }),
)

func init() {
	Register(registry.Default())
}

// Register adds the demo shape and functions to r.
func Register(r *registry.Registry) {
	r.MustRegisterShape(PackageJSONShape)

	r.MustRegister(registry.Func2("sum",
		registry.P("a", convert.U32()),
		registry.P("b", convert.U32()),
		convert.U32(),
		Sum))

	r.MustRegister(registry.Func1("greet",
		registry.P("name", convert.String()),
		convert.String(),
		Greet))

	r.MustRegister(registry.Func0("read_package_json",
		PackageJSONShape.Rule(),
		ReadPackageJSON))
}

// Sum adds two unsigned integers.
func Sum(_ context.Context, a, b uint32) (uint32, error) {
	s := uint64(a) + uint64(b)
	if s > 1<<32-1 {
		return 0, fmt.Errorf("sum %d overflows u32", s)
	}
	return uint32(s), nil
}

// Greet returns a greeting for name.
func Greet(_ context.Context, name string) (string, error) {
	return "greeting, " + name, nil
}

// ReadPackageJSON reads package.json from the working directory.
func ReadPackageJSON(_ context.Context) (PackageJSON, error) {
	var pkg PackageJSON
	data, err := os.ReadFile("package.json")
	if err != nil {
		return pkg, fmt.Errorf("read package.json: %w", err)
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return pkg, fmt.Errorf("parse package.json: %w", err)
	}
	return pkg, nil
}
