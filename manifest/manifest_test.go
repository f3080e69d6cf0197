package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/internal/demo"
	"github.com/wippyai/hostbridge/registry"
	"github.com/wippyai/hostbridge/value"
)

func TestParseType(t *testing.T) {
	node := &value.Shape{Name: "Node"}
	shapes := map[string]*value.Shape{"Node": node}

	tests := []struct {
		expr string
		want value.Type
	}{
		{"u32", value.Num(value.U32)},
		{"f64", value.Num(value.F64)},
		{"boolean", value.Scalar(value.CategoryBoolean)},
		{"buffer", value.Scalar(value.CategoryBuffer)},
		{"array<i32>", value.ArrayOf(value.Num(value.I32))},
		{"map< array<string> >", value.MapOf(value.ArrayOf(value.Scalar(value.CategoryString)))},
		{"option<node>", value.OptionOf(value.ShapeOf(node))},
		{"Node", value.ShapeOf(node)},
		{"object", value.Scalar(value.CategoryObject)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseType(tt.expr, shapes)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseType_RoundTrip(t *testing.T) {
	node := &value.Shape{Name: "Node"}
	shapes := map[string]*value.Shape{"Node": node}

	for _, typ := range []value.Type{
		value.OptionOf(value.MapOf(value.ArrayOf(value.Num(value.I64)))),
		value.ArrayOf(value.OptionOf(value.ShapeOf(node))),
		value.Scalar(value.CategoryNull),
	} {
		got, err := ParseType(typ.String(), shapes)
		require.NoError(t, err)
		assert.True(t, typ.Equal(got), typ.String())
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, expr := range []string{"", "array", "array<u32", "map<>", "u32 u32", "widget", "option<option<u32>>", "u8"} {
		_, err := ParseType(expr, nil)
		assert.True(t, errors.IsKind(err, errors.KindInvalidInput), "%q: %v", expr, err)
	}

	_, err := ParseType("array<bigint>", nil)
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedType))
}

func TestLoad(t *testing.T) {
	m, err := Load("testdata/demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, "hostbridge:demo", m.Package)
	assert.Equal(t, "exports", m.Interface)

	fns, err := m.Resolve()
	require.NoError(t, err)
	require.Len(t, fns, 3)
	assert.Equal(t, "readPackageJson", fns[2].HostName)
	require.NotNil(t, fns[2].Result.Shape)

	deps, ok := fns[2].Result.Shape.Field("dependencies")
	require.True(t, ok)
	assert.True(t, deps.Optional)
	assert.Equal(t, "option<map<string>>", deps.Type.String())
}

// The demo manifest must describe the same functions the demo registers.
func TestLoad_MatchesRegistry(t *testing.T) {
	m, err := Load("testdata/demo.yaml")
	require.NoError(t, err)
	fromManifest, err := m.Resolve()
	require.NoError(t, err)

	r := registry.New()
	demo.Register(r)
	fromRegistry := r.Signatures()

	require.Len(t, fromManifest, len(fromRegistry))
	for i := range fromRegistry {
		want, got := fromRegistry[i], fromManifest[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.HostName, got.HostName)
		assert.True(t, want.Result.Equal(got.Result), want.Name)
		require.Len(t, got.Params, len(want.Params))
		for j := range want.Params {
			assert.Equal(t, want.Params[j].Key, got.Params[j].Key)
			assert.True(t, want.Params[j].Type.Equal(got.Params[j].Type))
		}
	}
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("package: a:b\nfunctions:\n  - name: ping\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultInterface, m.Interface)

	fns, err := m.Resolve()
	require.NoError(t, err)
	assert.Equal(t, value.CategoryUndefined, fns[0].Result.Category)
	assert.Empty(t, fns[0].Params)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "package: [",
		"missing package": "functions: []",
		"unnamed param":   "package: a:b\nfunctions:\n  - name: f\n    params:\n      - type: u32\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			var ce *errors.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, errors.PhaseManifest, ce.Phase)
			assert.Equal(t, errors.KindInvalidInput, ce.Kind)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"duplicate function", "package: a:b\nfunctions:\n  - name: f\n  - name: f\n", errors.KindDuplicate},
		{"duplicate shape", "package: a:b\nshapes:\n  - name: s\n  - name: S\nfunctions: []\n", errors.KindDuplicate},
		{"bad function name", "package: a:b\nfunctions:\n  - name: Bad\n", errors.KindInvalidInput},
		{"unknown type", "package: a:b\nfunctions:\n  - name: f\n    result: widget\n", errors.KindInvalidInput},
		{"duplicate param", "package: a:b\nfunctions:\n  - name: f\n    params:\n      - {name: x, type: u32}\n      - {name: x, type: u32}\n", errors.KindDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = m.Resolve()
			assert.True(t, errors.IsKind(err, tt.kind), "%v", err)
		})
	}
}

func TestResolve_RecursiveShapes(t *testing.T) {
	doc := `
package: a:b
shapes:
  - name: tree
    fields:
      - {name: label, type: string}
      - {name: children, type: array<tree>}
      - {name: parent, type: tree, optional: true}
functions:
  - name: root
    result: tree
`
	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	fns, err := m.Resolve()
	require.NoError(t, err)

	tree := fns[0].Result.Shape
	require.NotNil(t, tree)
	children, _ := tree.Field("children")
	assert.Same(t, tree, children.Type.Elem.Shape)
	parent, _ := tree.Field("parent")
	assert.True(t, parent.Type.Nullable)
}

func TestFromFunctions(t *testing.T) {
	r := registry.New()
	demo.Register(r)

	m, err := FromFunctions("hostbridge:demo", "exports", r.Signatures(), r.Shapes()...)
	require.NoError(t, err)
	data, err := m.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	fns, err := back.Resolve()
	require.NoError(t, err)

	want := r.Signatures()
	require.Len(t, fns, len(want))
	for i := range want {
		assert.Equal(t, want[i].HostName, fns[i].HostName)
		assert.True(t, want[i].Result.Equal(fns[i].Result))
	}
	require.Len(t, back.Shapes, 1)
	assert.Equal(t, "package_json", back.Shapes[0].Name)
}

func TestFromFunctions_ShapeConflict(t *testing.T) {
	a := &value.Shape{Name: "Item", Fields: []value.Field{{Name: "x", Key: "x", Type: value.Num(value.U32)}}}
	b := &value.Shape{Name: "Item", Fields: []value.Field{{Name: "y", Key: "y", Type: value.Scalar(value.CategoryString)}}}
	fns := []value.Function{
		{Name: "get_a", HostName: "getA", Result: value.ShapeOf(a)},
		{Name: "get_b", HostName: "getB", Result: value.ShapeOf(b)},
	}

	_, err := FromFunctions("a:b", "c", fns)
	assert.True(t, errors.IsKind(err, errors.KindDuplicate))
}

func TestDeclarations_Order(t *testing.T) {
	m, err := Parse([]byte(`
package: a:b
shapes:
  - name: zeta
    fields:
      - {name: a, type: u32}
  - name: alpha
    fields:
      - {name: z, type: zeta}
functions:
  - name: make_alpha
    result: alpha
`))
	require.NoError(t, err)

	shapes, fns, err := m.Declarations()
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.Equal(t, "Zeta", shapes[0].Name)
	assert.Equal(t, "Alpha", shapes[1].Name)
	require.Len(t, fns, 1)
	assert.Same(t, shapes[1], fns[0].Result.Shape)
}
