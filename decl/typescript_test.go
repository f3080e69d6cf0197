package decl

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

func TestSignature(t *testing.T) {
	str := value.Scalar(value.CategoryString)

	tests := []struct {
		name string
		fn   value.Function
		want string
	}{
		{"numbers", fn("add", value.Num(value.I64), value.Num(value.U32), value.Num(value.I32)),
			"(a: number, b: number) => number"},
		{"no params", fn("now", value.Num(value.F64)), "() => number"},
		{"void", fn("log", value.Scalar(value.CategoryUndefined), str), "(a: string) => void"},
		{"null result", fn("clear", value.Scalar(value.CategoryNull)), "() => null"},
		{"trailing optionals", fn("find", str, str, value.OptionOf(str), value.OptionOf(value.Num(value.U32))),
			"(a: string, b?: string | null, c?: number | null) => string"},
		{"optional before required", fn("pick", str, value.OptionOf(str), str),
			"(a: string | null, b: string) => string"},
		{"collections", fn("index", value.MapOf(value.ArrayOf(value.Num(value.F64))),
			value.ArrayOf(value.Scalar(value.CategoryBuffer)), value.Scalar(value.CategoryObject)),
			"(a: Array<Buffer>, b: object) => Record<string, Array<number>>"},
		{"boolean", fn("ok", value.Scalar(value.CategoryBoolean)), "() => boolean"},
		{"undefined param", fn("skip", str, value.Scalar(value.CategoryUndefined)), "(a: undefined) => string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Signature(tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignature_Shape(t *testing.T) {
	s := &value.Shape{Name: "PackageJson"}
	got, err := Signature(fn("read", value.OptionOf(value.ShapeOf(s))))
	require.NoError(t, err)
	assert.Equal(t, "() => PackageJson | null", got)
}

func TestSignature_Reserved(t *testing.T) {
	_, err := Signature(fn("big", value.Num(value.F64), value.Scalar(value.CategoryBigInt)))
	require.Error(t, err)

	var ce *errors.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.KindUnsupportedType, ce.Kind)
	assert.Equal(t, errors.PhaseDeclare, ce.Phase)
	assert.Equal(t, []string{"big", "param[0]"}, ce.Path)
}

func TestDeclaration(t *testing.T) {
	f := fn("sum", value.Num(value.U32), value.Num(value.U32), value.Num(value.U32))
	f.HostName = "sum"
	got, err := Declaration(f)
	require.NoError(t, err)
	assert.Equal(t, "export function sum(a: number, b: number): number;", got)
}

func TestInterface(t *testing.T) {
	got, err := Interface(userShape.Info())
	require.NoError(t, err)
	assert.Equal(t, `export interface User {
  userId: number;
  displayName: string;
  tags: Array<string>;
  active: boolean;
}`, got)
}

func TestTypeScript_Golden(t *testing.T) {
	data, err := TypeScript(fixture(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "exports.d.ts", data)
}

func TestTypeScript_Empty(t *testing.T) {
	data, err := TypeScript(nil)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))
}
