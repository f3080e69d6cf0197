// Package naming converts identifiers between the native snake_case form and
// the host-facing camelCase, PascalCase and kebab-case forms.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wippyai/hostbridge/errors"
)

// Casers are stateful, so each conversion gets its own.
func title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Camel converts snake_case to camelCase: read_package_json -> readPackageJson.
func Camel(snake string) string {
	segs := strings.Split(snake, "_")
	for i := 1; i < len(segs); i++ {
		segs[i] = title(segs[i])
	}
	return strings.Join(segs, "")
}

// Pascal converts snake_case to PascalCase: package_json -> PackageJson.
// Names that already start with an upper-case letter are returned unchanged.
func Pascal(snake string) string {
	if snake != "" && unicode.IsUpper(rune(snake[0])) {
		return snake
	}
	segs := strings.Split(snake, "_")
	for i := range segs {
		segs[i] = title(segs[i])
	}
	return strings.Join(segs, "")
}

// Kebab converts snake_case to kebab-case: read_package_json -> read-package-json.
func Kebab(snake string) string {
	return strings.ReplaceAll(snake, "_", "-")
}

// Snake converts camelCase or PascalCase back to snake_case.
func Snake(camel string) string {
	var b strings.Builder
	b.Grow(len(camel) + 4)
	for i, r := range camel {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate checks that name is lower snake_case whose segments start with a
// letter, so that Camel and Snake are inverses on it.
func Validate(name string) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "empty name")
	}
	for _, seg := range strings.Split(name, "_") {
		if seg == "" {
			return invalid(name, "empty segment")
		}
		if seg[0] < 'a' || seg[0] > 'z' {
			return invalid(name, "segments must start with a lower-case letter")
		}
		for i := 1; i < len(seg); i++ {
			c := seg[i]
			if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
				return invalid(name, "only a-z, 0-9 and _ are allowed")
			}
		}
	}
	if Snake(Camel(name)) != name {
		return invalid(name, "does not round-trip through camelCase")
	}
	return nil
}

// ValidatePascal checks a PascalCase type name.
func ValidatePascal(name string) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "empty name")
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return invalid(name, "type names start with an upper-case letter")
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return invalid(name, "only letters and digits are allowed")
		}
	}
	return nil
}

func invalid(name, why string) error {
	return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
		Value(name).
		Detail("invalid name %q: %s", name, why).
		Build()
}
