// Package shape maps Go structs to host objects with declared fields.
//
// A Descriptor lists the fields of a struct in order, each with the rule that
// converts it and an accessor that addresses it:
//
//	type PackageJSON struct {
//		Name         string
//		Version      string
//		Dependencies *map[string]string
//	}
//
//	var PackageJSONShape = shape.MustDescribe("package_json",
//		shape.Required("name", convert.String(), func(p *PackageJSON) *string { return &p.Name }),
//		shape.Required("version", convert.String(), func(p *PackageJSON) *string { return &p.Version }),
//		shape.Optional("dependencies", convert.MapOf(convert.String()),
//			func(p *PackageJSON) **map[string]string { return &p.Dependencies }),
//	)
//
// Field names are snake_case and appear on the host in camelCase. Describe
// validates the descriptor once: the target must be a struct, every accessor
// must address one of its exported fields, and field names must be unique.
//
// Converting to Go, a missing or undefined required field is a missing_field
// error; an optional field that is missing, undefined or null becomes nil.
// Converting to the host builds a fresh object with the fields in declared
// order and nil optionals written as null.
package shape
