package value

// Category identifies how a value is represented and converted across the boundary.
type Category uint8

const (
	CategoryUndefined Category = iota
	CategoryNull
	CategoryNumber
	CategoryString
	CategoryBoolean
	CategoryBuffer
	CategoryObject
	CategoryArray
	CategoryBigInt
	CategoryTypedArray
)

var categoryNames = [...]string{
	CategoryUndefined:  "undefined",
	CategoryNull:       "null",
	CategoryNumber:     "number",
	CategoryString:     "string",
	CategoryBoolean:    "boolean",
	CategoryBuffer:     "buffer",
	CategoryObject:     "object",
	CategoryArray:      "array",
	CategoryBigInt:     "bigint",
	CategoryTypedArray: "typedarray",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Reserved reports whether the category is an unimplemented extension point.
func (c Category) Reserved() bool {
	return c == CategoryBigInt || c == CategoryTypedArray
}

// IsAggregate reports whether conversion walks members with one host round trip each.
func (c Category) IsAggregate() bool {
	return c == CategoryObject || c == CategoryArray
}

// Cost is the documented cost class of converting one value of a category.
func (c Category) Cost() Cost {
	switch c {
	case CategoryString, CategoryBuffer:
		return CostLinear
	case CategoryObject, CategoryArray:
		return CostPerMember
	default:
		return CostConstant
	}
}

// NumberKind distinguishes Number subcategories by width and signedness.
type NumberKind uint8

const (
	I32 NumberKind = iota
	U32
	I64
	F64
)

var numberNames = [...]string{
	I32: "i32",
	U32: "u32",
	I64: "i64",
	F64: "f64",
}

func (k NumberKind) String() string {
	if int(k) < len(numberNames) {
		return numberNames[k]
	}
	return "unknown"
}

// IsInteger reports whether the kind only admits integral values.
func (k NumberKind) IsInteger() bool {
	return k != F64
}

// Cost classifies the work a conversion does.
type Cost uint8

const (
	CostConstant  Cost = iota // fixed work, one host call at most
	CostLinear                // proportional to payload length, copied
	CostZeroCopy              // payload borrowed from the host, valid only within the call
	CostPerMember             // one host round trip per key or index
)

var costNames = [...]string{
	CostConstant:  "O(1)",
	CostLinear:    "O(n) copy",
	CostZeroCopy:  "O(1) view",
	CostPerMember: "O(k) host calls",
}

func (c Cost) String() string {
	if int(c) < len(costNames) {
		return costNames[c]
	}
	return "unknown"
}
