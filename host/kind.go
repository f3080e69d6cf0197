package host

// Kind is the dynamic type tag of a host value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBuffer
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindBuffer:    "buffer",
	KindObject:    "object",
	KindArray:     "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsNullish reports whether the kind is undefined or null.
func (k Kind) IsNullish() bool {
	return k == KindUndefined || k == KindNull
}
