package host

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/hostbridge/errors"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// NewString encodes s as UTF-16LE and stores it as a string value.
// Invalid UTF-8 in s is an encoding error.
func (h *Heap) NewString(s string) (Ref, error) {
	if !utf8.ValidString(s) {
		return Invalid, errors.InvalidUTF8(errors.PhaseHost, nil, []byte(s))
	}
	le, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return Invalid, errors.Wrap(errors.PhaseHost, errors.KindEncoding, err, "encode utf16 string")
	}
	return h.NewStringUTF16(le)
}

// NewStringUTF16 stores raw UTF-16LE bytes as a string value. The code units
// are not validated; host strings may hold unpaired surrogates.
func (h *Heap) NewStringUTF16(le []byte) (Ref, error) {
	if len(le)%2 != 0 {
		return Invalid, errors.InvalidInput(errors.PhaseHost, "utf16 payload has odd length")
	}
	ptr, size, err := h.store(le)
	if err != nil {
		return Invalid, err
	}
	return h.alloc(entry{kind: KindString, ptr: ptr, size: size}), nil
}

// NewStringUnits stores code units as a string value without validation.
func (h *Heap) NewStringUnits(units []uint16) (Ref, error) {
	le := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(le[2*i:], u)
	}
	return h.NewStringUTF16(le)
}

// StringLen returns the length of a string in UTF-16 code units.
func (h *Heap) StringLen(r Ref) (int, error) {
	e, err := h.expect(r, KindString)
	if err != nil {
		return 0, err
	}
	return int(e.size / 2), nil
}

// StringUTF16 returns a copy of the string's code units.
func (h *Heap) StringUTF16(r Ref) ([]uint16, error) {
	e, err := h.expect(r, KindString)
	if err != nil {
		return nil, err
	}
	raw, err := h.mem.Read(e.ptr, e.size)
	if err != nil {
		return nil, err
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return units, nil
}

// String decodes a string value to UTF-8. Unpaired surrogates fail with an
// encoding error naming the offending code unit.
func (h *Heap) String(r Ref) (string, error) {
	e, err := h.expect(r, KindString)
	if err != nil {
		return "", err
	}
	raw, err := h.mem.Read(e.ptr, e.size)
	if err != nil {
		return "", err
	}
	if err := CheckUTF16(raw); err != nil {
		return "", err
	}
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(errors.PhaseHost, errors.KindEncoding, err, "decode utf16 string")
	}
	return string(out), nil
}

// CheckUTF16 validates that le holds well-formed UTF-16LE.
func CheckUTF16(le []byte) error {
	n := len(le) / 2
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(le[2*i:])
		switch {
		case !utf16.IsSurrogate(rune(u)):
			continue
		case u >= 0xDC00:
			return errors.InvalidUTF16(errors.PhaseHost, nil, i, u)
		case i+1 >= n:
			return errors.InvalidUTF16(errors.PhaseHost, nil, i, u)
		}
		next := binary.LittleEndian.Uint16(le[2*(i+1):])
		if next < 0xDC00 || next > 0xDFFF {
			return errors.InvalidUTF16(errors.PhaseHost, nil, i, u)
		}
		i++
	}
	return nil
}
