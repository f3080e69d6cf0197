package decl

import (
	stderrors "errors"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

func elemOf(t value.Type) (value.Type, error) {
	if t.Elem == nil {
		return value.Type{}, unsupported(t, "array without element type")
	}
	return *t.Elem, nil
}

func unsupported(t value.Type, detail string) error {
	return errors.New(errors.PhaseDeclare, errors.KindUnsupportedType).
		HostType(t.String()).
		Detail(detail).
		Build()
}

func located(fn value.Function, err error) error {
	var ce *errors.Error
	if !stderrors.As(err, &ce) {
		return err
	}
	c := *ce
	c.Path = append([]string{fn.Name}, c.Path...)
	return &c
}
