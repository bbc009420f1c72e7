package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Singleton: validator.New cachea metadata de structs.
var v = func() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre json del campo, que es lo que ve el cliente.
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return vv
}()

// FieldError es la primera regla que falló.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return e.Field + ": failed " + e.Rule + "=" + e.Param
	}
	return e.Field + ": failed " + e.Rule
}

// Struct valida s y devuelve *FieldError (primer campo inválido) o nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return err
}

// Var valida un valor suelto contra tag (p.ej. "url,max=2048").
func Var(field string, value any, tag string) error {
	err := v.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: field, Rule: verrs[0].Tag(), Param: verrs[0].Param()}
	}
	return err
}
