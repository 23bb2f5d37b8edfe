package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

// Validator checks structs against their binding tags.
type Validator interface {
	Validate(interface{}) error
}

type structValidator struct {
	v *validator.Validate
}

// New returns a validator that reads the same binding tags gin uses.
func New() Validator {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return &structValidator{v: v}
}

func (s *structValidator) Validate(obj interface{}) error {
	if err := s.v.Struct(obj); err != nil {
		return apperrors.BadRequest(Message(err), err)
	}
	return nil
}

var customValidators = map[string]validator.Func{
	"discipline": func(fl validator.FieldLevel) bool {
		_, err := model.ParseDiscipline(fl.Field().String())
		return err == nil
	},
	"requerimientos": func(fl validator.FieldLevel) bool {
		_, err := model.ParseRequirements(fl.Field().String())
		return err == nil
	},
	"patient_status": func(fl validator.FieldLevel) bool {
		_, err := model.ParsePatientStatus(fl.Field().String())
		return err == nil
	},
	"assignment_status": func(fl validator.FieldLevel) bool {
		_, err := model.ParseAssignmentStatus(fl.Field().String())
		return err == nil
	},
	"agency_status": func(fl validator.FieldLevel) bool {
		_, err := model.ParseAgencyStatus(fl.Field().String())
		return err == nil
	},
	"docs_flag": func(fl validator.FieldLevel) bool {
		_, err := model.ParseDocsFlag(fl.Field().String())
		return err == nil
	},
	"therapist_category": func(fl validator.FieldLevel) bool {
		_, err := model.ParseTherapistCategory(fl.Field().String())
		return err == nil
	},
}

// Register installs the domain tags and reports fields by their json name.
func Register(v *validator.Validate) error {
	for tag, fn := range customValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// RegisterGin installs the domain tags on gin's binding engine.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return Register(v)
}

func disciplineList() string {
	codes := make([]string, len(model.Disciplines))
	for i, d := range model.Disciplines {
		codes[i] = string(d)
	}
	return strings.Join(codes, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", field)
	case "email":
		return fmt.Sprintf("El campo %s debe ser un email válido", field)
	case "gt":
		return fmt.Sprintf("El campo %s debe ser mayor que %s", field, fe.Param())
	case "discipline", "requerimientos":
		return fmt.Sprintf("El campo %s debe contener disciplinas válidas (%s)", field, disciplineList())
	case "patient_status", "assignment_status", "agency_status", "docs_flag", "therapist_category":
		return fmt.Sprintf("Valor inválido para %s: %v", field, fe.Value())
	}
	return fmt.Sprintf("El campo %s no es válido", field)
}

// Message renders a binding or validation error as a single user facing
// sentence. Non validation errors are returned as is.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = fieldMessage(fe)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
