package service

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// AddCartItemInput sets the quantity of a variant in the cart
type AddCartItemInput struct {
	ProductVariantID string `json:"productVariantID" validate:"required"`
	Quantity         int    `json:"quantity" validate:"gt=0"`
}

type SetCartAddressInput struct {
	AddressID string `json:"addressID" validate:"required"`
}

type SetCartCardInput struct {
	CardID string `json:"cardID" validate:"required"`
}

// CreateOrderInput places an order directly, bypassing the cart.
// Variants maps variant IDs to quantities.
type CreateOrderInput struct {
	Variants  map[string]int `json:"variants" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	AddressID string         `json:"addressID" validate:"required"`
	CardID    string         `json:"cardID" validate:"required"`
}

// UpdateProfileInput only sends the fields that were provided
type UpdateProfileInput struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type CreateAddressInput struct {
	Name     string  `json:"name" validate:"required"`
	Street1  string  `json:"street1" validate:"required"`
	Street2  *string `json:"street2,omitempty"`
	City     string  `json:"city" validate:"required"`
	Province *string `json:"province,omitempty"`
	Country  string  `json:"country" validate:"required,len=2,alpha"`
	Zip      string  `json:"zip" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

type CreateCardInput struct {
	Token string `json:"token" validate:"required"`
}

type CreateSubscriptionInput struct {
	ProductVariantID string        `json:"productVariantID" validate:"required"`
	Quantity         int           `json:"quantity" validate:"gt=0"`
	AddressID        string        `json:"addressID" validate:"required"`
	CardID           string        `json:"cardID" validate:"required"`
	Schedule         ScheduleInput `json:"schedule"`
}

type ScheduleInput struct {
	Type     domain.ScheduleType `json:"type" validate:"required,oneof=fixed weekly"`
	Interval *int                `json:"interval,omitempty" validate:"omitempty,gt=0"`
}

func (in AddCartItemInput) Validate() error    { return validateStruct(in) }
func (in SetCartAddressInput) Validate() error { return validateStruct(in) }
func (in SetCartCardInput) Validate() error    { return validateStruct(in) }
func (in CreateOrderInput) Validate() error    { return validateStruct(in) }
func (in UpdateProfileInput) Validate() error  { return validateStruct(in) }
func (in CreateAddressInput) Validate() error  { return validateStruct(in) }
func (in CreateCardInput) Validate() error     { return validateStruct(in) }

// Validate also enforces that weekly schedules carry an interval, which the
// struct tags cannot express on their own.
func (in CreateSubscriptionInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Schedule.Type.RequiresInterval() && in.Schedule.Interval == nil {
		return errors.NewValidation("schedule.interval", "is required when schedule type is %q", in.Schedule.Type)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the input schema
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidation("", "%v", err)
	}

	first := fieldErrs[0]
	return &errors.ValidationError{
		Field:   fieldPath(first.Namespace()),
		Message: describeTag(first),
	}
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidation(field, "is required")
	}
	return nil
}
