package inquiry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rentdom/internal/domain/listings"
	"rentdom/internal/domain/shared/daterange"
	"rentdom/internal/domain/shared/events"
)

var (
	ErrValidation  = errors.New("inquiry: validation failed")
	ErrRateLimited = errors.New("inquiry: too many submissions")
)

const (
	TitleFillField   = "Заполните поле"
	TitleBadPhone    = "Неверный номер телефона"
	TitleBadDates    = "Проверьте даты"
	TitleGenericFail = "Упс! Что-то случилось =("
	MsgTryLater      = "Попробуйте попозже"
)

type Kind string

const (
	KindContact Kind = "contact"
	KindBooking Kind = "booking"
)

type InquiryID string

// Form is the raw submission as the site sends it.
type Form struct {
	Kind       Kind                `json:"kind" validate:"required,oneof=contact booking"`
	Name       string              `json:"name" validate:"required"`
	Phone      string              `json:"phone" validate:"required,phone"`
	Message    string              `json:"message" validate:"required"`
	PropertyID listings.PropertyID `json:"property_id" validate:"required_if=Kind booking"`
	CheckIn    *time.Time          `json:"check_in,omitempty"`
	CheckOut   *time.Time          `json:"check_out,omitempty"`
}

// ValidationError carries the user-facing title and message of the first failed field.
type ValidationError struct {
	Field   string
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("inquiry: %s: %s", strings.ToLower(e.Field), e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Inquiry is a validated submission ready to be relayed.
type Inquiry struct {
	ID            InquiryID
	Kind          Kind
	Name          string
	Phone         string
	Message       string
	PropertyID    listings.PropertyID
	PropertyTitle string
	Address       string
	CheckIn       *time.Time
	CheckOut      *time.Time
	SubmittedAt   time.Time
	events.EventRecorder
}

// Validator checks forms with go-playground/validator and the phone rules of this package.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(validate *validator.Validate) *Validator {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String()).Valid
	})
	return &Validator{validate: validate}
}

// Check trims the free-text fields and validates them in form order.
func (v *Validator) Check(f Form) (Form, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	if f.Kind == "" {
		f.Kind = KindContact
	}

	if err := v.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return f, describe(f, verrs[0])
		}
		return f, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if f.CheckIn != nil && f.CheckOut != nil {
		if _, err := daterange.New(*f.CheckIn, *f.CheckOut); err != nil {
			return f, &ValidationError{Field: "CheckOut", Title: TitleBadDates, Message: "Дата выезда раньше даты заезда"}
		}
	}
	if f.CheckIn == nil && f.CheckOut != nil {
		return f, &ValidationError{Field: "CheckIn", Title: TitleBadDates, Message: "Укажите дату заезда"}
	}
	return f, nil
}

func describe(f Form, fe validator.FieldError) *ValidationError {
	ve := &ValidationError{Field: fe.Field(), Title: TitleFillField}
	switch fe.Field() {
	case "Name":
		ve.Message = "Пожалуйста, укажите ваше имя"
	case "Phone":
		if fe.Tag() == "phone" {
			ve.Title = TitleBadPhone
			ve.Message = ValidatePhone(f.Phone).Message
			if ve.Message == "" {
				ve.Message = MsgPhoneCheckInput
			}
			break
		}
		ve.Message = "Пожалуйста, укажите номер телефона"
	case "Message":
		ve.Message = "Пожалуйста, укажите ваше сообщение"
	case "PropertyID":
		ve.Message = "Пожалуйста, выберите объект"
	default:
		ve.Title = TitleGenericFail
		ve.Message = MsgTryLater
	}
	return ve
}

// NewInquiry builds an inquiry from a checked form and records InquirySubmitted.
func NewInquiry(id InquiryID, f Form, property *listings.Property, now time.Time) *Inquiry {
	inq := &Inquiry{
		ID:          id,
		Kind:        f.Kind,
		Name:        f.Name,
		Phone:       FormatPhone(f.Phone),
		Message:     f.Message,
		PropertyID:  f.PropertyID,
		SubmittedAt: now,
	}
	if f.CheckIn != nil {
		in := daterange.Day(*f.CheckIn)
		inq.CheckIn = &in
	}
	if f.CheckOut != nil {
		out := daterange.Day(*f.CheckOut)
		inq.CheckOut = &out
	}
	if property != nil {
		inq.PropertyID = property.ID
		inq.PropertyTitle = property.Title
		inq.Address = property.Address
	}
	inq.Record(InquirySubmitted{
		InquiryID:  inq.ID,
		Kind:       inq.Kind,
		PropertyID: inq.PropertyID,
		CheckIn:    inq.CheckIn,
		CheckOut:   inq.CheckOut,
		At:         now,
	})
	return inq
}

// Subject is the e-mail subject used by the booking relay.
func (i *Inquiry) Subject() string {
	if i.Kind == KindBooking {
		return "Новая заявка на бронирование - " + i.PropertyTitle
	}
	return "Новое сообщение с сайта"
}

type InquirySubmitted struct {
	InquiryID  InquiryID           `json:"inquiry_id"`
	Kind       Kind                `json:"kind"`
	PropertyID listings.PropertyID `json:"property_id,omitempty"`
	CheckIn    *time.Time          `json:"check_in,omitempty"`
	CheckOut   *time.Time          `json:"check_out,omitempty"`
	At         time.Time           `json:"at"`
}

func (e InquirySubmitted) EventName() string     { return "inquiry.submitted" }
func (e InquirySubmitted) AggregateID() string   { return string(e.InquiryID) }
func (e InquirySubmitted) OccurredAt() time.Time { return e.At }
