package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes one rejected query field
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the 400 response body
type ValidationErrors struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors"`
}

// DashboardQuery is the query string of GET /api/dashboard
type DashboardQuery struct {
	Window string `default:"1y" validate:"omitempty,oneof=1m 3m 6m ytd 1y 2y 3y 5y"`
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	Rows   int    `validate:"gte=0,lte=10000"`
}

// parseDashboardQuery binds, defaults and validates the query
func parseDashboardQuery(values url.Values) (*DashboardQuery, []ValidationError) {
	q := &DashboardQuery{
		Window: strings.ToLower(strings.TrimSpace(values.Get("window"))),
		Start:  strings.TrimSpace(values.Get("start")),
	}
	if raw := values.Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, []ValidationError{{Code: "ERR_NUMERIC", Field: "Rows", Message: "Rows must be an integer"}}
		}
		q.Rows = n
	}

	if err := defaults.Set(q); err != nil {
		return nil, toValidationErrors(err)
	}
	if err := validate.Struct(q); err != nil {
		return nil, toValidationErrors(err)
	}
	return q, nil
}

func toValidationErrors(err error) []ValidationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
