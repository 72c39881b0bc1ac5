package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks struct tags, then the cross-field rules tags cannot express
func Validate(cat *Catalog) error {
	if err := validate.Struct(cat); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return ValidationError{fe.Namespace(), fmt.Sprintf("failed %q (%v)", fe.Tag(), fe.Value())}
		}
		return err
	}

	if len(cat.EquitySeries()) == 0 {
		return ValidationError{"series", "at least one yahoo series is required (trading calendar)"}
	}

	// alias, formula 이름은 전체에서 유일해야 함
	columns := make(map[string]bool, len(cat.Series)+len(cat.Formulas))
	codes := make(map[string]bool, len(cat.Series))
	for _, s := range cat.Series {
		if columns[s.Alias] {
			return ValidationError{"series.alias", fmt.Sprintf("duplicate column %q", s.Alias)}
		}
		columns[s.Alias] = true

		key := string(s.Provider) + ":" + s.Code
		if codes[key] {
			return ValidationError{"series.code", fmt.Sprintf("duplicate %s series %q", s.Provider, s.Code)}
		}
		codes[key] = true
	}

	// 수식 입력은 시계열 또는 앞서 정의된 수식만 참조 가능
	for _, f := range cat.Formulas {
		for _, t := range f.Terms {
			if !columns[t.Column] {
				return ValidationError{
					"formulas." + f.Name,
					fmt.Sprintf("unknown input column %q", t.Column),
				}
			}
		}
		if columns[f.Name] {
			return ValidationError{"formulas.name", fmt.Sprintf("duplicate column %q", f.Name)}
		}
		columns[f.Name] = true
	}

	return nil
}
