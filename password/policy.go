package password

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrPolicy is returned by Policy.Check for passwords outside the policy.
var ErrPolicy = errors.New("password policy violation")

// Policy accepts ASCII letters and digits only, with a length in
// [MinLength, MaxLength].
type Policy struct {
	MinLength int
	MaxLength int

	validate *validator.Validate
	tag      string
}

// NewPolicy builds a policy. The default phone login policy is NewPolicy(6, 12).
func NewPolicy(minLength, maxLength int) (*Policy, error) {
	if minLength < 1 {
		return nil, errors.New("password policy min length must be >= 1")
	}
	if maxLength < minLength {
		return nil, errors.New("password policy max length must be >= min length")
	}
	return &Policy{
		MinLength: minLength,
		MaxLength: maxLength,
		validate:  validator.New(),
		tag:       fmt.Sprintf("required,alphanum,min=%d,max=%d", minLength, maxLength),
	}, nil
}

// Check returns nil when password satisfies the policy and an error wrapping
// ErrPolicy otherwise. The password itself never appears in the error.
func (p *Policy) Check(password string) error {
	if err := p.validate.Var(password, p.tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: failed %q rule", ErrPolicy, verrs[0].Tag())
		}
		return ErrPolicy
	}
	return nil
}
