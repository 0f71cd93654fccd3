package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/rangershop/pkg/validate"
)

type signupInput struct {
	Username string `json:"username" validate:"required,alpha_dash,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Website  string `json:"website"  validate:"nullable,url"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Username: "john_doe",
		Email:    "john@example.com",
		Password: "secret123",
		Website:  "", // nullable, allowed to be empty
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})
	if !validate.HasErrors(errs) {
		t.Error("expected required errors")
	}
	if _, ok := errs["username"]; !ok {
		t.Error("expected username to be required")
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email to be required")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Quantity int `json:"quantity" validate:"required,gte=1,lte=1000"`
	}
	if errs := validate.Struct(in{Quantity: -3}); !validate.HasErrors(errs) {
		t.Error("expected negative quantity to fail")
	}
	if errs := validate.Struct(in{Quantity: 25}); validate.HasErrors(errs) {
		t.Errorf("expected quantity 25 to pass, got: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"nullable,url"`
	}
	// Empty string is nullable, passes even though it is not a URL.
	if errs := validate.Struct(in{Website: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Website: "not-a-url"}); !validate.HasErrors(errs) {
		t.Error("expected invalid URL to fail")
	}
}

func TestURLRule(t *testing.T) {
	type in struct {
		Site string `json:"site" validate:"required,url"`
	}
	if errs := validate.Struct(in{Site: "https://example.com/p.png"}); validate.HasErrors(errs) {
		t.Errorf("expected valid URL to pass: %v", errs)
	}
	if errs := validate.Struct(in{Site: "not-a-url"}); !validate.HasErrors(errs) {
		t.Error("expected invalid URL to fail")
	}
}

func TestUUIDRule(t *testing.T) {
	type in struct {
		ID string `json:"prod_id" validate:"required,uuid"`
	}
	if errs := validate.Struct(in{ID: "0b2482c5-6f3a-44d4-b503-7f11a0c9b1de"}); validate.HasErrors(errs) {
		t.Errorf("expected valid UUID to pass: %v", errs)
	}
	if errs := validate.Struct(in{ID: "not-a-uuid"}); !validate.HasErrors(errs) {
		t.Error("expected invalid UUID to fail")
	}
}

func TestAlphaDashRule(t *testing.T) {
	type in struct {
		Slug string `json:"slug" validate:"required,alpha_dash"`
	}
	if errs := validate.Struct(in{Slug: "hello-world_123"}); validate.HasErrors(errs) {
		t.Errorf("expected alpha_dash to pass: %v", errs)
	}
	if errs := validate.Struct(in{Slug: "hello world!"}); !validate.HasErrors(errs) {
		t.Error("expected alpha_dash to fail for spaces/punctuation")
	}
}

func TestFirstFailingRuleWins(t *testing.T) {
	type in struct {
		Username string `json:"username" validate:"required,alpha_dash,min=3"`
	}
	errs := validate.Struct(in{Username: "a!"})
	if msg := errs["username"]; msg == "" {
		t.Fatal("expected a validation error")
	} else if got, want := msg, "The username field may only contain letters, numbers, dashes, and underscores."; got != want {
		t.Errorf("expected the alpha_dash message, got %q", got)
	}
}
