package truelicense

import (
	"testing"
	"time"
)

func validLicense(ctx *Context) License {
	return License{
		ConsumerAmount: 1,
		ConsumerType:   "User",
		Holder:         CN("Alice"),
		Issuer:         CN(ctx.subject),
		Issued:         ctx.clock.Now(),
		Subject:        ctx.subject,
	}
}

func TestDefaultValidationAcceptsWellFormedBean(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	if err := ctx.Validation().Validate(validLicense(ctx)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultValidationRejectsNonPositiveConsumerAmount(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.ConsumerAmount = 0
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsEmptyConsumerType(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.ConsumerType = ""
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsZeroHolder(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.Holder = DistinguishedName{}
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsZeroIssued(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.Issued = time.Time{}
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsZeroIssuer(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.Issuer = DistinguishedName{}
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsExpiredLicense(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	past := ctx.clock.Now().Add(-time.Hour)
	bean.NotAfter = &past
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsNotYetValidLicense(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	future := ctx.clock.Now().Add(time.Hour)
	bean.NotBefore = &future
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestDefaultValidationRejectsWrongSubject(t *testing.T) {
	ctx := testContext(t, "acme-widgets")
	bean := validLicense(ctx)
	bean.Subject = "other-product"
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure", Cause(err))
	}
}

func TestValidationComposesWithUserHook(t *testing.T) {
	ctx, err := fullContextBuilder().
		Validation(LicenseValidationFunc(func(bean License) error {
			if bean.ConsumerAmount > 100 {
				return newError(ValidationFailure, "consumer amount too large")
			}
			return nil
		})).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bean := validLicense(ctx)
	bean.ConsumerAmount = 101
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure from the user hook", Cause(err))
	}

	bean.ConsumerAmount = 0
	if err := ctx.Validation().Validate(bean); !IsKind(err, ValidationFailure) {
		t.Errorf("kind = %v, want ValidationFailure from the built-in validator", Cause(err))
	}
}
