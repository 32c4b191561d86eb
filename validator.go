package truelicense

import "github.com/zzq1314zll/truelicense/internal/messages"

// DefaultValidation enforces the bean invariants and the validity time
// window, returning a ValidationFailure *Error with a catalogue-backed
// message on the first violation found.
type DefaultValidation struct {
	ctx *Context
}

func (d DefaultValidation) Validate(bean License) error {
	if bean.ConsumerAmount <= 0 {
		return newErrorf(ValidationFailure, messages.ConsumerAmountIsNotPositive, bean.ConsumerAmount)
	}
	if bean.ConsumerType == "" {
		return newErrorf(ValidationFailure, messages.ConsumerTypeIsNull)
	}
	if bean.Holder.IsZero() {
		return newErrorf(ValidationFailure, messages.HolderIsNull)
	}
	if bean.Issued.IsZero() {
		return newErrorf(ValidationFailure, messages.IssuedIsNull)
	}
	if bean.Issuer.IsZero() {
		return newErrorf(ValidationFailure, messages.IssuerIsNull)
	}

	now := d.ctx.clock.Now() // don't trust the system clock directly
	if bean.NotAfter != nil && now.After(*bean.NotAfter) {
		return newErrorf(ValidationFailure, messages.LicenseHasExpired, *bean.NotAfter)
	}
	if bean.NotBefore != nil && now.Before(*bean.NotBefore) {
		return newErrorf(ValidationFailure, messages.LicenseIsNotYetValid, *bean.NotBefore)
	}
	if bean.Subject != d.ctx.subject {
		return newErrorf(ValidationFailure, messages.InvalidSubject, bean.Subject, d.ctx.subject)
	}
	return nil
}
