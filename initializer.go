package truelicense

import "github.com/zzq1314zll/truelicense/internal/messages"

const defaultConsumerType = "User"

// DefaultInitialization fills every unset field of a License with a
// context-derived default. It never overwrites a field already set,
// including one set by a composed first-initializer.
type DefaultInitialization struct {
	ctx *Context
}

func (d DefaultInitialization) Initialize(bean *License) error {
	if bean.ConsumerType == "" {
		bean.ConsumerType = defaultConsumerType
	}
	if bean.Holder.IsZero() {
		bean.Holder = CN(messages.Message(messages.Unknown))
	}
	if bean.Issued.IsZero() {
		bean.Issued = d.ctx.clock.Now() // don't trust the system clock directly
	}
	if bean.Issuer.IsZero() {
		bean.Issuer = CN(d.ctx.subject)
	}
	if bean.Subject == "" {
		bean.Subject = d.ctx.subject
	}
	return nil
}
