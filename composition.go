package truelicense

// composeInitialization returns a LicenseInitialization that runs first then,
// for Decorate, second; for Override, first alone. Composition is pure: the
// returned value holds no state beyond first/second/mode.
func composeInitialization(first, second LicenseInitialization, mode CompositionMode) LicenseInitialization {
	if mode == Override {
		return first
	}
	return LicenseInitializationFunc(func(bean *License) error {
		if err := first.Initialize(bean); err != nil {
			return err
		}
		return second.Initialize(bean)
	})
}

// composeValidation is composeInitialization's counterpart for
// LicenseValidation.
func composeValidation(first, second LicenseValidation, mode CompositionMode) LicenseValidation {
	if mode == Override {
		return first
	}
	return LicenseValidationFunc(func(bean License) error {
		if err := first.Validate(bean); err != nil {
			return err
		}
		return second.Validate(bean)
	})
}
