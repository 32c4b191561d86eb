package truelicense

// PermitAllAuthorization clears every operation unconditionally. It is the
// context's default LicenseManagementAuthorization.
type PermitAllAuthorization struct{}

func (PermitAllAuthorization) ClearGenerate(LicenseManager) error  { return nil }
func (PermitAllAuthorization) ClearInstall(LicenseManager) error   { return nil }
func (PermitAllAuthorization) ClearLoad(LicenseManager) error      { return nil }
func (PermitAllAuthorization) ClearVerify(LicenseManager) error    { return nil }
func (PermitAllAuthorization) ClearUninstall(LicenseManager) error { return nil }
