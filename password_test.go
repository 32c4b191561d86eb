package truelicense

import "testing"

func TestMinimumPasswordPolicyRejectsShortPassword(t *testing.T) {
	err := MinimumPasswordPolicy{}.Check(NewPlainPasswordProtection([]byte("Ab1")))
	if !IsKind(err, PasswordPolicyFailure) {
		t.Errorf("kind = %v, want PasswordPolicyFailure", Cause(err))
	}
}

func TestMinimumPasswordPolicyRejectsSingleCharacterClass(t *testing.T) {
	err := MinimumPasswordPolicy{}.Check(NewPlainPasswordProtection([]byte("aaaaaaaaaa")))
	if !IsKind(err, PasswordPolicyFailure) {
		t.Errorf("kind = %v, want PasswordPolicyFailure", Cause(err))
	}
}

func TestMinimumPasswordPolicyAcceptsMixedPassword(t *testing.T) {
	if err := MinimumPasswordPolicy{}.Check(NewPlainPasswordProtection([]byte("Abcdef12"))); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckedPasswordProtectionOnlyEnforcesOnWrite(t *testing.T) {
	weak := NewPlainPasswordProtection([]byte("weak"))
	checked := newCheckedPasswordProtection(MinimumPasswordPolicy{}, weak)

	if _, err := checked.Password(PasswordRead); err != nil {
		t.Errorf("READ usage: unexpected error: %v", err)
	}
	if _, err := checked.Password(PasswordWrite); !IsKind(err, PasswordPolicyFailure) {
		t.Errorf("WRITE usage: kind = %v, want PasswordPolicyFailure", Cause(err))
	}
}

func TestPlainPasswordProtectionReturnsCopy(t *testing.T) {
	p := NewPlainPasswordProtection([]byte("Abcdef12"))
	secret, err := p.Password(PasswordRead)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}
	secret[0] = 'X'
	again, err := p.Password(PasswordRead)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}
	if again[0] == 'X' {
		t.Error("mutating a returned secret affected the stored copy")
	}
}
