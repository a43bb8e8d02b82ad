package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "parent@example.com", false},
		{"valid with plus", "parent+kids@example.com", false},
		{"empty", "", true},
		{"missing at", "parentexample.com", true},
		{"missing domain", "parent@", true},
		{"missing tld", "parent@example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("8-char password should pass: %v", err)
	}
	if err := ValidatePassword("1234567"); err == nil {
		t.Error("7-char password should fail")
	}
	if err := ValidatePassword(""); err == nil {
		t.Error("empty password should fail")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Ben", false},
		{"two chars", "Bo", false},
		{"one char", "B", true},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePointValue(t *testing.T) {
	if err := ValidatePointValue(1); err != nil {
		t.Errorf("positive value should pass: %v", err)
	}
	if err := ValidatePointValue(0); err == nil {
		t.Error("zero should fail")
	}
	if err := ValidatePointValue(-5); err == nil {
		t.Error("negative should fail")
	}
}

func TestValidateReason(t *testing.T) {
	if err := ValidateReason("lost library book"); err != nil {
		t.Errorf("non-empty reason should pass: %v", err)
	}
	if err := ValidateReason("   "); err == nil {
		t.Error("blank reason should fail")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "email", Message: "email is required"}
	if err.Error() != "email: email is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}
