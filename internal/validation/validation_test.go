package validation

import "testing"

func TestValidatePincode(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"560001", true},
		{"110092", true},
		{"056001", false}, // cannot start with 0
		{"56001", false},
		{"5600011", false},
		{"56O001", false},
		{"", true}, // optional unless combined with RequireField
	}
	for _, tt := range tests {
		var ve ValidationErrors
		ValidatePincode(&ve, "pincode", tt.value)
		if got := !ve.HasErrors(); got != tt.valid {
			t.Errorf("ValidatePincode(%q) valid = %v, want %v", tt.value, got, tt.valid)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	var ve ValidationErrors
	ValidatePhone(&ve, "phone", "9876543210")
	if ve.HasErrors() {
		t.Errorf("valid phone rejected: %v", ve.Error())
	}

	ve = ValidationErrors{}
	ValidatePhone(&ve, "phone", "98765")
	if !ve.HasErrors() {
		t.Error("short phone accepted")
	}
}

func TestValidateEmail(t *testing.T) {
	var ve ValidationErrors
	ValidateEmail(&ve, "email", "ops@pitstop.example")
	if ve.HasErrors() {
		t.Errorf("valid email rejected: %v", ve.Error())
	}

	ve = ValidationErrors{}
	ValidateEmail(&ve, "email", "not-an-email")
	if !ve.HasErrors() {
		t.Error("bad email accepted")
	}
}

func TestErrorsAccumulatePerField(t *testing.T) {
	var ve ValidationErrors
	RequireField(&ve, "legal_name", "  ")
	ValidateEnum(&ve, "status", "frozen", []string{"active", "suspended"})
	ValidateRange(&ve, "pickup_sla_minutes", 0, 1, 1440)

	if len(ve.Errors) != 3 {
		t.Fatalf("got %d errors: %v", len(ve.Errors), ve.Error())
	}
	if ve.Errors[0].Field != "legal_name" || ve.Errors[1].Field != "status" {
		t.Errorf("field attribution wrong: %+v", ve.Errors)
	}
}
