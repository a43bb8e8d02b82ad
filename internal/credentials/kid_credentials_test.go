package credentials

import "testing"

func TestGenerateKidPIN(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pin, err := GenerateKidPIN()
		if err != nil {
			t.Fatalf("GenerateKidPIN failed: %v", err)
		}
		if len(pin) != 4 {
			t.Errorf("PIN length = %d, want 4", len(pin))
		}
		for _, c := range pin {
			if c < '0' || c > '9' {
				t.Errorf("PIN %q contains non-digit %q", pin, c)
			}
		}
		seen[pin] = true
	}

	// With 10000 possible PINs, 100 draws should not all collide.
	if len(seen) < 2 {
		t.Error("PINs should vary across generations")
	}
}
