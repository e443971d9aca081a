package plan

import "testing"

func TestPropertyName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"_firstName", "FirstName"},
		{"_myCounter", "MyCounter"},
		{"counter", "Counter"},
		{"_a", "A"},
		{"a", "A"},
		{"_URL", "URL"},
		{"alreadyUpper", "AlreadyUpper"},
		{"__x", "_x"},
		{"_", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := PropertyName(tt.input); got != tt.want {
			t.Errorf("PropertyName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBackingName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"_firstName", "firstName"},
		{"_FirstName", "firstName"},
		{"Counter", "counter"},
		{"counter", "counter"},
		{"_", ""},
	}

	for _, tt := range tests {
		if got := BackingName(tt.input); got != tt.want {
			t.Errorf("BackingName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProxyPropertyName(t *testing.T) {
	tests := []struct {
		source string
		custom string
		want   string
	}{
		{"City", "", "City"},
		{"address.City", "", "City"},
		{"engine.block.Serial", "", "Serial"},
		{"address.City", "HomeCity", "HomeCity"},
		{"P2", "Bytes", "Bytes"},
		{"city", "", "city"},
	}

	for _, tt := range tests {
		if got := ProxyPropertyName(tt.source, tt.custom); got != tt.want {
			t.Errorf("ProxyPropertyName(%q, %q) = %q, want %q",
				tt.source, tt.custom, got, tt.want)
		}
	}
}

func TestValidPropertyPath(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"City", true},
		{"address.City", true},
		{"engine.block.Serial", true},
		{"_private.Value", true},
		{"", false},
		{".", false},
		{"address.", false},
		{".City", false},
		{"address..City", false},
		{"address.1city", false},
		{"bad path", false},
	}

	for _, tt := range tests {
		if got := ValidPropertyPath(tt.source); got != tt.want {
			t.Errorf("ValidPropertyPath(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}
