package chatbot

import "testing"

func TestIntegrationHasType(t *testing.T) {
	tests := []struct {
		name string
		in   Integration
		want bool
	}{
		{name: "missing", in: Integration{"url": "https://example.com"}, want: false},
		{name: "nil", in: Integration{"type": nil}, want: false},
		{name: "empty string", in: Integration{"type": ""}, want: false},
		{name: "false", in: Integration{"type": false}, want: false},
		{name: "zero", in: Integration{"type": float64(0)}, want: false},
		{name: "empty list", in: Integration{"type": []any{}}, want: false},
		{name: "named", in: Integration{"type": "slack"}, want: true},
		{name: "whitespace", in: Integration{"type": "  "}, want: true},
		{name: "number", in: Integration{"type": 1}, want: true},
		{name: "true", in: Integration{"type": true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.HasType(); got != tt.want {
				t.Errorf("HasType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntegrationTypeTrims(t *testing.T) {
	if got := (Integration{"type": " slack "}).Type(); got != IntegrationSlack {
		t.Errorf("Type() = %q", got)
	}
	if got := (Integration{"type": 1}).Type(); got != "" {
		t.Errorf("Type() = %q, want empty for non-string", got)
	}
}
