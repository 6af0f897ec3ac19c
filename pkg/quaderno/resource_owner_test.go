package quaderno

import (
	"encoding/json"
	"testing"
)

func TestResourceOwner(t *testing.T) {
	tests := []struct {
		name      string
		response  map[string]any
		accountID string
	}{
		{
			name:      "string account id",
			response:  map[string]any{"account_id": "acct_123", "name": "X"},
			accountID: "acct_123",
		},
		{
			name:      "json number account id",
			response:  map[string]any{"account_id": json.Number("98765")},
			accountID: "98765",
		},
		{
			name:      "float account id",
			response:  map[string]any{"account_id": float64(42)},
			accountID: "42",
		},
		{
			name:      "missing account id",
			response:  map[string]any{"name": "X"},
			accountID: "",
		},
		{
			name:      "nil response",
			response:  nil,
			accountID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := NewResourceOwner(tt.response)
			if got := owner.AccountID(); got != tt.accountID {
				t.Errorf("AccountID() = %q, want %q", got, tt.accountID)
			}
			if got := owner.ID(); got != tt.accountID {
				t.Errorf("ID() = %q, want %q", got, tt.accountID)
			}
			if owner.RawAttributes() == nil {
				t.Error("RawAttributes() should never be nil")
			}
		})
	}
}

func TestResourceOwner_RawAttributes(t *testing.T) {
	response := map[string]any{"account_id": "acct_123", "name": "X"}
	owner := NewResourceOwner(response)

	raw := owner.RawAttributes()
	if len(raw) != 2 {
		t.Fatalf("RawAttributes() returned %d keys, want 2", len(raw))
	}
	if raw["name"] != "X" {
		t.Errorf("RawAttributes()[name] = %v, want X", raw["name"])
	}
	if raw["account_id"] != "acct_123" {
		t.Errorf("RawAttributes()[account_id] = %v, want acct_123", raw["account_id"])
	}
}
