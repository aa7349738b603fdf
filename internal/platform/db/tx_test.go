package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestValidSchema(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"dialysis", true},
		{"center_01", true},
		{"_private", true},
		{"Dialysis", false},
		{"1center", false},
		{"a-b", false},
		{"a b", false},
		{"drop;table", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSchema(tt.input); got != tt.valid {
			t.Errorf("ValidSchema(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestEnsureSchema_InvalidName(t *testing.T) {
	if _, err := EnsureSchema(context.Background(), nil, "bad-name", nil); err == nil {
		t.Error("expected error for invalid schema name")
	}
}

func TestNewPool_InvalidSchema(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://u:p@localhost:5432/db", "Bad;Schema", 1, 0)
	if err == nil {
		t.Error("expected error for invalid schema")
	}
}
