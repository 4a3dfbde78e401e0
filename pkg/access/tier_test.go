package access

import (
	"context"
	"testing"
)

func TestTier_Allows(t *testing.T) {
	tests := []struct {
		have, need Tier
		want       bool
	}{
		{Guest, Guest, true},
		{Guest, Supervisor, false},
		{Supervisor, Supervisor, true},
		{Admin, Supervisor, true},
		{Admin, SuperAdmin, false},
		{SuperAdmin, Admin, true},
	}
	for _, tt := range tests {
		if got := tt.have.Allows(tt.need); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.have, tt.need, got, tt.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	got, err := ParseTier(" superadmin ")
	if err != nil || got != SuperAdmin {
		t.Errorf("ParseTier() = %v, %v", got, err)
	}
	if _, err := ParseTier("root"); err == nil {
		t.Error("ParseTier(root) should fail")
	}
}

func TestContext(t *testing.T) {
	if got := FromContext(context.Background()); got != Guest {
		t.Errorf("FromContext(empty) = %s, want Guest", got)
	}
	ctx := WithTier(context.Background(), Admin)
	if got := FromContext(ctx); got != Admin {
		t.Errorf("FromContext() = %s, want Admin", got)
	}
}
