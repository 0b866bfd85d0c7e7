package server

import (
	"testing"

	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
)

func TestTools_Registered(t *testing.T) {
	eng, err := engine.New(config.MustDefault())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	got := Tools(eng, nil, nil)
	want := []string{"plan_message", "explain_risk"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Tool.Name != name {
			t.Errorf("tool %d: expected %s, got %s", i, name, got[i].Tool.Name)
		}
		if got[i].Handler == nil {
			t.Errorf("tool %s: nil handler", name)
		}
	}
}

func TestNew(t *testing.T) {
	eng, err := engine.New(config.MustDefault())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if New(eng, nil, nil) == nil {
		t.Fatal("expected non-nil server")
	}
}
