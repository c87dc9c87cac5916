package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsDuplicates(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "billing-drift-reconcile"}, nil)
	registry.Register(&stubJob{name: "outbox-retention"})
	registry.Register(&stubJob{name: "billing-drift-reconcile"})

	names := registry.Names()
	if len(names) != 2 || names[0] != "billing-drift-reconcile" || names[1] != "outbox-retention" {
		t.Fatalf("unexpected jobs %v", names)
	}

	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}
