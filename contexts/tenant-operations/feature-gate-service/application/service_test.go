package application_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"backoffice/contexts/tenant-operations/feature-gate-service/adapters/memory"
	"backoffice/contexts/tenant-operations/feature-gate-service/application"
	domainerrors "backoffice/contexts/tenant-operations/feature-gate-service/domain/errors"
	"backoffice/contexts/tenant-operations/feature-gate-service/domain/services"
)

func newService(t *testing.T) (application.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return application.Service{Repo: store, Clock: store, IDGen: store}, store
}

func TestDefineFeatureSlugAndDuplicates(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	first, err := service.DefineFeature(ctx, "Advanced Reporting", "analytics", nil)
	if err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if first.Slug != "advanced-reporting" {
		t.Fatalf("unexpected slug %q", first.Slug)
	}
	if !first.IsActive {
		t.Fatal("new definition should be active")
	}

	if _, err := service.DefineFeature(ctx, "Advanced Reporting", "analytics", nil); !errors.Is(err, domainerrors.ErrDuplicateFeature) {
		t.Fatalf("expected ErrDuplicateFeature, got %v", err)
	}

	// Different name slugifying to the same base gets a suffix.
	second, err := service.DefineFeature(ctx, "Advanced  Reporting!", "analytics", nil)
	if err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if second.Slug != "advanced-reporting-1" {
		t.Fatalf("expected advanced-reporting-1, got %q", second.Slug)
	}
}

func TestEnableDisableLifecycle(t *testing.T) {
	ctx := context.Background()
	service, store := newService(t)
	store.SetNow(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))

	if _, err := service.DefineFeature(ctx, "Payroll", "finance", nil); err != nil {
		t.Fatalf("define failed: %v", err)
	}

	enabled, err := service.IsEnabled(ctx, "tenant-1", "payroll")
	if err != nil {
		t.Fatalf("gate check failed: %v", err)
	}
	if enabled {
		t.Fatal("feature without assignment should be disabled")
	}

	assignment, err := service.Enable(ctx, "tenant-1", "payroll", "admin-1")
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if !assignment.IsEnabled || assignment.EnabledAt == nil || assignment.EnabledBy != "admin-1" {
		t.Fatalf("unexpected assignment state: %+v", assignment)
	}

	enabled, err = service.IsEnabled(ctx, "tenant-1", "payroll")
	if err != nil {
		t.Fatalf("gate check failed: %v", err)
	}
	if !enabled {
		t.Fatal("expected enabled gate")
	}

	// Other tenants stay isolated.
	enabled, err = service.IsEnabled(ctx, "tenant-2", "payroll")
	if err != nil {
		t.Fatalf("gate check failed: %v", err)
	}
	if enabled {
		t.Fatal("tenant-2 should not be enabled")
	}

	disabled, err := service.Disable(ctx, "tenant-1", "payroll")
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if disabled.IsEnabled || disabled.EnabledAt != nil || disabled.EnabledBy != "" {
		t.Fatalf("disable did not clear stamps: %+v", disabled)
	}
}

func TestDisableIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.DefineFeature(ctx, "Payroll", "finance", nil); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if _, err := service.Enable(ctx, "tenant-1", "payroll", "admin-1"); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if _, err := service.UpdateSettings(ctx, "tenant-1", "payroll", map[string]any{"max_users": 50}); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	first, err := service.Disable(ctx, "tenant-1", "payroll")
	if err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	second, err := service.Disable(ctx, "tenant-1", "payroll")
	if err != nil {
		t.Fatalf("second disable failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("double disable changed state:\nfirst  %+v\nsecond %+v", first, second)
	}

	// Settings survive the disable; re-enabling restores prior configuration.
	restored, err := service.Enable(ctx, "tenant-1", "payroll", "admin-2")
	if err != nil {
		t.Fatalf("re-enable failed: %v", err)
	}
	if restored.Settings["max_users"] != 50 {
		t.Fatalf("settings override lost across disable: %+v", restored.Settings)
	}

	// Disabling a feature never assigned to the tenant is a no-op too.
	if _, err := service.Disable(ctx, "tenant-9", "payroll"); err != nil {
		t.Fatalf("disable without assignment failed: %v", err)
	}
}

func TestEffectiveSettingsShallowMerge(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	defaults := map[string]any{"require_approval": true, "max_users": 100}
	if _, err := service.DefineFeature(ctx, "Team Seats", "workforce", defaults); err != nil {
		t.Fatalf("define failed: %v", err)
	}

	// Without an assignment the defaults come back untouched.
	settings, err := service.EffectiveSettings(ctx, "tenant-1", "team-seats")
	if err != nil {
		t.Fatalf("effective settings failed: %v", err)
	}
	if !reflect.DeepEqual(settings, defaults) {
		t.Fatalf("expected defaults, got %+v", settings)
	}

	if _, err := service.UpdateSettings(ctx, "tenant-1", "team-seats", map[string]any{"max_users": 50}); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	settings, err = service.EffectiveSettings(ctx, "tenant-1", "team-seats")
	if err != nil {
		t.Fatalf("effective settings failed: %v", err)
	}
	want := map[string]any{"require_approval": true, "max_users": 50}
	if !reflect.DeepEqual(settings, want) {
		t.Fatalf("merge mismatch: want %+v, got %+v", want, settings)
	}
}

func TestMergeSettingsDoesNotMutateInputs(t *testing.T) {
	defaults := map[string]any{"a": 1, "b": 2}
	override := map[string]any{"b": 3}
	merged := services.MergeSettings(defaults, override)
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if defaults["b"] != 2 {
		t.Fatal("defaults map mutated")
	}
}

func TestRetiredFeatureGatesClosed(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.DefineFeature(ctx, "Beta Tools", "labs", nil); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if _, err := service.Enable(ctx, "tenant-1", "beta-tools", "admin-1"); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if err := service.RetireFeature(ctx, "beta-tools"); err != nil {
		t.Fatalf("retire failed: %v", err)
	}

	enabled, err := service.IsEnabled(ctx, "tenant-1", "beta-tools")
	if err != nil {
		t.Fatalf("gate check failed: %v", err)
	}
	if enabled {
		t.Fatal("retired definition should answer false")
	}
	if _, err := service.Enable(ctx, "tenant-2", "beta-tools", "admin-1"); !errors.Is(err, domainerrors.ErrFeatureInactive) {
		t.Fatalf("expected ErrFeatureInactive, got %v", err)
	}
}

func TestUnknownFeatureGate(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	enabled, err := service.IsEnabled(ctx, "tenant-1", "no-such-feature")
	if err != nil {
		t.Fatalf("gate check failed: %v", err)
	}
	if enabled {
		t.Fatal("unknown feature should answer false")
	}
	if _, err := service.EffectiveSettings(ctx, "tenant-1", "no-such-feature"); !errors.Is(err, domainerrors.ErrFeatureNotFound) {
		t.Fatalf("expected ErrFeatureNotFound, got %v", err)
	}
}
