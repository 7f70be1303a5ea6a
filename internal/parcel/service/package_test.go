package service

import (
	"context"
	"testing"
	"time"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/parcel/model"
	shiftmodel "fleet-dispatch/internal/shift/model"
)

type fakePackageStore struct {
	packages map[string]*model.Package
}

func newFakePackageStore() *fakePackageStore {
	return &fakePackageStore{packages: make(map[string]*model.Package)}
}

func (f *fakePackageStore) Insert(ctx context.Context, pkg model.Package) (*model.Package, error) {
	pkg.CreatedAt = time.Now()
	f.packages[pkg.ID] = &pkg
	return &pkg, nil
}

func (f *fakePackageStore) GetByID(ctx context.Context, id string) (*model.Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, nil
	}
	copied := *pkg
	return &copied, nil
}

func (f *fakePackageStore) Update(ctx context.Context, pkg *model.Package) error {
	copied := *pkg
	f.packages[pkg.ID] = &copied
	return nil
}

func (f *fakePackageStore) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.packages[id]; !ok {
		return false, nil
	}
	delete(f.packages, id)
	return true, nil
}

type fakeShiftResolver struct {
	shifts map[string]*shiftmodel.Shift
}

func (f *fakeShiftResolver) GetByID(ctx context.Context, id string) (*shiftmodel.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, nil
	}
	return shift, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string) {
	f.actions = append(f.actions, action)
}

var manager = auth.AuthContext{PrincipalID: "u1", Username: "jdoe", Role: authz.RoleManager, AgencyName: "Alpha"}

func newService() (*PackageService, *fakePackageStore, *fakeShiftResolver, *fakeAudit) {
	store := newFakePackageStore()
	shifts := &fakeShiftResolver{shifts: make(map[string]*shiftmodel.Shift)}
	audit := &fakeAudit{}
	return NewPackageService(store, shifts, audit), store, shifts, audit
}

func openShift(agency string) *shiftmodel.Shift {
	return &shiftmodel.Shift{
		ID:         "s1",
		AgencyName: agency,
		StartTime:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func validCreate() CreatePackageRequest {
	return CreatePackageRequest{
		ShiftID:      "s1",
		SenderName:   "A. Sender",
		ReceiverName: "B. Receiver",
		Weight:       2.5,
		Price:        1500,
	}
}

func TestCreatePackageInTransitOnOpenShift(t *testing.T) {
	svc, _, shifts, audit := newService()
	shifts.shifts["s1"] = openShift("Alpha")

	pkg, warning, err := svc.CreatePackage(context.Background(), manager, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pkg.Status != model.StatusInTransit {
		t.Errorf("status = %q, want In Transit", pkg.Status)
	}
	if pkg.DeliveredAt != nil {
		t.Error("deliveredAt must be unset for an in-transit package")
	}
	if warning != "" {
		t.Errorf("unexpected warning %q", warning)
	}
	if len(audit.actions) != 1 {
		t.Errorf("audit entries = %d, want 1", len(audit.actions))
	}
}

func TestCreatePackageDeliveredOnEndedShift(t *testing.T) {
	svc, _, shifts, _ := newService()
	shift := openShift("Alpha")
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	shift.EndTime = &end
	shifts.shifts["s1"] = shift

	pkg, _, err := svc.CreatePackage(context.Background(), manager, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pkg.Status != model.StatusDelivered {
		t.Errorf("status = %q, want Delivered", pkg.Status)
	}
	if pkg.DeliveredAt == nil || !pkg.DeliveredAt.Equal(end) {
		t.Errorf("deliveredAt = %v, want shift end %v", pkg.DeliveredAt, end)
	}
}

func TestCreatePackageCrossAgencyWarns(t *testing.T) {
	svc, _, shifts, _ := newService()
	shifts.shifts["s1"] = openShift("Beta")

	pkg, warning, err := svc.CreatePackage(context.Background(), manager, validCreate())
	if err != nil {
		t.Fatalf("cross-agency create must succeed with a warning, got %v", err)
	}
	if warning != CrossAgencyWarning {
		t.Errorf("warning = %q, want %q", warning, CrossAgencyWarning)
	}
	// The package belongs to the actor's agency, not the shift's.
	if pkg.AgencyName != "Alpha" {
		t.Errorf("agency = %q, want Alpha", pkg.AgencyName)
	}
}

func TestCreatePackageSuperadminNoWarning(t *testing.T) {
	svc, _, shifts, _ := newService()
	shifts.shifts["s1"] = openShift("Beta")
	super := auth.AuthContext{PrincipalID: "root", Role: authz.RoleSuperadmin}

	pkg, warning, err := svc.CreatePackage(context.Background(), super, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if warning != "" {
		t.Errorf("superadmin should not see a cross-agency warning, got %q", warning)
	}
	// An agency-less superadmin inherits the shift's agency.
	if pkg.AgencyName != "Beta" {
		t.Errorf("agency = %q, want Beta", pkg.AgencyName)
	}
}

func TestCreatePackageValidation(t *testing.T) {
	svc, _, shifts, _ := newService()
	shifts.shifts["s1"] = openShift("Alpha")

	req := validCreate()
	req.ShiftID = ""
	if _, _, err := svc.CreatePackage(context.Background(), manager, req); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("missing shiftId: expected Validation, got %v", err)
	}

	req = validCreate()
	req.Price = -10
	if _, _, err := svc.CreatePackage(context.Background(), manager, req); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("negative price: expected Validation, got %v", err)
	}

	req = validCreate()
	req.ShiftID = "missing"
	if _, _, err := svc.CreatePackage(context.Background(), manager, req); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("unknown shift: expected NotFound, got %v", err)
	}
}

func TestCreatePackageFuelForbidden(t *testing.T) {
	svc, _, shifts, _ := newService()
	shifts.shifts["s1"] = openShift("Alpha")
	fuel := auth.AuthContext{PrincipalID: "u9", Role: authz.RoleFuel, AgencyName: "Alpha"}

	if _, _, err := svc.CreatePackage(context.Background(), fuel, validCreate()); !apperr.IsKind(err, apperr.ForbiddenRole) {
		t.Fatalf("expected ForbiddenRole, got %v", err)
	}
}

func seedPackage(store *fakePackageStore) *model.Package {
	pkg := &model.Package{
		ID:         "p1",
		AgencyName: "Alpha",
		ShiftID:    "s1",
		Status:     model.StatusInTransit,
		Price:      1500,
	}
	store.packages[pkg.ID] = pkg
	return pkg
}

func TestUpdatePackageShiftReassignRederives(t *testing.T) {
	svc, store, shifts, _ := newService()
	seedPackage(store)
	shifts.shifts["s1"] = openShift("Alpha")
	ended := openShift("Alpha")
	ended.ID = "s2"
	end := time.Date(2026, 3, 11, 17, 0, 0, 0, time.UTC)
	ended.EndTime = &end
	shifts.shifts["s2"] = ended

	newShift := "s2"
	pkg, warning, err := svc.UpdatePackage(context.Background(), manager, "p1", UpdatePackageRequest{ShiftID: &newShift})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if warning != "" {
		t.Errorf("unexpected warning %q", warning)
	}
	if pkg.Status != model.StatusDelivered {
		t.Errorf("status = %q, want Delivered after moving to an ended shift", pkg.Status)
	}
	if pkg.DeliveredAt == nil || !pkg.DeliveredAt.Equal(end) {
		t.Errorf("deliveredAt = %v, want %v", pkg.DeliveredAt, end)
	}
}

func TestUpdatePackageCrossAgencyReassignWarns(t *testing.T) {
	svc, store, shifts, _ := newService()
	seedPackage(store)
	other := openShift("Beta")
	other.ID = "s2"
	shifts.shifts["s2"] = other

	newShift := "s2"
	_, warning, err := svc.UpdatePackage(context.Background(), manager, "p1", UpdatePackageRequest{ShiftID: &newShift})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if warning != CrossAgencyWarning {
		t.Errorf("warning = %q, want %q", warning, CrossAgencyWarning)
	}
}

func TestUpdatePackagePlainEditNoRederive(t *testing.T) {
	svc, store, _, _ := newService()
	seedPackage(store)

	notes := "fragile"
	pkg, _, err := svc.UpdatePackage(context.Background(), manager, "p1", UpdatePackageRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if pkg.Status != model.StatusInTransit {
		t.Errorf("status = %q, a plain edit must not touch it", pkg.Status)
	}
	if pkg.Notes != "fragile" {
		t.Errorf("notes = %q", pkg.Notes)
	}
}

func TestUpdatePackageCrossTenantDenied(t *testing.T) {
	svc, store, _, _ := newService()
	pkg := seedPackage(store)
	pkg.AgencyName = "Beta"

	notes := "fragile"
	_, _, err := svc.UpdatePackage(context.Background(), manager, "p1", UpdatePackageRequest{Notes: &notes})
	if !apperr.IsKind(err, apperr.ForbiddenCrossTenant) {
		t.Fatalf("expected ForbiddenCrossTenant, got %v", err)
	}
}

func TestUpdateStatusStampsDeliveredAtOnce(t *testing.T) {
	svc, store, _, _ := newService()
	seedPackage(store)
	first := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	pkg, err := svc.UpdateStatus(context.Background(), manager, "p1", model.StatusDelivered, "")
	if err != nil {
		t.Fatalf("status change: %v", err)
	}
	if pkg.DeliveredAt == nil || !pkg.DeliveredAt.Equal(first) {
		t.Fatalf("deliveredAt = %v, want %v", pkg.DeliveredAt, first)
	}

	// Re-entering Delivered later keeps the original stamp.
	svc.now = func() time.Time { return first.Add(2 * time.Hour) }
	pkg, err = svc.UpdateStatus(context.Background(), manager, "p1", model.StatusDelivered, "")
	if err != nil {
		t.Fatalf("second status change: %v", err)
	}
	if !pkg.DeliveredAt.Equal(first) {
		t.Errorf("deliveredAt restamped to %v, want %v", pkg.DeliveredAt, first)
	}
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	svc, store, _, _ := newService()
	seedPackage(store)

	_, err := svc.UpdateStatus(context.Background(), manager, "p1", model.Status("Lost"), "")
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation, got %v", err)
	}
}

func TestDeletePackage(t *testing.T) {
	svc, store, _, audit := newService()
	seedPackage(store)

	if err := svc.DeletePackage(context.Background(), manager, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.packages) != 0 {
		t.Error("package should be removed")
	}
	if len(audit.actions) != 1 {
		t.Errorf("audit entries = %d, want 1", len(audit.actions))
	}

	if err := svc.DeletePackage(context.Background(), manager, "p1"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
}
