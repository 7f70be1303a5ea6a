package service

import (
	"context"
	"testing"
	"time"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
	fleetmodel "fleet-dispatch/internal/fleet/model"
	"fleet-dispatch/internal/shift/model"
)

type fakeShiftStore struct {
	shifts  map[string]*model.Shift
	updates int
	deletes int
}

func newFakeShiftStore() *fakeShiftStore {
	return &fakeShiftStore{shifts: make(map[string]*model.Shift)}
}

func (f *fakeShiftStore) Insert(ctx context.Context, shift model.Shift) (*model.Shift, error) {
	shift.CreatedAt = time.Now()
	f.shifts[shift.ID] = &shift
	return &shift, nil
}

func (f *fakeShiftStore) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, nil
	}
	copied := *shift
	return &copied, nil
}

func (f *fakeShiftStore) Update(ctx context.Context, shift *model.Shift) error {
	f.updates++
	copied := *shift
	f.shifts[shift.ID] = &copied
	return nil
}

func (f *fakeShiftStore) Delete(ctx context.Context, id string) (bool, error) {
	f.deletes++
	if _, ok := f.shifts[id]; !ok {
		return false, nil
	}
	delete(f.shifts, id)
	return true, nil
}

func (f *fakeShiftStore) ListByAgency(ctx context.Context, agencyName string) ([]model.Shift, error) {
	out := []model.Shift{}
	for _, s := range f.shifts {
		if s.AgencyName == agencyName {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeDrivers struct {
	driver *fleetmodel.Driver
}

func (f *fakeDrivers) GetDriver(ctx context.Context, agencyName, nameOrID string) (*fleetmodel.Driver, error) {
	return f.driver, nil
}

type fakeSync struct {
	assigned  int
	completed int
	actualEnd int
}

func (f *fakeSync) OnShiftAssigned(ctx context.Context, shift *model.Shift)     { f.assigned++ }
func (f *fakeSync) OnShiftCompleted(ctx context.Context, shift *model.Shift)    { f.completed++ }
func (f *fakeSync) OnActualEndRecorded(ctx context.Context, shift *model.Shift) { f.actualEnd++ }

type fakeNotifier struct {
	assigned int
	updated  int
	changed  []string
}

func (f *fakeNotifier) ShiftAssigned(ctx context.Context, shift *model.Shift, driver *fleetmodel.Driver) {
	f.assigned++
}

func (f *fakeNotifier) ShiftUpdated(ctx context.Context, shift *model.Shift, changedFields []string) {
	f.updated++
	f.changed = changedFields
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string) {
	f.actions = append(f.actions, action)
}

type fixture struct {
	store    *fakeShiftStore
	drivers  *fakeDrivers
	sync     *fakeSync
	notifier *fakeNotifier
	audit    *fakeAudit
	svc      *ShiftService
}

func newFixture() *fixture {
	f := &fixture{
		store:    newFakeShiftStore(),
		drivers:  &fakeDrivers{},
		sync:     &fakeSync{},
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}
	f.svc = NewShiftService(f.store, f.drivers, f.sync, f.notifier, f.audit)
	return f
}

var manager = auth.AuthContext{PrincipalID: "u1", Username: "jdoe", Role: authz.RoleManager, AgencyName: "Alpha"}

func validCreate() CreateShiftRequest {
	return CreateShiftRequest{
		PlateNumber: "RAB123A",
		DriverName:  "J. Doe",
		Origin:      "Kigali",
		Destination: "Huye",
		Date:        "2026-03-10",
		StartTime:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestCreateShiftDefaultsToActorAgency(t *testing.T) {
	f := newFixture()
	f.drivers.driver = &fleetmodel.Driver{Names: "J. Doe", AgencyName: "Alpha", Phone: "0788"}

	shift, err := f.svc.CreateShift(context.Background(), manager, validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shift.AgencyName != "Alpha" {
		t.Errorf("agency = %q, want Alpha", shift.AgencyName)
	}
	if f.sync.assigned != 1 {
		t.Errorf("assignment sync runs = %d, want 1", f.sync.assigned)
	}
	if f.notifier.assigned != 1 {
		t.Errorf("driver notification runs = %d, want 1", f.notifier.assigned)
	}
	if len(f.audit.actions) != 1 {
		t.Errorf("audit entries = %d, want 1", len(f.audit.actions))
	}
}

func TestCreateShiftCrossTenantDenied(t *testing.T) {
	f := newFixture()
	req := validCreate()
	req.AgencyName = "Beta"

	_, err := f.svc.CreateShift(context.Background(), manager, req)
	if !apperr.IsKind(err, apperr.ForbiddenCrossTenant) {
		t.Fatalf("expected ForbiddenCrossTenant, got %v", err)
	}
	if len(f.store.shifts) != 0 {
		t.Error("no shift may be persisted on a denied request")
	}
}

func TestCreateShiftSuperadminExplicitAgency(t *testing.T) {
	f := newFixture()
	super := auth.AuthContext{PrincipalID: "root", Role: authz.RoleSuperadmin}
	req := validCreate()
	req.AgencyName = "Beta"

	shift, err := f.svc.CreateShift(context.Background(), super, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shift.AgencyName != "Beta" {
		t.Errorf("agency = %q, want Beta", shift.AgencyName)
	}
}

func TestCreateShiftFuelForbidden(t *testing.T) {
	f := newFixture()
	fuel := auth.AuthContext{PrincipalID: "u9", Role: authz.RoleFuel, AgencyName: "Alpha"}

	_, err := f.svc.CreateShift(context.Background(), fuel, validCreate())
	if !apperr.IsKind(err, apperr.ForbiddenRole) {
		t.Fatalf("expected ForbiddenRole, got %v", err)
	}
}

func TestCreateShiftValidation(t *testing.T) {
	f := newFixture()
	mutations := []func(*CreateShiftRequest){
		func(r *CreateShiftRequest) { r.PlateNumber = "" },
		func(r *CreateShiftRequest) { r.DriverName = "" },
		func(r *CreateShiftRequest) { r.Origin = "" },
		func(r *CreateShiftRequest) { r.Destination = "" },
		func(r *CreateShiftRequest) { r.Date = "" },
		func(r *CreateShiftRequest) { r.StartTime = time.Time{} },
	}

	for i, mutate := range mutations {
		req := validCreate()
		mutate(&req)
		if _, err := f.svc.CreateShift(context.Background(), manager, req); !apperr.IsKind(err, apperr.Validation) {
			t.Errorf("case %d: expected Validation, got %v", i, err)
		}
	}
}

func TestCreateShiftUnreachableDriverSkipsNotification(t *testing.T) {
	f := newFixture()
	f.drivers.driver = &fleetmodel.Driver{Names: "J. Doe", AgencyName: "Alpha"} // no phone, no email

	if _, err := f.svc.CreateShift(context.Background(), manager, validCreate()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.notifier.assigned != 0 {
		t.Error("unreachable driver must not be notified")
	}
}

func seedShift(f *fixture) *model.Shift {
	shift := &model.Shift{
		ID:          "s1",
		AgencyName:  "Alpha",
		PlateNumber: "RAB123A",
		DriverName:  "J. Doe",
		Origin:      "Kigali",
		Destination: "Huye",
		Date:        "2026-03-10",
		StartTime:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	f.store.shifts[shift.ID] = shift
	return shift
}

func TestUpdateShiftFirstEndTimeTriggersCompletionSync(t *testing.T) {
	f := newFixture()
	seedShift(f)

	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	newDest := "Musanze"
	// endTime alongside an unrelated edit must still trigger the sync.
	updated, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{
		EndTime:     &end,
		Destination: &newDest,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.sync.completed != 1 {
		t.Errorf("completion sync runs = %d, want 1", f.sync.completed)
	}
	if f.sync.actualEnd != 0 {
		t.Errorf("checkpoint sync runs = %d, want 0", f.sync.actualEnd)
	}
	if updated.Destination != "Musanze" {
		t.Errorf("destination = %q, want Musanze", updated.Destination)
	}
}

func TestUpdateShiftEndTimeAlreadySetNoResync(t *testing.T) {
	f := newFixture()
	shift := seedShift(f)
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	shift.EndTime = &end

	later := end.Add(time.Hour)
	if _, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{EndTime: &later}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.sync.completed != 0 {
		t.Error("only the first endTime set triggers completion sync")
	}
}

func TestUpdateShiftActualEndTriggersCheckpoint(t *testing.T) {
	f := newFixture()
	seedShift(f)

	actual := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	if _, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{ActualEndTime: &actual}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.sync.actualEnd != 1 {
		t.Errorf("checkpoint sync runs = %d, want 1", f.sync.actualEnd)
	}
	if f.sync.completed != 0 {
		t.Errorf("completion sync runs = %d, want 0", f.sync.completed)
	}
}

func TestUpdateShiftSignificantChangeNotifies(t *testing.T) {
	f := newFixture()
	seedShift(f)

	origin := "Rubavu"
	if _, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{Origin: &origin}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.notifier.updated != 1 {
		t.Fatalf("update notifications = %d, want 1", f.notifier.updated)
	}
	if len(f.notifier.changed) != 1 || f.notifier.changed[0] != "origin" {
		t.Errorf("changed fields = %v, want [origin]", f.notifier.changed)
	}
}

func TestUpdateShiftInsignificantChangeDoesNotNotify(t *testing.T) {
	f := newFixture()
	seedShift(f)

	fined := true
	amount := 5000.0
	reason := "overspeeding"
	if _, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{
		Fined: &fined, FineAmount: &amount, FineReason: &reason,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.notifier.updated != 0 {
		t.Error("a fine edit is not a significant route change")
	}
}

func TestUpdateShiftFineRejectedLeavesShiftUnmodified(t *testing.T) {
	f := newFixture()
	seedShift(f)

	fined := true
	amount := 0.0
	reason := ""
	_, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{
		Fined: &fined, FineAmount: &amount, FineReason: &reason,
	})
	if !apperr.IsKind(err, apperr.FineValidation) {
		t.Fatalf("expected FineValidation, got %v", err)
	}
	if f.store.updates != 0 {
		t.Error("a rejected fine must not reach the store")
	}
	if f.store.shifts["s1"].Fined {
		t.Error("shift must remain unfined after a rejected fine")
	}
}

func TestUpdateShiftFineOffClearsFields(t *testing.T) {
	f := newFixture()
	shift := seedShift(f)
	shift.Fined = true
	shift.FineAmount = 5000
	shift.FineReason = "overspeeding"

	fined := false
	updated, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{Fined: &fined})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Fined || updated.FineAmount != 0 || updated.FineReason != "" {
		t.Errorf("fine fields not cleared: %+v", updated)
	}
}

func TestUpdateShiftClosedRejected(t *testing.T) {
	f := newFixture()
	shift := seedShift(f)
	actual := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	shift.ActualEndTime = &actual

	origin := "Rubavu"
	_, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{Origin: &origin})
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation for a closed shift, got %v", err)
	}
}

func TestUpdateShiftCrossTenantDenied(t *testing.T) {
	f := newFixture()
	shift := seedShift(f)
	shift.AgencyName = "Beta"

	origin := "Rubavu"
	_, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{Origin: &origin})
	if !apperr.IsKind(err, apperr.ForbiddenCrossTenant) {
		t.Fatalf("expected ForbiddenCrossTenant, got %v", err)
	}
}

func TestUpdateShiftReassignAgencyDenied(t *testing.T) {
	f := newFixture()
	seedShift(f)

	other := "Beta"
	_, err := f.svc.UpdateShift(context.Background(), manager, "s1", UpdateShiftRequest{AgencyName: &other})
	if !apperr.IsKind(err, apperr.ForbiddenCrossTenant) {
		t.Fatalf("expected ForbiddenCrossTenant, got %v", err)
	}
}

func TestUpdateShiftNotFound(t *testing.T) {
	f := newFixture()
	origin := "Rubavu"
	_, err := f.svc.UpdateShift(context.Background(), manager, "missing", UpdateShiftRequest{Origin: &origin})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteShiftNoReverseSync(t *testing.T) {
	f := newFixture()
	seedShift(f)

	if err := f.svc.DeleteShift(context.Background(), manager, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.store.shifts) != 0 {
		t.Error("shift should be removed")
	}
	if f.sync.completed != 0 || f.sync.actualEnd != 0 || f.sync.assigned != 0 {
		t.Error("deletion must not touch resource sync")
	}
}

func TestDeleteShiftTerminalStateAllowed(t *testing.T) {
	f := newFixture()
	shift := seedShift(f)
	actual := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	shift.ActualEndTime = &actual

	if err := f.svc.DeleteShift(context.Background(), manager, "s1"); err != nil {
		t.Fatalf("delete of a closed shift: %v", err)
	}
}
