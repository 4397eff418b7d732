package issues

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/models"
)

func TestApplyUpdate_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.ApplyUpdate(context.Background(), "missing", models.IssuePatch{})

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}

func TestApplyUpdate_ResolveStampsTimestamp(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:     strptr(models.IssueStatusResolved),
		Resolution: strptr("Latch replaced"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.ResolvedAt.Equal(env.now))
	assert.Equal(t, "Latch replaced", updated.Resolution)
}

func TestApplyUpdate_WarrantyRoutingParksInService(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
		Resolution:          strptr("Needs actuator swap"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusInService, updated.Status)
	assert.Nil(t, updated.ResolvedAt)
	require.NotNil(t, updated.WarrantyRepairStartedAt)
	assert.True(t, updated.WarrantyRepairStartedAt.Equal(env.now))

	require.Len(t, updated.RepairAttempts, 1)
	attempt := updated.RepairAttempts[0]
	assert.Equal(t, models.RepairStatusPending, attempt.Status)
	assert.Equal(t, "Needs actuator swap", attempt.Notes)
	assert.Nil(t, attempt.CompletedAt)
	assert.Equal(t, attempt.ID, updated.CurrentRepairID)
}

func TestApplyUpdate_WarrantyRoutingDefaultNotes(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
	})

	require.NoError(t, err)
	require.Len(t, updated.RepairAttempts, 1)
	assert.Equal(t, "Warranty repair required", updated.RepairAttempts[0].Notes)
}

func TestApplyUpdate_SecondWarrantyRoutingAppendsAttempt(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
	})
	require.NoError(t, err)

	_, err = env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{StartRepair: boolptr(true)})
	require.NoError(t, err)
	_, err = env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{CompleteRepair: boolptr(true)})
	require.NoError(t, err)

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
		Resolution:          strptr("Failed again"),
	})
	require.NoError(t, err)

	require.Len(t, updated.RepairAttempts, 2)
	assert.Equal(t, models.RepairStatusCompleted, updated.RepairAttempts[0].Status)
	assert.Equal(t, models.RepairStatusPending, updated.RepairAttempts[1].Status)
	assert.Equal(t, updated.RepairAttempts[1].ID, updated.CurrentRepairID)
}

func TestApplyUpdate_StartRepair(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	routed, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
	})
	require.NoError(t, err)

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{StartRepair: boolptr(true)})
	require.NoError(t, err)

	assert.Equal(t, models.IssueStatusInProgress, updated.Status)
	require.Len(t, updated.RepairAttempts, 1)
	assert.Equal(t, models.RepairStatusInProgress, updated.RepairAttempts[0].Status)
	assert.Equal(t, routed.CurrentRepairID, updated.CurrentRepairID)
}

func TestApplyUpdate_StartRepairIgnoredWhenNotInService(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{StartRepair: boolptr(true)})

	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, updated.Status)
	assert.Empty(t, updated.RepairAttempts)
}

func TestApplyUpdate_StartRepairUnknownID(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
	})
	require.NoError(t, err)

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		StartRepair: boolptr(true),
		RepairID:    strptr("no-such-attempt"),
	})
	require.NoError(t, err)

	// the status transition applies even though no attempt matched
	assert.Equal(t, models.IssueStatusInProgress, updated.Status)
	require.Len(t, updated.RepairAttempts, 1)
	assert.Equal(t, models.RepairStatusPending, updated.RepairAttempts[0].Status)
}

func TestApplyUpdate_CompleteRepairResolves(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
	})
	require.NoError(t, err)
	_, err = env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{StartRepair: boolptr(true)})
	require.NoError(t, err)

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		CompleteRepair: boolptr(true),
		RepairNotes:    strptr("Replaced actuator, load tested"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.IssueStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Empty(t, updated.CurrentRepairID)

	require.Len(t, updated.RepairAttempts, 1)
	attempt := updated.RepairAttempts[0]
	assert.Equal(t, models.RepairStatusCompleted, attempt.Status)
	require.NotNil(t, attempt.CompletedAt)
	assert.Equal(t, "Replaced actuator, load tested", attempt.Notes)
}

func TestApplyUpdate_CompleteRepairKeepsNotesWhenEmpty(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Actuator dead"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.WarrantyService),
		Resolution:          strptr("Needs actuator swap"),
	})
	require.NoError(t, err)

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{CompleteRepair: boolptr(true)})
	require.NoError(t, err)

	require.Len(t, updated.RepairAttempts, 1)
	assert.Equal(t, "Needs actuator swap", updated.RepairAttempts[0].Notes)
}

func TestApplyUpdate_ReopenClearsAssignment(t *testing.T) {
	env := newTestEnv()
	assigned := env.now.Add(-time.Hour)
	env.addIssue(models.Issue{
		ID:                   "i1",
		ProductID:            "p1",
		Title:                "Latch broken",
		Status:               models.IssueStatusInProgress,
		TechnicianName:       "Jonas",
		TechnicianAssignedAt: &assigned,
	})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status: strptr(models.IssueStatusOpen),
	})

	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, updated.Status)
	assert.Empty(t, updated.TechnicianName)
	assert.Nil(t, updated.TechnicianAssignedAt)
}

func TestApplyUpdate_ReopenCustomerIssueDeletesCalendarEntries(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{
		ID:             "i1",
		ProductID:      "p1",
		Title:          "Rail stuck",
		Status:         models.IssueStatusInProgress,
		TechnicianName: "Jonas",
		Source:         models.SourceCustomer,
	})
	require.NoError(t, env.maintenance.InsertMaintenance(context.Background(), models.ScheduledMaintenance{
		ID: "m1", ProductID: "p1", IssueID: "i1", Source: models.SourceCustomerIssue,
		Type: models.MaintenanceCustomerIssue, Status: models.MaintenanceScheduled, CreatedAt: env.now,
	}))

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status: strptr(models.IssueStatusOpen),
	})
	require.NoError(t, err)

	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": "i1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplyUpdate_FirstAssignmentStampsTimestamp(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})

	updated, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		TechnicianName: strptr("Jonas"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jonas", updated.TechnicianName)
	require.NotNil(t, updated.TechnicianAssignedAt)
	assert.True(t, updated.TechnicianAssignedAt.Equal(env.now))
	// assignment alone never starts work
	assert.Equal(t, models.IssueStatusOpen, updated.Status)
}

func TestApplyUpdate_ResolvedCompletesCalendarEntries(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})
	require.NoError(t, env.maintenance.InsertMaintenance(context.Background(), models.ScheduledMaintenance{
		ID: "m1", ProductID: "p1", IssueID: "i1", Source: models.SourceIssue,
		Type: models.MaintenanceIssueInspection, Status: models.MaintenanceScheduled, CreatedAt: env.now,
	}))

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status: strptr(models.IssueStatusResolved),
	})
	require.NoError(t, err)

	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": "i1"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.MaintenanceCompleted, entries[0].Status)
}

func TestApplyUpdate_ServiceRecordDerivedOnNonWarrantyResolve(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{
		ID:             "i1",
		ProductID:      "p1",
		Title:          "Latch broken",
		Description:    "Latch sticks when cold",
		TechnicianName: "Jonas",
	})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.NonWarrantyService),
		Resolution:          strptr("Adjusted and lubricated"),
		EstimatedFixTime:    strptr("2"),
		EstimatedCost:       strptr("120"),
		CreateServiceRecord: boolptr(true),
	})
	require.NoError(t, err)

	records, err := env.services.FindServices(context.Background(), bson.M{}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "p1", record.ProductID)
	assert.Equal(t, "Jonas", record.TechnicianName)
	assert.Equal(t, "repair", record.ServiceType)
	assert.Equal(t, models.NonWarrantyService, record.WarrantyStatus)
	assert.Equal(t, "Latch sticks when cold", record.IssuesFound)
	assert.Contains(t, record.Description, "Latch broken")
	assert.Contains(t, record.Description, "Resolution: Adjusted and lubricated")
	assert.Contains(t, record.Description, "Estimated Fix Time: 2 hours")
	assert.Contains(t, record.Description, "Estimated Cost: 120 Eur")
}

func TestApplyUpdate_ServiceRecordFallbacks(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.NonWarrantyService),
		CreateServiceRecord: boolptr(true),
	})
	require.NoError(t, err)

	records, err := env.services.FindServices(context.Background(), bson.M{}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Unknown", records[0].TechnicianName)
	assert.Contains(t, records[0].Description, "Resolution: N/A")
	assert.Contains(t, records[0].Description, "Estimated Fix Time: N/A hours")
}

func TestApplyUpdate_NoServiceRecordWithoutFlag(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})

	_, err := env.svc.ApplyUpdate(context.Background(), "i1", models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyServiceType: strptr(models.NonWarrantyService),
	})
	require.NoError(t, err)

	records, err := env.services.FindServices(context.Background(), bson.M{}, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestApplyUpdate_LegacyChildResolveCascadesToParent(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "parent", ProductID: "p1", Title: "Original", Status: models.IssueStatusInService, ChildIssueID: "child"})
	env.addIssue(models.Issue{
		ID:              "child",
		ProductID:       "p1",
		Title:           "Warranty Service",
		ParentIssueID:   "parent",
		IsWarrantyRoute: true,
	})

	_, err := env.svc.ApplyUpdate(context.Background(), "child", models.IssuePatch{
		Status: strptr(models.IssueStatusResolved),
	})
	require.NoError(t, err)

	parent, err := env.issues.FindIssueByID(context.Background(), "parent")
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusResolved, parent.Status)
	require.NotNil(t, parent.ResolvedAt)
}

func TestApplyUpdate_AutoResolveParentWaitsForSiblings(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "parent", ProductID: "p1", Title: "Original"})
	env.addIssue(models.Issue{ID: "c1", ProductID: "p1", Title: "First fault", ParentIssueID: "parent"})
	env.addIssue(models.Issue{ID: "c2", ProductID: "p1", Title: "Second fault", ParentIssueID: "parent"})

	_, err := env.svc.ApplyUpdate(context.Background(), "c1", models.IssuePatch{
		Status: strptr(models.IssueStatusResolved),
	})
	require.NoError(t, err)

	parent, err := env.issues.FindIssueByID(context.Background(), "parent")
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, parent.Status)

	_, err = env.svc.ApplyUpdate(context.Background(), "c2", models.IssuePatch{
		Status: strptr(models.IssueStatusResolved),
	})
	require.NoError(t, err)

	parent, err = env.issues.FindIssueByID(context.Background(), "parent")
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusResolved, parent.Status)
	assert.Equal(t, "All child issues resolved", parent.Resolution)
}

// Full warranty cycle: report, assign, route to warranty, run the repair,
// resolve.
func TestApplyUpdate_WarrantyCycleEndToEnd(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)

	issue, err := env.svc.Create(context.Background(), models.IssueCreate{
		ProductID:   "p1",
		IssueType:   "electrical",
		Severity:    "high",
		Title:       "Actuator dead",
		Description: "Lift actuator unresponsive",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, issue.Status)

	_, err = env.svc.ApplyUpdate(context.Background(), issue.ID, models.IssuePatch{
		TechnicianName: strptr("Jonas"),
		Status:         strptr(models.IssueStatusInProgress),
	})
	require.NoError(t, err)

	routed, err := env.svc.ApplyUpdate(context.Background(), issue.ID, models.IssuePatch{
		Status:              strptr(models.IssueStatusResolved),
		WarrantyStatus:      strptr(models.WarrantyService),
		WarrantyServiceType: strptr(models.WarrantyService),
		Resolution:          strptr("Actuator replacement under warranty"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusInService, routed.Status)
	assert.Nil(t, routed.ResolvedAt)

	started, err := env.svc.ApplyUpdate(context.Background(), issue.ID, models.IssuePatch{
		StartRepair: boolptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusInProgress, started.Status)

	done, err := env.svc.ApplyUpdate(context.Background(), issue.ID, models.IssuePatch{
		CompleteRepair: boolptr(true),
		RepairNotes:    strptr("Replaced actuator"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusResolved, done.Status)
	require.NotNil(t, done.ResolvedAt)
	require.Len(t, done.RepairAttempts, 1)
	assert.Equal(t, models.RepairStatusCompleted, done.RepairAttempts[0].Status)

	// the replacement calendar entry is completed with the issue
	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": issue.ID}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.Equal(t, models.MaintenanceCompleted, entry.Status)
	}
}
