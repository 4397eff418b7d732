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

func TestCreate_UnknownProduct(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Create(context.Background(), models.IssueCreate{ProductID: "missing", Title: "Latch broken"})

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}

func TestCreate_Defaults(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)

	issue, err := env.svc.Create(context.Background(), models.IssueCreate{
		ProductID: "p1", IssueType: "mechanical", Severity: "low", Title: "Latch broken",
	})

	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, issue.Status)
	assert.NotNil(t, issue.Photos)
	assert.Empty(t, issue.Photos)
	assert.Nil(t, issue.TechnicianAssignedAt)
	assert.True(t, issue.CreatedAt.Equal(env.now))
}

func TestCreate_PresetTechnicianStampsAssignment(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)

	issue, err := env.svc.Create(context.Background(), models.IssueCreate{
		ProductID: "p1", IssueType: "mechanical", Title: "Latch broken", TechnicianName: "Jonas",
	})

	require.NoError(t, err)
	require.NotNil(t, issue.TechnicianAssignedAt)
	assert.True(t, issue.TechnicianAssignedAt.Equal(env.now))
}

func TestCreate_SchedulesCalendarEntries(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)

	issue, err := env.svc.Create(context.Background(), models.IssueCreate{
		ProductID: "p1", IssueType: "mechanical", Title: "Latch broken",
	})
	require.NoError(t, err)

	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": issue.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCreateCustomer_ForcesSeverityAndSource(t *testing.T) {
	env := newTestEnv()
	env.addProduct("p1", "DM-1001", models.ModelTypePowered)

	issue, err := env.svc.CreateCustomer(context.Background(), models.CustomerIssueCreate{
		ProductID:       "p1",
		IssueType:       "mechanical",
		Title:           "Rail stuck",
		ProductLocation: "Ward 3",
	})

	require.NoError(t, err)
	assert.Equal(t, "high", issue.Severity)
	assert.Equal(t, models.SourceCustomer, issue.Source)
	assert.Equal(t, "Ward 3", issue.ProductLocation)
	assert.NotNil(t, issue.Photos)

	// no calendar entries until a technician takes the issue
	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": issue.ID}, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_NewestFirst(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "older", ProductID: "p1", CreatedAt: env.now.Add(-time.Hour)})
	env.addIssue(models.Issue{ID: "newer", ProductID: "p1", CreatedAt: env.now})

	issues, err := env.svc.List(context.Background(), "", "")

	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "newer", issues[0].ID)
	assert.Equal(t, "older", issues[1].ID)
}

func TestList_Filters(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Status: models.IssueStatusOpen})
	env.addIssue(models.Issue{ID: "i2", ProductID: "p2", Status: models.IssueStatusResolved})

	issues, err := env.svc.List(context.Background(), "p1", "")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "i1", issues[0].ID)

	issues, err = env.svc.List(context.Background(), "", models.IssueStatusResolved)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "i2", issues[0].ID)
}

func TestDelete_CascadesCalendarEntries(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "i1", ProductID: "p1", Title: "Latch broken"})
	require.NoError(t, env.maintenance.InsertMaintenance(context.Background(), models.ScheduledMaintenance{
		ID: "m1", ProductID: "p1", IssueID: "i1", Source: models.SourceIssue,
		Type: models.MaintenanceIssueInspection, Status: models.MaintenanceScheduled, CreatedAt: env.now,
	}))

	require.NoError(t, env.svc.Delete(context.Background(), "i1"))

	_, err := env.issues.FindIssueByID(context.Background(), "i1")
	assert.Error(t, err)
	entries, err := env.maintenance.FindMaintenance(context.Background(), bson.M{"issue_id": "i1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete_LegacyParentTakesChildDown(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "parent", ProductID: "p1", ChildIssueID: "child"})
	env.addIssue(models.Issue{ID: "child", ProductID: "p1", ParentIssueID: "parent", IsWarrantyRoute: true})

	require.NoError(t, env.svc.Delete(context.Background(), "parent"))

	_, err := env.issues.FindIssueByID(context.Background(), "child")
	assert.Error(t, err)
}

func TestDelete_LegacyChildUnlinksParent(t *testing.T) {
	env := newTestEnv()
	env.addIssue(models.Issue{ID: "parent", ProductID: "p1", ChildIssueID: "child"})
	env.addIssue(models.Issue{ID: "child", ProductID: "p1", ParentIssueID: "parent", IsWarrantyRoute: true})

	require.NoError(t, env.svc.Delete(context.Background(), "child"))

	parent, err := env.issues.FindIssueByID(context.Background(), "parent")
	require.NoError(t, err)
	assert.Empty(t, parent.ChildIssueID)
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv()

	err := env.svc.Delete(context.Background(), "missing")

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Status)
}
