package issues

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/events"
	"github.com/dimeda/stretcher-service/internal/models"
	"github.com/dimeda/stretcher-service/internal/testutil"
)

type testEnv struct {
	svc         *Service
	issues      *testutil.MemIssueCollection
	products    *testutil.MemProductCollection
	maintenance *testutil.MemMaintenanceCollection
	services    *testutil.MemServiceCollection
	now         time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		issues:      testutil.NewMemIssueCollection(),
		products:    testutil.NewMemProductCollection(),
		maintenance: testutil.NewMemMaintenanceCollection(),
		services:    testutil.NewMemServiceCollection(),
		now:         time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	logger := log.NewEntry(log.New())
	env.svc = NewService(env.issues, env.products, env.maintenance, env.services, events.NoopPublisher{}, logger)
	env.svc.now = func() time.Time { return env.now }
	env.svc.scheduler.now = env.svc.now
	return env
}

func (e *testEnv) addProduct(id, serial, modelType string) models.Product {
	product := models.Product{
		ID:               id,
		SerialNumber:     serial,
		ModelName:        "Power-X 250",
		ModelType:        modelType,
		City:             "Vilnius",
		RegistrationDate: e.now.AddDate(-1, 0, 0),
		Status:           "active",
	}
	if err := e.products.InsertProduct(context.Background(), product); err != nil {
		panic(err)
	}
	return product
}

func (e *testEnv) addIssue(issue models.Issue) models.Issue {
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = e.now
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusOpen
	}
	if err := e.issues.InsertIssue(context.Background(), issue); err != nil {
		panic(err)
	}
	return issue
}

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }
