// Package testutil provides in-memory implementations of the db collection
// interfaces. Documents round-trip through bson so tag names, embedded
// structs and nullable timestamps behave as they do against a real server.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

func toDoc(v interface{}) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		panic(err)
	}
	return doc
}

func fromDoc(doc bson.M, out interface{}) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		panic(err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		panic(err)
	}
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

func valuesEqual(docVal, filterVal interface{}) bool {
	if filterVal == nil {
		return docVal == nil
	}
	if ft, ok := asTime(filterVal); ok {
		dt, ok := asTime(docVal)
		return ok && ft.Equal(dt)
	}
	return docVal == filterVal
}

// matchClause evaluates one filter entry against a document value. Operator
// maps support $gte, $gt, $lte and $lt over timestamps.
func matchClause(docVal, filterVal interface{}) bool {
	ops, ok := filterVal.(bson.M)
	if !ok {
		return valuesEqual(docVal, filterVal)
	}
	dt, hasTime := asTime(docVal)
	for op, arg := range ops {
		at, ok := asTime(arg)
		if !ok || !hasTime {
			return false
		}
		switch op {
		case "$gte":
			if dt.Before(at) {
				return false
			}
		case "$gt":
			if !dt.After(at) {
				return false
			}
		case "$lte":
			if dt.After(at) {
				return false
			}
		case "$lt":
			if !dt.Before(at) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			branches, ok := want.([]bson.M)
			if !ok {
				return false
			}
			any := false
			for _, branch := range branches {
				if matches(doc, branch) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
			continue
		}
		if !matchClause(doc[key], want) {
			return false
		}
	}
	return true
}

// sortDocs orders docs by the first sort key. Missing and null values sort
// first ascending, mirroring server behaviour closely enough for tests.
func sortDocs(docs []bson.M, sortSpec bson.D) {
	if len(sortSpec) == 0 {
		return
	}
	key := sortSpec[0].Key
	desc := false
	if dir, ok := sortSpec[0].Value.(int); ok && dir < 0 {
		desc = true
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ti, iok := asTime(docs[i][key])
		tj, jok := asTime(docs[j][key])
		if !iok || !jok {
			less := !iok && jok
			if desc {
				return !less && iok
			}
			return less
		}
		if desc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

// store is a filterable document list shared by the typed collections.
type store struct {
	mu   sync.Mutex
	docs []bson.M

	InsertErr error
	FindErr   error
	UpdateErr error
	DeleteErr error
	CountErr  error
}

func (s *store) insert(v interface{}) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, toDoc(v))
	return nil
}

func (s *store) find(filter bson.M, sortSpec bson.D) ([]bson.M, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bson.M
	for _, doc := range s.docs {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	sortDocs(out, sortSpec)
	return out, nil
}

func (s *store) findOne(filter bson.M) (bson.M, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *store) update(filter bson.M, fields bson.M, many bool) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := false
	for i, doc := range s.docs {
		if !matches(doc, filter) {
			continue
		}
		matched = true
		updated := bson.M{}
		for k, v := range doc {
			updated[k] = v
		}
		for k, v := range toDoc(fields) {
			updated[k] = v
		}
		s.docs[i] = updated
		if !many {
			return nil
		}
	}
	if !matched && !many {
		return db.ErrNotFound
	}
	return nil
}

func (s *store) delete(filter bson.M, many bool) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []bson.M
	deleted := 0
	for _, doc := range s.docs {
		if matches(doc, filter) && (many || deleted == 0) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept
	if deleted == 0 && !many {
		return db.ErrNotFound
	}
	return nil
}

func (s *store) count(filter bson.M) (int64, error) {
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// MemProductCollection is an in-memory db.ProductCollection.
type MemProductCollection struct {
	store
}

// NewMemProductCollection creates an empty product collection.
func NewMemProductCollection() *MemProductCollection { return &MemProductCollection{} }

func (c *MemProductCollection) InsertProduct(ctx context.Context, product models.Product) error {
	return c.insert(product)
}

func (c *MemProductCollection) FindProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	docs, err := c.find(filter, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, len(docs))
	for i, doc := range docs {
		fromDoc(doc, &out[i])
	}
	return out, nil
}

func (c *MemProductCollection) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	doc, err := c.findOne(bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	var p models.Product
	fromDoc(doc, &p)
	return &p, nil
}

func (c *MemProductCollection) FindProductBySerial(ctx context.Context, serialNumber string) (*models.Product, error) {
	doc, err := c.findOne(bson.M{"serial_number": serialNumber})
	if err != nil {
		return nil, err
	}
	var p models.Product
	fromDoc(doc, &p)
	return &p, nil
}

func (c *MemProductCollection) UpdateProduct(ctx context.Context, id string, fields bson.M) error {
	return c.update(bson.M{"_id": id}, fields, false)
}

func (c *MemProductCollection) DeleteProduct(ctx context.Context, id string) error {
	return c.delete(bson.M{"_id": id}, false)
}

func (c *MemProductCollection) CountProducts(ctx context.Context, filter bson.M) (int64, error) {
	return c.count(filter)
}

// MemIssueCollection is an in-memory db.IssueCollection.
type MemIssueCollection struct {
	store
}

// NewMemIssueCollection creates an empty issue collection.
func NewMemIssueCollection() *MemIssueCollection { return &MemIssueCollection{} }

func (c *MemIssueCollection) InsertIssue(ctx context.Context, issue models.Issue) error {
	return c.insert(issue)
}

func (c *MemIssueCollection) FindIssues(ctx context.Context, filter bson.M, sortSpec bson.D) ([]models.Issue, error) {
	docs, err := c.find(filter, sortSpec)
	if err != nil {
		return nil, err
	}
	out := make([]models.Issue, len(docs))
	for i, doc := range docs {
		fromDoc(doc, &out[i])
	}
	return out, nil
}

func (c *MemIssueCollection) FindIssueByID(ctx context.Context, id string) (*models.Issue, error) {
	doc, err := c.findOne(bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	var issue models.Issue
	fromDoc(doc, &issue)
	return &issue, nil
}

func (c *MemIssueCollection) UpdateIssue(ctx context.Context, id string, fields bson.M) error {
	return c.update(bson.M{"_id": id}, fields, false)
}

func (c *MemIssueCollection) DeleteIssue(ctx context.Context, id string) error {
	return c.delete(bson.M{"_id": id}, false)
}

func (c *MemIssueCollection) CountIssues(ctx context.Context, filter bson.M) (int64, error) {
	return c.count(filter)
}

// MemMaintenanceCollection is an in-memory db.MaintenanceCollection.
type MemMaintenanceCollection struct {
	store
}

// NewMemMaintenanceCollection creates an empty maintenance collection.
func NewMemMaintenanceCollection() *MemMaintenanceCollection { return &MemMaintenanceCollection{} }

func (c *MemMaintenanceCollection) InsertMaintenance(ctx context.Context, entry models.ScheduledMaintenance) error {
	return c.insert(entry)
}

func (c *MemMaintenanceCollection) FindMaintenance(ctx context.Context, filter bson.M, sortSpec bson.D) ([]models.ScheduledMaintenance, error) {
	docs, err := c.find(filter, sortSpec)
	if err != nil {
		return nil, err
	}
	out := make([]models.ScheduledMaintenance, len(docs))
	for i, doc := range docs {
		fromDoc(doc, &out[i])
	}
	return out, nil
}

func (c *MemMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.ScheduledMaintenance, error) {
	doc, err := c.findOne(bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	var entry models.ScheduledMaintenance
	fromDoc(doc, &entry)
	return &entry, nil
}

func (c *MemMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, fields bson.M) error {
	return c.update(bson.M{"_id": id}, fields, false)
}

func (c *MemMaintenanceCollection) UpdateManyMaintenance(ctx context.Context, filter bson.M, fields bson.M) error {
	return c.update(filter, fields, true)
}

func (c *MemMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	return c.delete(bson.M{"_id": id}, false)
}

func (c *MemMaintenanceCollection) DeleteManyMaintenance(ctx context.Context, filter bson.M) error {
	return c.delete(filter, true)
}

func (c *MemMaintenanceCollection) CountMaintenance(ctx context.Context, filter bson.M) (int64, error) {
	return c.count(filter)
}

// MemServiceCollection is an in-memory db.ServiceCollection.
type MemServiceCollection struct {
	store
}

// NewMemServiceCollection creates an empty service-record collection.
func NewMemServiceCollection() *MemServiceCollection { return &MemServiceCollection{} }

func (c *MemServiceCollection) InsertService(ctx context.Context, record models.ServiceRecord) error {
	return c.insert(record)
}

func (c *MemServiceCollection) FindServices(ctx context.Context, filter bson.M, sortSpec bson.D) ([]models.ServiceRecord, error) {
	docs, err := c.find(filter, sortSpec)
	if err != nil {
		return nil, err
	}
	out := make([]models.ServiceRecord, len(docs))
	for i, doc := range docs {
		fromDoc(doc, &out[i])
	}
	return out, nil
}

func (c *MemServiceCollection) FindServiceByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	doc, err := c.findOne(bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	var record models.ServiceRecord
	fromDoc(doc, &record)
	return &record, nil
}

func (c *MemServiceCollection) DeleteService(ctx context.Context, id string) error {
	return c.delete(bson.M{"_id": id}, false)
}

func (c *MemServiceCollection) CountServices(ctx context.Context, filter bson.M) (int64, error) {
	return c.count(filter)
}

// MemTechnicianCollection is an in-memory db.TechnicianCollection.
type MemTechnicianCollection struct {
	store
}

// NewMemTechnicianCollection creates an empty technician-unavailability collection.
func NewMemTechnicianCollection() *MemTechnicianCollection { return &MemTechnicianCollection{} }

func (c *MemTechnicianCollection) InsertUnavailableDay(ctx context.Context, day models.TechnicianUnavailable) error {
	return c.insert(day)
}

func (c *MemTechnicianCollection) FindUnavailableDays(ctx context.Context, technicianName string) ([]models.TechnicianUnavailable, error) {
	docs, err := c.find(bson.M{"technician_name": technicianName}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.TechnicianUnavailable, len(docs))
	for i, doc := range docs {
		fromDoc(doc, &out[i])
	}
	return out, nil
}

func (c *MemTechnicianCollection) FindUnavailableDay(ctx context.Context, technicianName, date string) (*models.TechnicianUnavailable, error) {
	doc, err := c.findOne(bson.M{"technician_name": technicianName, "date": date})
	if err != nil {
		return nil, err
	}
	var day models.TechnicianUnavailable
	fromDoc(doc, &day)
	return &day, nil
}

func (c *MemTechnicianCollection) DeleteUnavailableDay(ctx context.Context, technicianName, date string) error {
	return c.delete(bson.M{"technician_name": technicianName, "date": date}, false)
}
