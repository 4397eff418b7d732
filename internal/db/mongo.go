package db

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dimeda/stretcher-service/internal/models"
)

// Collection names.
const (
	CollectionProducts    = "products"
	CollectionIssues      = "issues"
	CollectionMaintenance = "scheduled_maintenance"
	CollectionServices    = "services"
	CollectionTechnicians = "technician_unavailable"
)

// ConnectMongo connects to MongoDB using the MONGO_URI environment variable.
func ConnectMongo() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo.Connect")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo.Ping")
	}
	return client, nil
}

// MongoProductCollection wraps the products collection.
type MongoProductCollection struct {
	Collection *mongo.Collection
}

func (c *MongoProductCollection) InsertProduct(ctx context.Context, product models.Product) error {
	_, err := c.Collection.InsertOne(ctx, product)
	return errors.Wrap(err, "insert product")
}

func (c *MongoProductCollection) FindProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func (c *MongoProductCollection) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &product, nil
}

func (c *MongoProductCollection) FindProductBySerial(ctx context.Context, serialNumber string) (*models.Product, error) {
	var product models.Product
	err := c.Collection.FindOne(ctx, bson.M{"serial_number": serialNumber}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find product by serial")
	}
	return &product, nil
}

func (c *MongoProductCollection) UpdateProduct(ctx context.Context, id string, fields bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoProductCollection) DeleteProduct(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoProductCollection) CountProducts(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	count, err := c.Collection.CountDocuments(ctx, filter)
	return count, errors.Wrap(err, "count products")
}

// MongoIssueCollection wraps the issues collection.
type MongoIssueCollection struct {
	Collection *mongo.Collection
}

func (c *MongoIssueCollection) InsertIssue(ctx context.Context, issue models.Issue) error {
	_, err := c.Collection.InsertOne(ctx, issue)
	return errors.Wrap(err, "insert issue")
}

func (c *MongoIssueCollection) FindIssues(ctx context.Context, filter bson.M, sort bson.D) ([]models.Issue, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find issues")
	}
	defer cursor.Close(ctx)
	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, errors.Wrap(err, "decode issues")
	}
	return issues, nil
}

func (c *MongoIssueCollection) FindIssueByID(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find issue")
	}
	return &issue, nil
}

func (c *MongoIssueCollection) UpdateIssue(ctx context.Context, id string, fields bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return errors.Wrap(err, "update issue")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoIssueCollection) DeleteIssue(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete issue")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoIssueCollection) CountIssues(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	count, err := c.Collection.CountDocuments(ctx, filter)
	return count, errors.Wrap(err, "count issues")
}

// MongoMaintenanceCollection wraps the scheduled_maintenance collection.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, entry models.ScheduledMaintenance) error {
	_, err := c.Collection.InsertOne(ctx, entry)
	return errors.Wrap(err, "insert maintenance")
}

func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, filter bson.M, sort bson.D) ([]models.ScheduledMaintenance, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find maintenance")
	}
	defer cursor.Close(ctx)
	var entries []models.ScheduledMaintenance
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decode maintenance")
	}
	return entries, nil
}

func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.ScheduledMaintenance, error) {
	var entry models.ScheduledMaintenance
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find maintenance entry")
	}
	return &entry, nil
}

func (c *MongoMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, fields bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return errors.Wrap(err, "update maintenance")
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoMaintenanceCollection) UpdateManyMaintenance(ctx context.Context, filter bson.M, fields bson.M) error {
	_, err := c.Collection.UpdateMany(ctx, filter, bson.M{"$set": fields})
	return errors.Wrap(err, "update maintenance entries")
}

func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete maintenance")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoMaintenanceCollection) DeleteManyMaintenance(ctx context.Context, filter bson.M) error {
	_, err := c.Collection.DeleteMany(ctx, filter)
	return errors.Wrap(err, "delete maintenance entries")
}

func (c *MongoMaintenanceCollection) CountMaintenance(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	count, err := c.Collection.CountDocuments(ctx, filter)
	return count, errors.Wrap(err, "count maintenance")
}

// MongoServiceCollection wraps the services collection.
type MongoServiceCollection struct {
	Collection *mongo.Collection
}

func (c *MongoServiceCollection) InsertService(ctx context.Context, record models.ServiceRecord) error {
	_, err := c.Collection.InsertOne(ctx, record)
	return errors.Wrap(err, "insert service record")
}

func (c *MongoServiceCollection) FindServices(ctx context.Context, filter bson.M, sort bson.D) ([]models.ServiceRecord, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find service records")
	}
	defer cursor.Close(ctx)
	var records []models.ServiceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decode service records")
	}
	return records, nil
}

func (c *MongoServiceCollection) FindServiceByID(ctx context.Context, id string) (*models.ServiceRecord, error) {
	var record models.ServiceRecord
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find service record")
	}
	return &record, nil
}

func (c *MongoServiceCollection) DeleteService(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete service record")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoServiceCollection) CountServices(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	count, err := c.Collection.CountDocuments(ctx, filter)
	return count, errors.Wrap(err, "count service records")
}

// MongoTechnicianCollection wraps the technician_unavailable collection.
type MongoTechnicianCollection struct {
	Collection *mongo.Collection
}

func (c *MongoTechnicianCollection) InsertUnavailableDay(ctx context.Context, day models.TechnicianUnavailable) error {
	_, err := c.Collection.InsertOne(ctx, day)
	return errors.Wrap(err, "insert unavailable day")
}

func (c *MongoTechnicianCollection) FindUnavailableDays(ctx context.Context, technicianName string) ([]models.TechnicianUnavailable, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"technician_name": technicianName})
	if err != nil {
		return nil, errors.Wrap(err, "find unavailable days")
	}
	defer cursor.Close(ctx)
	var days []models.TechnicianUnavailable
	if err := cursor.All(ctx, &days); err != nil {
		return nil, errors.Wrap(err, "decode unavailable days")
	}
	return days, nil
}

func (c *MongoTechnicianCollection) FindUnavailableDay(ctx context.Context, technicianName, date string) (*models.TechnicianUnavailable, error) {
	var day models.TechnicianUnavailable
	err := c.Collection.FindOne(ctx, bson.M{"technician_name": technicianName, "date": date}).Decode(&day)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find unavailable day")
	}
	return &day, nil
}

func (c *MongoTechnicianCollection) DeleteUnavailableDay(ctx context.Context, technicianName, date string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"technician_name": technicianName, "date": date})
	if err != nil {
		return errors.Wrap(err, "delete unavailable day")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
