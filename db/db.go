package db

import (
	"context"
	"log"
	"time"

	"evently/globals"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	EventsCollection        *mongo.Collection
	RegistrationsCollection *mongo.Collection
	PaymentsCollection      *mongo.Collection
	CouponsCollection       *mongo.Collection
	CertificatesCollection  *mongo.Collection
	TemplatesCollection     *mongo.Collection
	IdempotencyCollection   *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	uri := globals.Getenv("MONGODB_URI", "mongodb://localhost:27017")

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("eventlydb")
	EventsCollection = database.Collection("events")
	RegistrationsCollection = database.Collection("registrations")
	PaymentsCollection = database.Collection("payments")
	CouponsCollection = database.Collection("coupons")
	CertificatesCollection = database.Collection("certificates")
	TemplatesCollection = database.Collection("templates")
	IdempotencyCollection = database.Collection("idempotency")
}

// EnsureIndexes creates the unique indexes the workflows rely on. The
// application-level existence checks are advisory only; these indexes are what
// actually reject the second writer under concurrent requests.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	type indexSpec struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}

	specs := []indexSpec{
		{
			coll: EventsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.M{"eventid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_eventid"),
				},
			},
		},
		{
			coll: RegistrationsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "eventid", Value: 1}, {Key: "userid", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("unique_event_user"),
				},
				{
					Keys:    bson.M{"registrationid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_registrationid"),
				},
			},
		},
		{
			coll: PaymentsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.M{"orderid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_orderid"),
				},
			},
		},
		{
			coll: CouponsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.M{"code": 1},
					Options: options.Index().SetUnique(true).SetName("unique_code"),
				},
			},
		},
		{
			coll: CertificatesCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.M{"registrationid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_registration"),
				},
				{
					Keys:    bson.M{"verificationcode": 1},
					Options: options.Index().SetUnique(true).SetName("unique_verification_code"),
				},
				{
					Keys:    bson.M{"certificateid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_certificateid"),
				},
			},
		},
		{
			coll: TemplatesCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.M{"templateid": 1},
					Options: options.Index().SetUnique(true).SetName("unique_templateid"),
				},
			},
		},
	}

	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return err
		}
	}
	return nil
}

// IsDuplicateKeyError reports whether a Mongo write failed on a unique index.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(mongo.WriteException); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return mongo.IsDuplicateKeyError(err)
}
