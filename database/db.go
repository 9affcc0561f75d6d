package database

import (
	"context"
	"log"
	"time"

	"vltava/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the shared MongoDB client. Drafts and the tour catalogue
// live here; everything transient goes through Redis instead.
var MongoClient *mongo.Client

// InitDB connects to MongoDB and verifies the connection with a ping.
// Called once at startup before any repository is constructed.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.DatabaseURL))
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("mongo ping failed: %v", err)
	}
	MongoClient = client
	log.Printf("connected to MongoDB at %s", config.AppConfig.DatabaseURL)
}
