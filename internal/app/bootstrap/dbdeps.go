// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/greenledger/internal/app/system/mongoconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	Conn          *mongoconn.Conn
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
