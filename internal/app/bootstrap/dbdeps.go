// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/deskhub/internal/app/store/audit"
	"github.com/dalemusser/deskhub/internal/app/system/apiclient"
	"github.com/dalemusser/deskhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies built once at startup.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	AuditStore    *audit.Store

	// API is the session-less backend client; handlers bind a session per request.
	API *apiclient.Client

	// Background workers, started in Startup and stopped in Shutdown.
	Retention *workers.AuditRetention
	Probe     *workers.UpstreamProbe
}
