// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/store/sessions"
	"github.com/dalemusser/regdash/internal/app/system/ratelimit"
	"github.com/dalemusser/regdash/internal/app/system/snapshot"
	"github.com/dalemusser/regdash/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Long-lived services with their own goroutines live here too so Shutdown
// can stop them; WAFFLE passes DBDeps by value to every later hook.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Sessions      *sessions.Store

	// Registration backend client and the statistics snapshot built on it.
	Registrants *registrants.Client
	Snapshots   *snapshot.Store

	LoginLimiter   *ratelimit.LoginLimiter
	SessionCleanup *workers.SessionCleanup
}
