// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/studycove/studyhub/internal/app/store/audit"
	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. ConnectDB
// fills the store interfaces with either the Mongo or the in-memory
// implementations; everything downstream is backend-agnostic. The raw
// Mongo handles are nil in memory mode.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Groups        groupstore.Store
	Memberships   membershipstore.Store
	Invites       invitestore.Store
	Confirmations confirmstore.Store
	Contents      contentstore.Store
	Audit         audit.Store
}
