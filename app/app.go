package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/survey-api/config"
)

// App bundles what every handler needs: the store, the token issuer and the
// runtime configuration.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
