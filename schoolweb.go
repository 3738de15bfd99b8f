// Package schoolweb wires the client layer together: configuration, logger,
// REST client, session store and the per-resource managers.
package schoolweb

import (
	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/manage"
	"github.com/realangry/schoolweb/restapi"
	"github.com/realangry/schoolweb/session"
)

// App bundles one configured instance of the whole layer.
type App struct {
	Conf *core.Config
	Log  core.Logger

	API      *restapi.Client
	Session  *session.Store
	Users    *manage.UserManager
	Students *manage.StudentManager
}

// New composes the layers. The session store supplies the token to every
// request and receives the forced logout from any 401; both are wired here
// once so no call site repeats them.
func New(conf *core.Config, log core.Logger, notify manage.ErrorNotifier) (*App, error) {
	var store *session.Store

	client, err := restapi.NewClient(&restapi.Options{
		BaseURL: conf.APIBaseURL,
		Tokens:  restapi.TokenSourceFunc(func() string { return store.Token() }),
		OnUnauthorized: func() {
			store.ForceLogout()
		},
	})
	if err != nil {
		return nil, err
	}

	store = session.NewStore(client.Auth, session.NewFileStore(conf.CredentialsFile), log)

	return &App{
		Conf:     conf,
		Log:      log,
		API:      client,
		Session:  store,
		Users:    manage.NewUserManager(client.Users, store, conf, notify, log),
		Students: manage.NewStudentManager(client.Students, client.Export, conf, notify, log),
	}, nil
}
