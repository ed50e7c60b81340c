// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/boardhub/boardhub/internal/app/features/account"
	authgooglefeature "github.com/boardhub/boardhub/internal/app/features/authgoogle"
	boardsfeature "github.com/boardhub/boardhub/internal/app/features/boards"
	errorsfeature "github.com/boardhub/boardhub/internal/app/features/errors"
	friendsfeature "github.com/boardhub/boardhub/internal/app/features/friends"
	healthfeature "github.com/boardhub/boardhub/internal/app/features/health"
	loginfeature "github.com/boardhub/boardhub/internal/app/features/login"
	logoutfeature "github.com/boardhub/boardhub/internal/app/features/logout"
	projectsfeature "github.com/boardhub/boardhub/internal/app/features/projects"
	registerfeature "github.com/boardhub/boardhub/internal/app/features/register"
	streamfeature "github.com/boardhub/boardhub/internal/app/features/stream"
	tasksfeature "github.com/boardhub/boardhub/internal/app/features/tasks"
	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	friendrequeststore "github.com/boardhub/boardhub/internal/app/store/friendrequests"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	taskstore "github.com/boardhub/boardhub/internal/app/store/tasks"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"github.com/boardhub/boardhub/internal/app/system/commands"
	"github.com/boardhub/boardhub/internal/app/system/projectsync"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the stores, the session and
// preferences machinery, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	prefs := clientprefs.NewCodec([]byte(appCfg.PrefsKey), secure)
	errLog := errorsfeature.NewErrorLogger(logger)

	db := deps.MongoDatabase
	users := userstore.New(db)
	projects := projectstore.New(db)
	boards := boardstore.New(db)
	tasks := taskstore.New(db)
	friendRequests := friendrequeststore.New(db)

	syncManager := projectsync.NewManager(projects, boards, eventHub, logger)
	registry := commands.NewRegistry()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	registerHandler := registerfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, prefs, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(users, sessionMgr, errLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, secure, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Account and friends
	accountHandler := accountfeature.NewHandler(users, errLog, logger)
	r.Mount("/account", accountfeature.Routes(accountHandler))

	friendsHandler := friendsfeature.NewHandler(users, friendRequests, errLog, logger)
	r.Mount("/friends", friendsfeature.Routes(friendsHandler))

	// Projects with their nested board and task routers
	boardsHandler := boardsfeature.NewHandler(boards, projects, eventPub, errLog, logger)
	tasksHandler := tasksfeature.NewHandler(tasks, boards, projects, registry, eventPub, errLog, logger)
	projectsHandler := projectsfeature.NewHandler(projects, users, prefs, syncManager, eventPub, errLog, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler,
		boardsfeature.Routes(boardsHandler), tasksfeature.Routes(tasksHandler)))

	// Live snapshot stream
	streamHandler := streamfeature.NewHandler(syncManager, prefs, logger)
	r.Mount("/stream", streamfeature.Routes(streamHandler))

	return r, nil
}
