package router

import (
	"net/http"

	"tablestore/config"
	tableHandler "tablestore/internal/table"
	tableservice "tablestore/internal/table/service"
	userHandler "tablestore/internal/user"
	userservice "tablestore/internal/user/service"
	"tablestore/middleware"
	"tablestore/pkg/metrics"
	"tablestore/pkg/respond"
	"tablestore/socket"
)

type Deps struct {
	Config  *config.Config
	Tables  *tableservice.TableService
	Users   *userservice.UserService
	Hub     *socket.Hub
	Metrics *metrics.Metrics
}

func Setup(d Deps) http.Handler {
	mux := http.NewServeMux()

	tables := tableHandler.NewTableHandler(d.Tables, d.Hub)
	users := userHandler.NewUserHandler(d.Users)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"message": "hello, world"})
	})

	mux.HandleFunc("GET /table/{id}", tables.GetTable)
	mux.HandleFunc("POST /table/{id}", tables.UpdateTable)
	mux.HandleFunc("POST /deltable/{id}", tables.DeleteTable)
	mux.HandleFunc("GET /ws/table/{id}", tables.Subscribe)

	mux.HandleFunc("GET /user/{user_id}", users.ListTables)
	mux.HandleFunc("POST /deluser", users.DeleteUser)
	mux.HandleFunc("POST /create_user", users.CreateUser)

	mux.Handle("GET /metrics", d.Metrics.Handler())

	var h http.Handler = mux
	h = middleware.Metrics(d.Metrics)(h)
	h = middleware.BodyLimit(d.Config.MaxBodyBytes)(h)
	h = middleware.CORSMiddleware(h)
	h = middleware.HostRedirect(d.Config.CanonicalDomain, d.Config.LegacyHostPattern)(h)
	h = middleware.AccessLog(h)
	h = middleware.RequestID(h)
	return h
}
