package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
)

const gatewayMargin = 5 * time.Second

type Server struct {
	port           uint
	httpLog        bool
	gatewayTimeout time.Duration
	rootContext    *actor.RootContext
	masterActor    *actor.PID
}

func newServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID) *Server {
	return &Server{
		port:           cfg.Port,
		rootContext:    rootContext,
		masterActor:    masterActor,
		httpLog:        cfg.HttpLog,
		gatewayTimeout: cfg.CentralControl.Timeout() + gatewayMargin,
	}
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID) *http.Server {
	NewServer := newServer(cfg, rootContext, masterActor)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
