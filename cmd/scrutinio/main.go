package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/scrutinio/internal/db"
	"gitlab.com/ranfdev/scrutinio/internal/models"
	"gitlab.com/ranfdev/scrutinio/internal/server"
)

const usage = `Usage:
	- start
	- migrate [up/down/drop]
`

func main() {
	if len(os.Args) == 1 {
		fmt.Print(usage)
		return
	}
	envConfig := models.ReadEnvConfig()
	switch os.Args[1] {
	case "start":
		srv := ScrutinioServer{EnvConfig: envConfig}
		srv.Setup()
		srv.Run()
	case "migrate":
		if len(os.Args) < 3 {
			fmt.Print(usage)
			return
		}
		var err error
		switch os.Args[2] {
		case "up":
			err = db.MigrateUp(envConfig.DatabaseURL)
		case "down":
			err = db.MigrateDown(envConfig.DatabaseURL)
		case "drop":
			err = db.Drop(envConfig.DatabaseURL)
		default:
			fmt.Print(usage)
			return
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Done")
	default:
		fmt.Print(usage)
	}
}

type ScrutinioServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	store      *db.VoteStore
	dispatcher *server.Dispatcher
	listener   net.Listener
	opsServer  *http.Server
}

func (srv *ScrutinioServer) setupLogger() {
	var writer io.Writer
	if srv.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	} else {
		writer = os.Stdout
	}
	log := zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	srv.logger = log
}
func (srv *ScrutinioServer) setupStore() {
	err := db.MigrateUp(srv.DatabaseURL)
	if err != nil {
		srv.logger.Fatal().Err(err).Send()
	}
	ctx := context.Background()
	store, err := db.Connect(ctx, &srv.EnvConfig)
	if err != nil {
		srv.logger.Fatal().AnErr("Connecting to db", err).Send()
	}
	if err := store.EnsureCandidates(ctx, srv.Candidates); err != nil {
		srv.logger.Fatal().AnErr("Seeding candidates", err).Send()
	}
	srv.store = store
}
func (srv *ScrutinioServer) setupDispatcher() {
	if srv.AdminSecret == "" {
		srv.logger.Fatal().Msg("SCRUTINIO_ADMIN_SECRET must be set")
	}
	handler := server.NewHandler(srv.store, srv.AdminSecret, srv.logger)
	srv.dispatcher = server.NewDispatcher(handler, srv.logger)

	srv.addr = net.JoinHostPort("", srv.Port)
	ln, err := net.Listen("tcp", srv.addr)
	if err != nil {
		srv.logger.Fatal().AnErr("Listening", err).Send()
	}
	srv.listener = ln
}
func (srv *ScrutinioServer) setupOpsServer() {
	srv.opsServer = &http.Server{
		Addr:         net.JoinHostPort("", srv.OpsPort),
		Handler:      server.NewOpsRouter(srv.store),
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}
func (srv *ScrutinioServer) Setup() {
	srv.setupLogger()
	srv.setupStore()
	srv.setupDispatcher()
	srv.setupOpsServer()
}
func (srv *ScrutinioServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.dispatcher.Shutdown(ctx); err != nil {
		srv.logger.Error().
			Err(err).
			Msg("Error shutting down dispatcher")
	}
	if err := srv.opsServer.Shutdown(ctx); err != nil {
		srv.logger.Error().
			Err(err).
			Msg("Error shutting down ops server")
	}
	srv.store.Close()
}
func (srv *ScrutinioServer) Run() {
	srv.logger.Info().Str("server_address", srv.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go srv.dispatcher.Serve(srv.listener)
	go srv.opsServer.ListenAndServe()
	srv.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	srv.logger.Info().Msg("Shutting down gracefully")
	srv.Shutdown()
}
