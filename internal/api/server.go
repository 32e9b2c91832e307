package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/powchain/internal/blockchain"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests
const shutdownTimeout = 5 * time.Second

// Server serves the chain API over HTTP
type Server struct {
	controller *Controller
	server     *http.Server
}

// NewServer creates an HTTP server exposing the given chain
func NewServer(addr string, chain *blockchain.Blockchain) *Server {
	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	controller := NewController(chain)
	return &Server{
		controller: controller,
		server: &http.Server{
			Addr:    addr,
			Handler: controller.NewRouter(),
		},
	}
}

// Start begins serving in the background
func (s *Server) Start() {
	logrus.WithField("addr", s.server.Addr).Info("http server listening")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("error in http server")
		}
	}()
}

// Stop shuts the server down, waiting for in-flight requests to finish
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("error while shutting down http server")
	}
	logrus.Info("http server stopped")
}
