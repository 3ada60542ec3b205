// Package rpc is the RPC adapter contract of §4.K: it holds a
// non-owning reference to the controller façade and maps its own wire
// format to sub-controller calls. The wire format itself is out of
// scope (§1's Non-goals) — this package is the seam a concrete RPC
// transport (gRPC, JSON-RPC, whatever the deployment picks) is wired
// into, not a working server.
package rpc

import (
	"log"

	"github.com/schollz/sushigo/internal/controller"
)

// Server holds the façade reference every RPC method ultimately reads
// or mutates through. It has no transport of its own; Listen is a
// placeholder a real adapter replaces with its framework's serve loop.
type Server struct {
	logger *log.Logger
	facade *controller.Facade
}

func New(logger *log.Logger, facade *controller.Facade) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger, facade: facade}
}

// Facade exposes the non-owning façade reference to a concrete
// transport implementation built on top of Server.
func (s *Server) Facade() *controller.Facade {
	return s.facade
}

// Listen logs that no RPC transport is wired in. A concrete deployment
// replaces this with its framework's accept loop; the contract sushigo
// promises such a transport is exactly Server.Facade().
func (s *Server) Listen(addr string) error {
	s.logger.Printf("rpc: no transport wired in, listen address %q has no effect", addr)
	return nil
}
