package app

import (
	"context"

	"github.com/a-peyrard/haywire"
)

type (
	Config struct {
		URL string
	}

	Logger struct{}

	Handler interface {
		Handle() string
	}

	Clock struct{}

	Server struct {
		handlers []Handler
	}

	helloHandler struct{}
)

func (helloHandler) Handle() string {
	return "hello"
}

// @binding scope=singleton
// NewConfig loads the configuration
// of the application.
func NewConfig() (*Config, error) {
	return &Config{}, nil
}

// @binding named="audit"
func NewLogger() *Logger {
	return &Logger{}
}

// @binding named="hello" scope=optimistic
func newHelloHandler(logger *Logger) Handler { // @inject named="audit"
	return helloHandler{}
}

// @binding tag="wall"
func NewClock(ctx context.Context) (*Clock, error) {
	return &Clock{}, nil
}

// @binding scope=singleton
// NewServer serves every handler.
func NewServer(
	ctx context.Context,
	cfg *Config,
	handlers []Handler, // @inject all=true
	clock haywire.AsyncSupplier[*Clock], // @inject supplier=async tag="wall"
	logger haywire.Optional[*Logger], // @inject optional=true
) (*Server, error) {
	return &Server{handlers: handlers}, nil
}

// NewIgnored is not annotated.
func NewIgnored() *Server {
	return nil
}
