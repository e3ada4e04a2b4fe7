package router

import (
	"propdesk-service/internal/usecase"
	"propdesk-service/pkg/logger"
)

// FeedRouter routes stream requests to the handler for the named feed
type FeedRouter struct {
	handlers []usecase.FeedHandler
	logger   logger.Logger
}

// NewFeedRouter creates a new feed router
func NewFeedRouter(logger logger.Logger) *FeedRouter {
	return &FeedRouter{
		handlers: make([]usecase.FeedHandler, 0),
		logger:   logger,
	}
}

// Register registers a feed handler
func (r *FeedRouter) Register(handler usecase.FeedHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered feed handler", "handler", handler)
}

// GetHandler returns the handler for a feed name, or nil
func (r *FeedRouter) GetHandler(name string) usecase.FeedHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(name) {
			return handler
		}
	}
	return nil
}
