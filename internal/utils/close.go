package utils

import (
	"io"

	"github.com/MrSnakeDoc/yangfinder/internal/logger"
)

// CloseLogged closes c and logs a failure. what names the resource.
// Nil closers are skipped so optional components can be passed as-is.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
		return
	}
	log.Debug("closed", logger.String("resource", what))
}
