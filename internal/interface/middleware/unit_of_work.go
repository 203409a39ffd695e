package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	pginfra "github.com/oksasatya/go-ddd-landing-pages/internal/infrastructure/postgres"
)

// UnitOfWork gives each request its own postgres.UnitOfWork. Writes the
// handler queued but never flushed are dropped when the request ends.
func UnitOfWork(db pginfra.Beginner, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := pginfra.NewUnitOfWork(db)
		c.Request = c.Request.WithContext(pginfra.WithUnitOfWork(c.Request.Context(), u))
		c.Next()
		if n := u.Pending(); n > 0 && logger != nil {
			logger.WithField("pending", n).WithField("path", c.FullPath()).Debug("unflushed writes discarded")
		}
	}
}
