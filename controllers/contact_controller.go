package controllers

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/lifedrop-go/config"
)

// Contact forwards a public contact-form message to the admin mailbox.
func Contact(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name    string `json:"name" binding:"required"`
			Email   string `json:"email" binding:"required,email"`
			Message string `json:"message" binding:"required,min=10,max=5000"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cfg.Mailer == nil || cfg.AdminEmail == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging not configured"})
			return
		}

		ctx, cancel := requestContext(c, 15*time.Second)
		defer cancel()

		body := fmt.Sprintf("<p><b>%s</b> &lt;%s&gt; wrote:</p><p>%s</p>",
			html.EscapeString(input.Name), html.EscapeString(input.Email), html.EscapeString(input.Message))
		if err := cfg.Mailer.Send(ctx, cfg.AdminEmail, "LifeDrop contact: "+input.Name, body); err != nil {
			cfg.Logger.WithError(err).Error("contact message delivery failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not send message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"message": "message sent"})
	}
}
