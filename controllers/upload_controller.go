package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/lifedrop-go/config"
	utils "github.com/phillip/lifedrop-go/utils"
)

func UploadImage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := uploadFormImage(c, cfg, "image", utils.FolderUploads)
		if errors.Is(err, errImagesDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "details": err.Error()})
			return
		}
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
