package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cuphut/Parking-App/internal/service"

	"github.com/gin-gonic/gin"
)

type DetectHandler struct {
	detectionService *service.DetectionService
}

func NewDetectHandler(detectionService *service.DetectionService) *DetectHandler {
	return &DetectHandler{detectionService: detectionService}
}

// POST /detect-image (multipart image file)
func (h *DetectHandler) ProcessImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image format"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
		return
	}
	defer f.Close()

	imageBytes, err := io.ReadAll(f)
	if err != nil || len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty image upload"})
		return
	}

	response, err := h.detectionService.ProcessImage(c.Request.Context(), imageBytes)
	if err != nil {
		if errors.Is(err, service.ErrRecognitionTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process image"})
		return
	}
	c.JSON(http.StatusOK, response)
}
