package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/plate"
	"github.com/cuphut/Parking-App/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

// PlateReader is the opaque recognition collaborator: raw image bytes in,
// zero or more deduplicated plate candidates out.
type PlateReader interface {
	ReadPlates(ctx context.Context, imageBytes []byte) ([]domain.PlateCandidate, error)
}

// Canonical Vietnamese plate shape: two digits, one or two letters, then
// the serial number.
var plateTextRegex = regexp.MustCompile(`^[0-9]{2}[A-Z]{1,2}[0-9]{3,5}$`)

// LPRService reads license plates with Rekognition text detection.
type LPRService struct {
	client        *rekognition.Client
	minConfidence float32
}

func NewLPRService(client *rekognition.Client, minConfidence float32) *LPRService {
	return &LPRService{client: client, minConfidence: minConfidence}
}

func (s *LPRService) ReadPlates(ctx context.Context, imageBytes []byte) ([]domain.PlateCandidate, error) {
	if s.client == nil {
		return nil, fmt.Errorf("rekognition client is not configured")
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	}

	result, err := s.client.DetectText(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	// Plates are often split across words, so lines are matched first and
	// duplicates collapse onto the canonical form keeping the best read.
	best := make(map[string]domain.PlateCandidate)
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}

		canonical := plate.Normalize(*detection.DetectedText)
		if !plateTextRegex.MatchString(canonical) {
			continue
		}

		confidence := *detection.Confidence
		if existing, ok := best[canonical]; ok && existing.Confidence >= confidence {
			continue
		}
		best[canonical] = domain.PlateCandidate{
			Text:       canonical,
			Confidence: confidence,
			Valid:      confidence >= s.minConfidence,
		}
	}

	candidates := make([]domain.PlateCandidate, 0, len(best))
	for _, candidate := range best {
		candidates = append(candidates, candidate)
	}

	logger.Log.Debug("plates read from image",
		zap.Int("text_detections", len(result.TextDetections)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}
