package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// labels that count as "there is food in this picture"
var foodLabels = []string{"food", "meal", "dish", "plate", "fruit", "vegetable", "bread", "meat", "dessert", "snack", "drink", "beverage", "salad", "pizza", "breakfast", "lunch", "dinner"}

// FoodDetector decides whether a photo shows a meal before it goes to the assistant.
type FoodDetector interface {
	LooksLikeFood(ctx context.Context, image []byte) (bool, []string, error)
}

type RekognitionService struct {
	client *rekognition.Client
}

func NewRekognitionService(ctx context.Context, region string) (*RekognitionService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for rekognition: %w", err)
	}
	return &RekognitionService{client: rekognition.NewFromConfig(cfg)}, nil
}

// RecognizeLabels returns the top labels for raw image bytes.
func (r *RekognitionService) RecognizeLabels(ctx context.Context, image []byte) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}
	var labels []string
	for _, l := range out.Labels {
		labels = append(labels, aws.ToString(l.Name))
	}
	return labels, nil
}

func (r *RekognitionService) LooksLikeFood(ctx context.Context, image []byte) (bool, []string, error) {
	labels, err := r.RecognizeLabels(ctx, image)
	if err != nil {
		return false, nil, err
	}
	return HasFoodLabel(labels), labels, nil
}

func HasFoodLabel(labels []string) bool {
	for _, l := range labels {
		l = strings.ToLower(l)
		for _, f := range foodLabels {
			if strings.Contains(l, f) {
				return true
			}
		}
	}
	return false
}
