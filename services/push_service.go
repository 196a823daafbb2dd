package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brfrauches/augmend-71119/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PushService delivers notifications to registered phones through SNS.
type PushService struct {
	db             *gorm.DB
	sns            *awssns.Client
	fcmPlatformArn string
	log            *zap.Logger
}

func NewPushService(ctx context.Context, db *gorm.DB, region, fcmArn string, log *zap.Logger) (*PushService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for sns: %w", err)
	}
	return &PushService{
		db:             db,
		sns:            awssns.NewFromConfig(cfg),
		fcmPlatformArn: fcmArn,
		log:            log,
	}, nil
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required"` // "android" | "ios"
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

func (p *PushService) platformArn(platform string) (string, error) {
	switch strings.ToLower(platform) {
	case "android", "ios":
		if p.fcmPlatformArn == "" {
			return "", errors.New("SNS_FCM_ARN not set")
		}
		return p.fcmPlatformArn, nil
	default:
		return "", invalidf("unknown platform %q", platform)
	}
}

func (p *PushService) RegisterDevice(ctx context.Context, userID uuid.UUID, req RegisterDeviceReq) (*models.UserDevice, error) {
	appArn, err := p.platformArn(req.Platform)
	if err != nil {
		return nil, err
	}

	out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(appArn),
		Token:                  aws.String(req.Token),
	})
	if err != nil {
		return nil, fmt.Errorf("create platform endpoint: %w", err)
	}

	hash := tokenHash(req.Token)
	var dev models.UserDevice
	err = p.db.WithContext(ctx).Where("user_id = ? AND token_hash = ?", userID, hash).First(&dev).Error
	switch {
	case err == nil:
		dev.EndpointARN = aws.ToString(out.EndpointArn)
		dev.Platform = strings.ToLower(req.Platform)
		dev.Enabled = true
		if err := p.db.WithContext(ctx).Save(&dev).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		dev = models.UserDevice{
			UserID:      userID,
			Platform:    strings.ToLower(req.Platform),
			TokenHash:   hash,
			EndpointARN: aws.ToString(out.EndpointArn),
			Enabled:     true,
		}
		if err := p.db.WithContext(ctx).Create(&dev).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &dev, nil
}

// SetEnabled turns push delivery on or off for every device of the user.
func (p *PushService) SetEnabled(ctx context.Context, userID uuid.UUID, enabled bool) (int64, error) {
	res := p.db.WithContext(ctx).Model(&models.UserDevice{}).
		Where("user_id = ?", userID).
		Update("enabled", enabled)
	return res.RowsAffected, res.Error
}

func (p *PushService) PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	var endpoints []models.UserDevice
	if err := p.db.WithContext(ctx).Where("user_id = ? AND enabled = ?", userID, true).Find(&endpoints).Error; err != nil {
		p.log.Warn("load devices", zap.Error(err))
		return
	}
	if len(endpoints) == 0 {
		return
	}

	gcm, _ := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	raw, _ := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	for _, d := range endpoints {
		_, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			p.log.Warn("sns publish", zap.String("device", d.ID.String()), zap.Error(err))
		}
	}
}
