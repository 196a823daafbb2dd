package config

import (
	"fmt"
	"time"

	"github.com/brfrauches/augmend-71119/models"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

type Config struct {
	Port   string `env:"PORT,default=8080"`
	AppEnv string `env:"APP_ENV,default=production"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST,default=localhost"`
	DBPort      string `env:"DB_PORT,default=5432"`
	DBUser      string `env:"DB_USER,default=postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME,default=postgres"`
	DBSSLMode   string `env:"DB_SSLMODE,default=disable"`

	SupabaseURL       string `env:"SUPABASE_URL"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`

	AIGatewayURL string        `env:"AI_GATEWAY_URL,default=https://ai.gateway.lovable.dev/v1/chat/completions"`
	AIGatewayKey string        `env:"AI_GATEWAY_KEY"`
	AIModel      string        `env:"AI_MODEL,default=google/gemini-2.5-flash"`
	AITimeout    time.Duration `env:"AI_TIMEOUT,default=60s"`
	AIRatePerMin int           `env:"AI_RATE_PER_MIN,default=20"`

	RedisURL  string        `env:"REDIS_URL"`
	ImportTTL time.Duration `env:"IMPORT_TTL,default=30m"`

	AWSRegion          string `env:"AWS_REGION,default=us-east-1"`
	S3Bucket           string `env:"S3_BUCKET"`
	S3Region           string `env:"S3_REGION"`
	CDNURL             string `env:"CDN_URL"`
	RekognitionEnabled bool   `env:"REKOGNITION_ENABLED,default=false"`
	SNSFCMArn          string `env:"SNS_FCM_ARN"`

	CORSOrigins  []string `env:"CORS_ORIGINS,default=*"`
	ReminderCron string   `env:"REMINDER_CRON,default=0 9 * * *"`
}

// Load reads .env when present and decodes the environment into Config.
func Load(log *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env not loaded, using process environment", zap.Error(err))
	}
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	if cfg.S3Region == "" {
		cfg.S3Region = cfg.AWSRegion
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func InitDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.HealthMarker{},
		&models.MarkerValue{},
		&models.Supplement{},
		&models.SupplementLog{},
		&models.Workout{},
		&models.WorkoutExercise{},
		&models.WorkoutCheckin{},
		&models.NutritionMeal{},
		&models.NutritionItem{},
		&models.NutritionAILog{},
		&models.WaterLog{},
		&models.BodyMeasurement{},
		&models.BodySegment{},
		&models.Alert{},
		&models.UserDevice{},
	)
	if err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	log.Info("database ready")
	DB = db
	return db, nil
}
