package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	models "github.com/phillip/lifedrop-go/models"
	utils "github.com/phillip/lifedrop-go/utils"
)

const (
	UsersCollection         = "users"
	RequestsCollection      = "donation_requests"
	BlogsCollection         = "blogs"
	VolunteersCollection    = "volunteer_applications"
	FundingsCollection      = "fundings"
	NotificationsCollection = "notifications"
)

// Env is everything read from the process environment.
type Env struct {
	Port        string        `env:"PORT,default=8080"`
	MongoURI    string        `env:"MONGO_URI,required"`
	DBName      string        `env:"DB_NAME,default=lifedrop"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTTTL      time.Duration `env:"JWT_TTL,default=168h"`
	CORSOrigins []string      `env:"CORS_ORIGINS,default=http://localhost:5173"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	Currency        string `env:"FUNDING_CURRENCY,default=usd"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunKey    string `env:"MAILGUN_KEY"`
	ZeptoAPIURL   string `env:"ZEPTO_API_URL"`
	ZeptoAPIKey   string `env:"ZEPTO_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM,default=LifeDrop <noreply@lifedrop.app>"`
	AdminEmail    string `env:"ADMIN_EMAIL"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=20"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Config is shared by every handler: settings plus connected clients.
type Config struct {
	Env

	MongoClient *mongo.Client
	Logger      *logrus.Logger

	Images   utils.ImageStore
	Mailer   utils.Mailer
	Payments utils.Payments
	Identity utils.IdentityVerifier
}

// LoadEnv reads .env (if present) and decodes the environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found, using process environment")
	}
	if err := envdecode.Decode(&env); err != nil {
		return env, fmt.Errorf("decode environment: %w", err)
	}
	return env, nil
}

// Load builds a ready Config: logger, Mongo connection and the external
// service clients. Services without credentials fall back to disabled
// implementations so the API still boots in development.
func Load(ctx context.Context) (*Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:    env,
		Logger: utils.NewLogger(env.LogLevel, env.LogFormat),
	}

	client, err := Connect(ctx, env.MongoURI)
	if err != nil {
		return nil, err
	}
	cfg.MongoClient = client

	if env.CloudinaryCloudName != "" {
		store, err := utils.NewCloudinaryStore(env.CloudinaryCloudName, env.CloudinaryAPIKey, env.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		cfg.Images = store
	} else {
		cfg.Logger.Warn("CLOUDINARY_CLOUD_NAME not set, image uploads disabled")
	}

	switch {
	case env.MailgunDomain != "" && env.MailgunKey != "":
		cfg.Mailer = utils.NewMailgunMailer(env.MailgunDomain, env.MailgunKey, env.EmailFrom)
	case env.ZeptoAPIURL != "" && env.ZeptoAPIKey != "":
		cfg.Mailer = &utils.ZeptoMailer{APIURL: env.ZeptoAPIURL, APIKey: env.ZeptoAPIKey, From: env.EmailFrom, Logger: cfg.Logger}
	default:
		cfg.Mailer = utils.LogMailer{Logger: cfg.Logger}
	}

	if env.StripeSecretKey != "" {
		cfg.Payments = utils.NewStripePayments(env.StripeSecretKey)
	} else {
		cfg.Logger.Warn("STRIPE_SECRET_KEY not set, funding disabled")
	}

	if env.FirebaseProjectID != "" {
		verifier, err := utils.NewFirebaseVerifier(ctx, env.FirebaseProjectID, env.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		cfg.Identity = verifier
	} else {
		cfg.Logger.Warn("FIREBASE_PROJECT_ID not set, token exchange disabled")
	}

	return cfg, nil
}

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func (c *Config) Collection(name string) *mongo.Collection {
	return c.MongoClient.Database(c.DBName).Collection(name)
}

// EnsureIndexes creates the unique and lookup indexes the handlers rely on.
func (c *Config) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "blood_group", Value: 1}}},
		},
		RequestsCollection: {
			{Keys: bson.D{{Key: "requester_email", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		FundingsCollection: {
			{Keys: bson.D{{Key: "payment_intent_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		// At most one pending application per email.
		VolunteersCollection: {
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "status", Value: models.ApplicationPending}}),
			},
		},
	}

	for name, specs := range indexes {
		if _, err := c.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
