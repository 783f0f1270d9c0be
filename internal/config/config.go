package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "config/local.yaml"

type Config struct {
	Env           string         `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger        string         `yaml:"jaeger" env:"JAEGER"`
	OfferCacheTTL time.Duration  `yaml:"offer_cache_ttl" env:"OFFER_CACHE_TTL" env-default:"15m"`
	Log           LogConfig      `yaml:"log"`
	GRPC          GRPCConfig     `yaml:"grpc"`
	Metrics       MetricsConfig  `yaml:"metrics"`
	Redis         RedisConfig    `yaml:"redis"`
	Amadeus       AmadeusConfig  `yaml:"amadeus"`
	Ranking       RankingConfig  `yaml:"ranking"`
	Planner       PlannerConfig  `yaml:"planner"`
	Storage       StorageConfig  `yaml:"storage"`
	LLM           LLMConfig      `yaml:"llm"`
	Serper        SerperConfig   `yaml:"serper"`
	Scraper       ScraperConfig  `yaml:"scraper"`
	Email         EmailConfig    `yaml:"email"`
	Airports      AirportsConfig `yaml:"airports"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type GRPCConfig struct {
	Host    string        `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port    int           `yaml:"port" env:"GRPC_PORT" env-default:"44050"`
	Timeout time.Duration `yaml:"timeout" env:"GRPC_TIMEOUT" env-default:"30s"`
}

func (c GRPCConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR" env-default:":9090"`
}

// RedisConfig with an empty Addr disables the offer cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type AmadeusConfig struct {
	BaseURL      string        `yaml:"base_url" env:"AMADEUS_BASE_URL" env-default:"https://test.api.amadeus.com"`
	ClientID     string        `yaml:"client_id" env:"AMADEUS_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET"`
	Currency     string        `yaml:"currency" env:"AMADEUS_CURRENCY" env-default:"EUR"`
	MaxOffers    int           `yaml:"max_offers" env:"AMADEUS_MAX_OFFERS" env-default:"20"`
	Timeout      time.Duration `yaml:"timeout" env:"AMADEUS_TIMEOUT" env-default:"20s"`
}

type RankingConfig struct {
	TopN int `yaml:"top_n" env:"RANKING_TOP_N" env-default:"2"`
}

type PlannerConfig struct {
	// FlightServiceAddr points the planner at a running `serve` instance; empty
	// means flights are searched in-process.
	FlightServiceAddr string `yaml:"flight_service_addr" env:"FLIGHT_SERVICE_ADDR"`
	SearchIDAttempts  int    `yaml:"search_id_attempts" env:"SEARCH_ID_ATTEMPTS" env-default:"100"`
}

type StorageConfig struct {
	Driver   string         `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type MongoConfig struct {
	URI        string        `yaml:"uri" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database   string        `yaml:"database" env:"MONGODB_DATABASE" env-default:"trip-cloud"`
	Collection string        `yaml:"collection" env:"MONGODB_COLLECTION" env-default:"customer_entries"`
	Timeout    time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT" env-default:"10s"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"cocoplanner"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

func (c PostgresConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type LLMConfig struct {
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"LLM_API_KEY"`
	Model       string        `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"5m"`
}

type SerperConfig struct {
	BaseURL string        `yaml:"base_url" env:"SERPER_BASE_URL" env-default:"https://google.serper.dev"`
	APIKey  string        `yaml:"api_key" env:"SERPER_API_KEY"`
	Results int           `yaml:"results" env:"SERPER_RESULTS" env-default:"5"`
	Timeout time.Duration `yaml:"timeout" env:"SERPER_TIMEOUT" env-default:"10s"`
}

type ScraperConfig struct {
	MaxPages int           `yaml:"max_pages" env:"SCRAPER_MAX_PAGES" env-default:"2"`
	MaxChars int           `yaml:"max_chars" env:"SCRAPER_MAX_CHARS" env-default:"4000"`
	Timeout  time.Duration `yaml:"timeout" env:"SCRAPER_TIMEOUT" env-default:"10s"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled" env:"EMAIL_ENABLED" env-default:"false"`
	Sender  string `yaml:"sender" env:"EMAIL_SENDER"`
	Region  string `yaml:"region" env:"AWS_REGION" env-default:"eu-central-1"`
}

type AirportsConfig struct {
	Path       string `yaml:"path" env:"AIRPORTS_PATH" env-default:"data/airport_codes.csv"`
	MaxResults int    `yaml:"max_results" env:"AIRPORTS_MAX_RESULTS" env-default:"20"`
}

// ResolvePath picks the config file: explicit flag value, then CONFIG_PATH, then
// config/local.yaml.
func ResolvePath(flagValue string) string {
	res := flagValue
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = defaultConfigPath
	}
	return res
}

func LoadByPath(configPath string) (*Config, error) {
	const op = "config.LoadByPath"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read the config: %w", op, err)
	}

	return &cfg, nil
}

func MustLoadByPath(configPath string) *Config {
	cfg, err := LoadByPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
