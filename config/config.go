package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Providers ProvidersConfig `yaml:"providers"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "kafka" or "mqtt"
	Kafka               KafkaConfig   `yaml:"kafka"`
	MQTT                MQTTConfig    `yaml:"mqtt"`
	RecordsTopic        string        `yaml:"records_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// ProvidersConfig holds one block per upstream telematics provider.
type ProvidersConfig struct {
	FCA         FCAConfig         `yaml:"fca"`
	SiriusXM    SiriusXMConfig    `yaml:"siriusxm"`
	Verizon     VerizonConfig     `yaml:"verizon"`
	Aeris       AerisConfig       `yaml:"aeris"`
	Vodafone    VodafoneConfig    `yaml:"vodafone"`
	TMNA        TMNAConfig        `yaml:"tmna"`
	WirelessCar WirelessCarConfig `yaml:"wirelesscar"`
}

type FCAConfig struct {
	BaseURL                string        `yaml:"base_url"`
	APIKey                 string        `yaml:"api_key"`
	BcallDataURL           string        `yaml:"bcall_data_url"`
	TerminateBcallURL      string        `yaml:"terminate_bcall_url"`
	MaxRetries             int           `yaml:"max_retries"`
	RetryDelay             time.Duration `yaml:"retry_delay"`
	MaxANILength           int           `yaml:"max_ani_length"`
	PollLookback           time.Duration `yaml:"poll_lookback"`
	FreshnessWindowMinutes int           `yaml:"freshness_window_minutes"`
	RootCert               string        `yaml:"root_cert"`
	Timeout                time.Duration `yaml:"timeout"`
}

type SiriusXMConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Namespace string        `yaml:"namespace"`
	RootCert  string        `yaml:"root_cert"`
	Timeout   time.Duration `yaml:"timeout"`
}

type VerizonConfig struct {
	BaseURL                string        `yaml:"base_url"`
	Namespace              string        `yaml:"namespace"`
	SourceName             string        `yaml:"source_name"`
	TargetName             string        `yaml:"target_name"`
	FreshnessCheck         bool          `yaml:"freshness_check"`
	FreshnessWindowMinutes int           `yaml:"freshness_window_minutes"`
	RootCert               string        `yaml:"root_cert"`
	Timeout                time.Duration `yaml:"timeout"`
}

type AerisConfig struct {
	BaseURL                string        `yaml:"base_url"`
	FreshnessCheck         bool          `yaml:"freshness_check"`
	FreshnessWindowMinutes int           `yaml:"freshness_window_minutes"`
	RootCert               string        `yaml:"root_cert"`
	Timeout                time.Duration `yaml:"timeout"`
}

// VodafoneConfig is empty: the provider pushes data and is served from the store.
type VodafoneConfig struct{}

type TMNAConfig struct {
	BaseURL      string        `yaml:"base_url"`
	TerminateURL string        `yaml:"terminate_url"`
	RootCert     string        `yaml:"root_cert"`
	Timeout      time.Duration `yaml:"timeout"`
}

type WirelessCarConfig struct {
	BaseURL string `yaml:"base_url"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "cvgateway.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "cvgateway",
				User:     "cvgateway",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			TTL:     24 * time.Hour,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Backend: "kafka",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "cvgateway",
			},
			RecordsTopic:        "cvgateway.records",
			OutboxDrainInterval: 5 * time.Second,
		},
		Providers: ProvidersConfig{
			FCA: FCAConfig{
				BcallDataURL:      "/bcall/data",
				TerminateBcallURL: "/bcall/terminate",
				MaxRetries:        3,
				RetryDelay:        time.Second,
				MaxANILength:      11,
				PollLookback:      time.Minute,
				Timeout:           10 * time.Second,
			},
			SiriusXM: SiriusXMConfig{
				Namespace: "http://services.siriusxm.com/telematics/roadside",
				Timeout:   10 * time.Second,
			},
			Verizon: VerizonConfig{
				Namespace:              "http://verizon.com/telematics/vehiclelocation",
				SourceName:             "CVGATEWAY",
				TargetName:             "VERIZON",
				FreshnessWindowMinutes: 2,
				Timeout:                10 * time.Second,
			},
			Aeris: AerisConfig{
				FreshnessWindowMinutes: 2,
				Timeout:                10 * time.Second,
			},
			TMNA: TMNAConfig{
				TerminateURL: "/terminate",
				Timeout:      10 * time.Second,
			},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ProvidersSnapshot returns a copy of the provider settings. Adapters hold the
// copy, so later edits never change an adapter mid-request.
func (c *Config) ProvidersSnapshot() ProvidersConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Providers
}

// SetProviders replaces the provider settings for subsequent requests.
func (c *Config) SetProviders(p ProvidersConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Providers = p
}
