package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"
	"github.com/septivank/petdoor-curfew-worker/internal/battery"
	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"github.com/septivank/petdoor-curfew-worker/internal/season"
	"github.com/septivank/petdoor-curfew-worker/internal/surepet"
	"github.com/septivank/petdoor-curfew-worker/internal/sunapi"
	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up next to the executable
const FileName = "config.yaml"

// Config holds all application configuration
type Config struct {
	ServiceName string                 `mapstructure:"service_name"`
	LogLevel    string                 `mapstructure:"log_level"`
	Schedule    string                 `mapstructure:"schedule"`
	Season      string                 `mapstructure:"season"`
	Seasons     map[string]season.Rule `mapstructure:"seasons"`
	Credentials CredentialsConfig      `mapstructure:"credentials"`
	Device      DeviceConfig           `mapstructure:"device"`
	Sun         SunConfig              `mapstructure:"sun"`
	Time        TimeConfig             `mapstructure:"time"`
	Battery     BatteryConfig          `mapstructure:"battery"`
	Mail        MailConfig             `mapstructure:"mail"`
	HTTP        HTTPConfig             `mapstructure:"http"`
	Database    DatabaseConfig         `mapstructure:"database"`
	RabbitMQ    RabbitMQConfig         `mapstructure:"rabbitmq"`
	MQTT        MQTTConfig             `mapstructure:"mqtt"`

	envProblems []string
}

// CredentialsConfig holds the device API account
type CredentialsConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// DeviceConfig selects the API and the door
type DeviceConfig struct {
	APIURL         string `mapstructure:"api_url"`
	NameMarker     string `mapstructure:"name_marker"`
	ClientDeviceID string `mapstructure:"client_device_id"`
}

// SunConfig locates the door for the sun-time source
type SunConfig struct {
	APIURL    string  `mapstructure:"api_url"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

// TimeConfig selects the local frame for device commands.
// UTCOffset (a Go duration such as "1h" or "-30m") wins over Timezone.
type TimeConfig struct {
	Timezone  string `mapstructure:"timezone"`
	UTCOffset string `mapstructure:"utc_offset"`
}

// BatteryConfig holds telemetry interpretation settings
type BatteryConfig struct {
	Encoding       string  `mapstructure:"encoding"`
	AlertThreshold int     `mapstructure:"alert_threshold"`
	EmptyVoltage   float64 `mapstructure:"empty_voltage"`
	FullVoltage    float64 `mapstructure:"full_voltage"`
}

// MailConfig holds alert relay settings; mail is disabled without a login
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
	Receiver string `mapstructure:"receiver"`
}

// HTTPConfig holds outbound request settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds the optional run journal connection
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RabbitMQConfig holds optional event publishing settings
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// MQTTConfig holds optional state publishing settings
type MQTTConfig struct {
	Broker    string `mapstructure:"broker"`
	ClientID  string `mapstructure:"client_id"`
	TopicRoot string `mapstructure:"topic_root"`
}

// Defaults returns the configuration the door ran with before any file or env
func Defaults() *Config {
	return &Config{
		ServiceName: "petdoor-curfew-worker",
		LogLevel:    "info",
		Season:      string(season.Winter),
		Seasons:     defaultSeasons(),
		Device: DeviceConfig{
			APIURL:         surepet.DefaultBaseURL,
			NameMarker:     "chatiere",
			ClientDeviceID: "1",
		},
		Sun: SunConfig{
			APIURL:    sunapi.DefaultURL,
			Latitude:  49.41794,
			Longitude: 2.82606,
		},
		Battery: BatteryConfig{
			Encoding:       "voltage",
			AlertThreshold: 0,
			EmptyVoltage:   battery.DefaultEmptyVoltage,
			FullVoltage:    battery.DefaultFullVoltage,
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "petdoor.curfew.events",
		},
		MQTT: MQTTConfig{
			ClientID:  "petdoor-curfew-worker",
			TopicRoot: "home/petdoor",
		},
	}
}

func defaultSeasons() map[string]season.Rule {
	seasons := make(map[string]season.Rule)
	for name, rule := range season.DefaultRules() {
		seasons[string(name)] = rule
	}
	return seasons
}

// Load loads the config file next to the executable (or CURFEW_CONFIG),
// then applies environment overrides and validates the result
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// Path returns the config file location
func Path() string {
	if p := os.Getenv("CURFEW_CONFIG"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// LoadFrom loads configuration from path. A missing file is not an error:
// everything can come from the environment instead.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if err := cfg.mergeFile(path); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw == nil {
		return nil
	}

	// seasons are merged per key so a partial entry keeps the rest of its default
	rawSeasons, err := seasonEntries(raw["seasons"])
	if err != nil {
		return err
	}
	delete(raw, "seasons")

	if err := decode(raw, c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	for name, entry := range rawSeasons {
		name = strings.ToLower(strings.TrimSpace(name))
		rule, known := c.Seasons[name]
		if !known {
			if missing := missingRuleKeys(entry); len(missing) > 0 {
				return fmt.Errorf("season %q has no default and is missing %s", name, strings.Join(missing, ", "))
			}
		}
		if err := decode(entry, &rule); err != nil {
			return fmt.Errorf("failed to decode season %q in %s: %w", name, path, err)
		}
		if c.Seasons == nil {
			c.Seasons = make(map[string]season.Rule)
		}
		c.Seasons[name] = rule
	}
	return nil
}

func decode(input interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

var ruleKeys = []string{"sunrise_delta_hours", "sunset_delta_hours", "unlock_ceiling", "lock_floor"}

func seasonEntries(value interface{}) (map[string]map[string]interface{}, error) {
	if value == nil {
		return nil, nil
	}
	table, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("seasons must be a mapping, got %T", value)
	}
	entries := make(map[string]map[string]interface{}, len(table))
	for name, v := range table {
		entry, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("season %q must be a mapping, got %T", name, v)
		}
		entries[name] = entry
	}
	return entries, nil
}

func missingRuleKeys(entry map[string]interface{}) []string {
	var missing []string
	for _, key := range ruleKeys {
		if _, ok := entry[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func (c *Config) applyEnv() {
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Schedule = getEnv("CURFEW_SCHEDULE", c.Schedule)
	c.Season = getEnv("CURFEW_SEASON", c.Season)

	c.Credentials.Email = getEnv("SUREPET_EMAIL", c.Credentials.Email)
	c.Credentials.Password = getEnv("SUREPET_PASSWORD", c.Credentials.Password)
	c.Device.APIURL = getEnv("SUREPET_API_URL", c.Device.APIURL)
	c.Device.NameMarker = getEnv("DEVICE_NAME_MARKER", c.Device.NameMarker)

	c.Sun.APIURL = getEnv("SUN_API_URL", c.Sun.APIURL)
	c.Sun.Latitude = c.getEnvAsFloat("SUN_LATITUDE", c.Sun.Latitude)
	c.Sun.Longitude = c.getEnvAsFloat("SUN_LONGITUDE", c.Sun.Longitude)

	c.Time.Timezone = getEnv("LOCAL_TIMEZONE", c.Time.Timezone)
	c.Time.UTCOffset = getEnv("LOCAL_UTC_OFFSET", c.Time.UTCOffset)

	c.Battery.Encoding = getEnv("BATTERY_ENCODING", c.Battery.Encoding)
	c.Battery.AlertThreshold = c.getEnvAsInt("BATTERY_ALERT_THRESHOLD", c.Battery.AlertThreshold)
	c.Battery.EmptyVoltage = c.getEnvAsFloat("BATTERY_EMPTY_VOLTAGE", c.Battery.EmptyVoltage)
	c.Battery.FullVoltage = c.getEnvAsFloat("BATTERY_FULL_VOLTAGE", c.Battery.FullVoltage)

	c.Mail.Host = getEnv("MAIL_HOST", c.Mail.Host)
	c.Mail.Port = c.getEnvAsInt("MAIL_PORT", c.Mail.Port)
	c.Mail.Login = getEnv("MAIL_LOGIN", c.Mail.Login)
	c.Mail.Password = getEnv("MAIL_PASSWORD", c.Mail.Password)
	c.Mail.Sender = getEnv("MAIL_SENDER", c.Mail.Sender)
	c.Mail.Receiver = getEnv("MAIL_RECEIVER", c.Mail.Receiver)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)
	c.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", c.RabbitMQ.Exchange)
	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.TopicRoot = getEnv("MQTT_TOPIC_ROOT", c.MQTT.TopicRoot)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	problems := append([]string(nil), c.envProblems...)

	if c.Credentials.Email == "" {
		problems = append(problems, "credentials email is required (SUREPET_EMAIL)")
	}
	if c.Credentials.Password == "" {
		problems = append(problems, "credentials password is required (SUREPET_PASSWORD)")
	}
	if strings.TrimSpace(c.Device.NameMarker) == "" {
		problems = append(problems, "device name marker cannot be empty")
	}

	if c.Sun.Latitude < -90 || c.Sun.Latitude > 90 {
		problems = append(problems, fmt.Sprintf("latitude must be between -90 and 90, got: %v", c.Sun.Latitude))
	}
	if c.Sun.Longitude < -180 || c.Sun.Longitude > 180 {
		problems = append(problems, fmt.Sprintf("longitude must be between -180 and 180, got: %v", c.Sun.Longitude))
	}

	if c.Time.UTCOffset != "" {
		if _, err := time.ParseDuration(c.Time.UTCOffset); err != nil {
			problems = append(problems, fmt.Sprintf("invalid utc offset %q: %v", c.Time.UTCOffset, err))
		}
	} else if c.Time.Timezone != "" {
		if _, err := time.LoadLocation(c.Time.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("invalid timezone %q: %v", c.Time.Timezone, err))
		}
	}

	if policy, err := c.Policy(); err != nil {
		problems = append(problems, err.Error())
	} else if _, err := policy.Lookup(season.Season(c.Season)); err != nil {
		problems = append(problems, err.Error())
	}

	if c.Battery.AlertThreshold < 0 || c.Battery.AlertThreshold > 100 {
		problems = append(problems, fmt.Sprintf("battery alert threshold must be between 0-100, got: %d", c.Battery.AlertThreshold))
	}
	if _, err := c.BatteryEncoding(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.MailEnabled() {
		if c.Mail.Host == "" {
			problems = append(problems, "mail host is required when mail login is set")
		}
		if c.Mail.Port < 1 || c.Mail.Port > 65535 {
			problems = append(problems, fmt.Sprintf("mail port must be between 1-65535, got: %d", c.Mail.Port))
		}
		if c.Mail.Sender == "" || c.Mail.Receiver == "" {
			problems = append(problems, "mail sender and receiver are required when mail login is set")
		}
	}

	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid schedule %q: %v", c.Schedule, err))
		}
	}

	if c.HTTP.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("http timeout must be positive, got: %v", c.HTTP.Timeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: configuration validation failed:\n  - %s", errs.ErrConfiguration, strings.Join(problems, "\n  - "))
	}

	return nil
}

// Policy builds the season table
func (c *Config) Policy() (*season.Policy, error) {
	rules := make(map[season.Season]season.Rule, len(c.Seasons))
	for name, rule := range c.Seasons {
		rules[season.Season(name)] = rule
	}
	return season.NewPolicy(rules)
}

// BatteryEncoding resolves the configured telemetry encoding
func (c *Config) BatteryEncoding() (battery.Encoding, error) {
	return battery.ParseEncoding(c.Battery.Encoding, c.Battery.EmptyVoltage, c.Battery.FullVoltage)
}

// MailEnabled reports whether low-battery alerts can be emailed
func (c *Config) MailEnabled() bool {
	return c.Mail.Login != ""
}

// LocalConverter returns the time converter for a run starting at now.
// Without an explicit offset or timezone the host's zone is used.
func (c *Config) LocalConverter(now time.Time) timeofday.Converter {
	if c.Time.UTCOffset != "" {
		offset, _ := time.ParseDuration(c.Time.UTCOffset)
		return timeofday.NewConverter(offset)
	}
	loc := time.Local
	if c.Time.Timezone != "" {
		if l, err := time.LoadLocation(c.Time.Timezone); err == nil {
			loc = l
		}
	}
	return timeofday.ConverterAt(loc, now)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt keeps defaultValue on a parse failure and records it for Validate
func (c *Config) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		c.envProblems = append(c.envProblems, fmt.Sprintf("%s must be an integer, got: %q", key, valueStr))
		return defaultValue
	}
	return value
}

func (c *Config) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		c.envProblems = append(c.envProblems, fmt.Sprintf("%s must be a number, got: %q", key, valueStr))
		return defaultValue
	}
	return value
}
