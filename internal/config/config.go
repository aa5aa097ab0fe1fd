package config

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg     *APIConfig
	once    sync.Once
	loadErr error
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	THIRD_PARTY    ThirdPartyConfig     `xml:"THIRD_PARTY"`

	// Secrets are never read from the XML file.
	Secrets Secrets `xml:"-"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port            int    `xml:"PORT"`
	Host            string `xml:"HOST"`
	Path            string `xml:"PATH"`
	TimeZone        string `xml:"TIME_ZONE"`
	EnableBasicAuth bool   `xml:"ENABLE_BASIC_AUTH"`
	LogDir          string `xml:"LOG_DIR"`
	RateLimit       int    `xml:"RATE_LIMIT"`
}

// AuthenticationConfig holds session settings.
type AuthenticationConfig struct {
	EnableTokenAuth bool `xml:"ENABLE_TOKEN_AUTH"`
	SessionTimeout  int  `xml:"SESSION_TIMEOUT"`
	MaxSessions     int  `xml:"MAX_SESSIONS"`
}

// DBConfig holds database connection settings for the results ledger.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	Driver     string       `xml:"DRIVER"`
	SSLMode    string       `xml:"SSL_MODE"`
	Names      DBNames      `xml:"NAMES"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBNames holds the names defined in the DB section.
type DBNames struct {
	TAICC string `xml:"TAICC,attr"`
}

// DBPassword holds password details.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// ThirdPartyConfig holds the non-secret settings of the external collaborators.
type ThirdPartyConfig struct {
	QuestionBank    string `xml:"QUESTION_BANK"`
	GenAIModel      string `xml:"GENAI_MODEL"`
	GenAIRatePerMin int    `xml:"GENAI_RATE_PER_MIN"`
	LogoURL         string `xml:"LOGO_URL"`
	PriceRupees     int64  `xml:"PRICE_RUPEES"`
	Currency        string `xml:"CURRENCY"`
	PollAttempts    int    `xml:"POLL_ATTEMPTS"`
	PollInterval    int    `xml:"POLL_INTERVAL_SECONDS"`
	SMTPHost        string `xml:"SMTP_HOST"`
	SMTPPort        int    `xml:"SMTP_PORT"`
}

// Secrets holds credentials supplied through the environment (or a .env file).
type Secrets struct {
	GeminiAPIKey       string
	RazorpayKeyID      string
	RazorpayKeySecret  string
	ServiceAccountFile string
	SpreadsheetID      string
	SheetName          string
	EmailSender        string
	EmailAppPassword   string
	SessionSecret      string
	AdminUser          string
	AdminPassword      string
}

// LoadConfig loads the XML configuration from the given file, then layers the
// environment on top. A missing file is not an error; defaults apply.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		_ = godotenv.Load()

		var data []byte
		f, openErr := os.Open(xmlPath)
		if openErr == nil {
			defer f.Close()
			data, loadErr = io.ReadAll(f)
			if loadErr != nil {
				return
			}
		} else if !errors.Is(openErr, os.ErrNotExist) {
			loadErr = openErr
			return
		}

		newCfg, parseErr := Parse(data)
		if parseErr != nil {
			loadErr = parseErr
			return
		}
		newCfg.ApplyEnv(os.LookupEnv)
		cfg = newCfg
	})

	if loadErr != nil {
		return nil, loadErr
	}
	if cfg == nil {
		return nil, os.ErrInvalid
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}

// Parse decodes XML configuration. Empty input yields the defaults.
func Parse(data []byte) (*APIConfig, error) {
	c := Default()
	if len(data) == 0 {
		return c, nil
	}
	if err := xml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	c.fillDefaults()
	return c, nil
}

// Default returns a configuration usable for local development.
func Default() *APIConfig {
	c := &APIConfig{}
	c.fillDefaults()
	return c
}

func (c *APIConfig) fillDefaults() {
	if c.Context.Host == "" {
		c.Context.Host = "0.0.0.0"
	}
	if c.Context.Port == 0 {
		c.Context.Port = 8080
	}
	if c.Context.LogDir == "" {
		c.Context.LogDir = "logs"
	}
	if c.Context.RateLimit == 0 {
		c.Context.RateLimit = 10
	}
	if c.Authentication.SessionTimeout == 0 {
		c.Authentication.SessionTimeout = 120
	}
	if c.Authentication.MaxSessions == 0 {
		c.Authentication.MaxSessions = 10000
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	tp := &c.THIRD_PARTY
	if tp.QuestionBank == "" {
		tp.QuestionBank = "questions_full.json"
	}
	if tp.GenAIModel == "" {
		tp.GenAIModel = "gemini-2.5-flash-lite-preview-09-2025"
	}
	if tp.GenAIRatePerMin == 0 {
		tp.GenAIRatePerMin = 30
	}
	if tp.LogoURL == "" {
		tp.LogoURL = "https://i.postimg.cc/441ZWPjs/Whats-App-Image-2025-02-20-at-11-29-36.jpg"
	}
	if tp.PriceRupees == 0 {
		tp.PriceRupees = 1
	}
	if tp.Currency == "" {
		tp.Currency = "INR"
	}
	if tp.PollAttempts == 0 {
		tp.PollAttempts = 12
	}
	if tp.PollInterval == 0 {
		tp.PollInterval = 5
	}
	if tp.SMTPHost == "" {
		tp.SMTPHost = "smtp.gmail.com"
	}
	if tp.SMTPPort == 0 {
		tp.SMTPPort = 587
	}
}

// ApplyEnv reads secrets and overrides from the environment through lookup.
func (c *APIConfig) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	c.Secrets = Secrets{
		GeminiAPIKey:       get("GEMINI_API_KEY"),
		RazorpayKeyID:      get("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  get("RAZORPAY_KEY_SECRET"),
		ServiceAccountFile: get("GOOGLE_SERVICE_ACCOUNT_FILE"),
		SpreadsheetID:      get("SPREADSHEET_ID"),
		SheetName:          get("SHEET_NAME"),
		EmailSender:        get("EMAIL_SENDER"),
		EmailAppPassword:   get("EMAIL_APP_PASSWORD"),
		SessionSecret:      get("SESSION_SECRET"),
		AdminUser:          get("ADMIN_USER"),
		AdminPassword:      get("ADMIN_PASSWORD"),
	}
	if v := get("DB_PASSWORD"); v != "" {
		c.DB.Password.Value = v
	}
	if v := get("QUESTION_BANK"); v != "" {
		c.THIRD_PARTY.QuestionBank = v
	}
	if v := get("PORT"); v != "" {
		if port, convErr := strconv.Atoi(v); convErr == nil {
			c.Context.Port = port
		}
	}
}

// Features reports which optional collaborators are configured.
type Features struct {
	TextGeneration bool
	Payment        bool
	Spreadsheet    bool
	Email          bool
	Database       bool
	AdminAPI       bool
}

// Features derives the feature set from the loaded secrets and DB section.
func (c *APIConfig) Features() Features {
	s := c.Secrets
	return Features{
		TextGeneration: s.GeminiAPIKey != "",
		Payment:        s.RazorpayKeyID != "" && s.RazorpayKeySecret != "",
		Spreadsheet:    s.ServiceAccountFile != "" && s.SpreadsheetID != "",
		Email:          s.EmailSender != "" && s.EmailAppPassword != "",
		Database:       c.DB.Initialize,
		AdminAPI:       c.Context.EnableBasicAuth && s.AdminUser != "" && s.AdminPassword != "",
	}
}
