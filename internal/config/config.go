package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingConfig = errors.New("missing required configuration")

const (
	KeyAppSecret        = "WHATSAPP_APP_SECRET"
	KeyAccessToken      = "WHATSAPP_ACCESS_TOKEN"
	KeyVerifyToken      = "WHATSAPP_VERIFY_TOKEN"
	KeyAdminToken       = "ADMIN_TOKEN"
	KeyPort             = "PORT"
	KeyLogLevel         = "LOG_LEVEL"
	KeyGraphAPIURL      = "GRAPH_API_URL"
	KeyGraphAPIVersion  = "GRAPH_API_VERSION"
	KeyPublicURL        = "PUBLIC_URL"
	KeyMongoURI         = "MONGODB_URI"
	KeyMongoDatabase    = "MONGODB_DATABASE"
	KeyHostEngineURL    = "HOST_ENGINE_URL"
	KeyGreetingText     = "GREETING_TEXT"
	KeyComposerDisabled = "COMPOSER_DISABLED"
	KeyGetStartedButton = "GET_STARTED_BUTTON"
	KeyUserFields       = "USER_FIELDS"
)

// Settings holds the channel configuration. A Settings value is never
// mutated once handed out; updates produce a new value (see Merge).
type Settings struct {
	AppSecret        string   `json:"app_secret"`
	AccessToken      string   `json:"access_token"`
	VerifyToken      string   `json:"verify_token"`
	AdminToken       string   `json:"-"`
	Port             string   `json:"port"`
	LogLevel         string   `json:"log_level"`
	GraphAPIURL      string   `json:"graph_api_url"`
	GraphAPIVersion  string   `json:"graph_api_version"`
	PublicURL        string   `json:"public_url"`
	MongoURI         string   `json:"mongodb_uri"`
	MongoDatabase    string   `json:"mongodb_database"`
	HostEngineURL    string   `json:"host_engine_url"`
	GreetingText     string   `json:"greeting_text"`
	ComposerDisabled bool     `json:"composer_disabled"`
	GetStartedButton bool     `json:"get_started_button"`
	UserFields       []string `json:"user_fields"`
}

// SettingsUpdate is a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	AppSecret        *string   `json:"app_secret,omitempty"`
	AccessToken      *string   `json:"access_token,omitempty"`
	VerifyToken      *string   `json:"verify_token,omitempty"`
	GreetingText     *string   `json:"greeting_text,omitempty"`
	ComposerDisabled *bool     `json:"composer_disabled,omitempty"`
	GetStartedButton *bool     `json:"get_started_button,omitempty"`
	UserFields       *[]string `json:"user_fields,omitempty"`
}

// ChannelOptions are the presentation settings the host engine reads back
// through GET /settings. They carry no credentials.
type ChannelOptions struct {
	GreetingText     string   `json:"greeting_text"`
	ComposerDisabled bool     `json:"composer_disabled"`
	GetStartedButton bool     `json:"get_started_button"`
	UserFields       []string `json:"user_fields"`
}

func LoadEnv() error {
	err := godotenv.Load(".env")
	if err != nil {
		log.Printf("could not load .env file: %v", err)
		return err
	}
	return nil
}

func GetEnvDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// Load reads the channel settings from the environment.
func Load() (*Settings, error) {
	port := GetEnvDefault(KeyPort, "3000")

	s := &Settings{
		AppSecret:        os.Getenv(KeyAppSecret),
		AccessToken:      os.Getenv(KeyAccessToken),
		VerifyToken:      os.Getenv(KeyVerifyToken),
		AdminToken:       os.Getenv(KeyAdminToken),
		Port:             port,
		LogLevel:         GetEnvDefault(KeyLogLevel, "info"),
		GraphAPIURL:      strings.TrimRight(GetEnvDefault(KeyGraphAPIURL, "https://graph.facebook.com"), "/"),
		GraphAPIVersion:  GetEnvDefault(KeyGraphAPIVersion, "v21.0"),
		PublicURL:        strings.TrimRight(GetEnvDefault(KeyPublicURL, fmt.Sprintf("http://localhost:%s", port)), "/"),
		MongoURI:         os.Getenv(KeyMongoURI),
		MongoDatabase:    GetEnvDefault(KeyMongoDatabase, "whatsapp_channel"),
		HostEngineURL:    strings.TrimRight(os.Getenv(KeyHostEngineURL), "/"),
		GreetingText:     os.Getenv(KeyGreetingText),
		ComposerDisabled: parseBool(os.Getenv(KeyComposerDisabled)),
		GetStartedButton: parseBool(os.Getenv(KeyGetStartedButton)),
		UserFields:       splitList(os.Getenv(KeyUserFields)),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every missing credential at once.
func (s *Settings) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{KeyAppSecret, s.AppSecret},
		{KeyVerifyToken, s.VerifyToken},
		{KeyAccessToken, s.AccessToken},
		{KeyAdminToken, s.AdminToken},
	}

	var missing []string
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			missing = append(missing, item.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Merge returns a copy of s with the update applied. The receiver is left unchanged.
func (s *Settings) Merge(u SettingsUpdate) *Settings {
	next := *s
	next.UserFields = append([]string(nil), s.UserFields...)

	if u.AppSecret != nil {
		next.AppSecret = *u.AppSecret
	}
	if u.AccessToken != nil {
		next.AccessToken = *u.AccessToken
	}
	if u.VerifyToken != nil {
		next.VerifyToken = *u.VerifyToken
	}
	if u.GreetingText != nil {
		next.GreetingText = *u.GreetingText
	}
	if u.ComposerDisabled != nil {
		next.ComposerDisabled = *u.ComposerDisabled
	}
	if u.GetStartedButton != nil {
		next.GetStartedButton = *u.GetStartedButton
	}
	if u.UserFields != nil {
		next.UserFields = append([]string(nil), (*u.UserFields)...)
	}
	return &next
}

// Options returns the credential-free part of s.
func (s *Settings) Options() ChannelOptions {
	fields := append([]string{}, s.UserFields...)
	return ChannelOptions{
		GreetingText:     s.GreetingText,
		ComposerDisabled: s.ComposerDisabled,
		GetStartedButton: s.GetStartedButton,
		UserFields:       fields,
	}
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
