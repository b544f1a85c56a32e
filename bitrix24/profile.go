package bitrix24

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Environment variables and map keys that describe an application profile.
const (
	ProfileKeyClientID     = "BITRIX24_APPLICATION_CLIENT_ID"
	ProfileKeyClientSecret = "BITRIX24_APPLICATION_CLIENT_SECRET"
	ProfileKeyScope        = "BITRIX24_APPLICATION_SCOPE"
)

var validate = validator.New()

// ApplicationProfile holds the OAuth credentials of a local or marketplace
// application and the permission scope it requested.
type ApplicationProfile struct {
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	Scope        Scope
}

// profileSource is the raw, string-typed form of a profile as it appears in
// the environment or in a YAML file.
type profileSource struct {
	ClientID     string `envconfig:"BITRIX24_APPLICATION_CLIENT_ID" yaml:"client_id" required:"true"`
	ClientSecret string `envconfig:"BITRIX24_APPLICATION_CLIENT_SECRET" yaml:"client_secret" required:"true"`
	Scope        string `envconfig:"BITRIX24_APPLICATION_SCOPE" yaml:"scope"`
}

func (p profileSource) build() (*ApplicationProfile, error) {
	scope, err := ParseScope(p.Scope)
	if err != nil {
		return nil, err
	}
	profile := &ApplicationProfile{
		ClientID:     strings.TrimSpace(p.ClientID),
		ClientSecret: strings.TrimSpace(p.ClientSecret),
		Scope:        scope,
	}
	if err := validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("invalid application profile: %w", err)
	}
	return profile, nil
}

// ProfileFromMap builds a profile from a map keyed by the ProfileKey*
// constants. All three keys must be present.
func ProfileFromMap(values map[string]string) (*ApplicationProfile, error) {
	for _, key := range []string{ProfileKeyClientID, ProfileKeyClientSecret, ProfileKeyScope} {
		if _, ok := values[key]; !ok {
			return nil, fmt.Errorf("application profile key %s not found", key)
		}
	}
	return profileSource{
		ClientID:     values[ProfileKeyClientID],
		ClientSecret: values[ProfileKeyClientSecret],
		Scope:        values[ProfileKeyScope],
	}.build()
}

// LoadProfileFromEnv reads a profile from the environment. Any dotenv files
// given are loaded first; variables already set in the environment win.
// Missing files are an error only when named explicitly.
func LoadProfileFromEnv(files ...string) (*ApplicationProfile, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("loading env files: %w", err)
		}
	}

	var src profileSource
	if err := envconfig.Process("", &src); err != nil {
		return nil, fmt.Errorf("parsing application profile: %w", err)
	}
	return src.build()
}

// LoadProfileFromFile reads a profile from a YAML file:
//
//	client_id: local.65a1b2c3d4e5f6.12345678
//	client_secret: s3cr3t
//	scope: crm,user,telephony
func LoadProfileFromFile(path string) (*ApplicationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading application profile: %w", err)
	}

	var src profileSource
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parsing application profile: %w", err)
	}
	return src.build()
}

// knownScopeCodes lists the permission scopes a portal can grant.
var knownScopeCodes = []string{
	"ai_admin", "appform", "baas", "biconnector", "bizproc", "calendar",
	"calendarmobile", "call", "cashbox", "catalog", "catalogmobile",
	"configuration.import", "contact_center", "crm", "delivery", "department",
	"disk", "documentgenerator", "entity", "faceid", "forum",
	"humanresources.hcmlink", "im", "im.import", "imbot", "imconnector",
	"imopenlines", "intranet", "landing", "landing_cloud", "lists", "log",
	"mailservice", "main", "messageservice", "mobile", "notifications",
	"pay_system", "placement", "pull", "pull_channel", "rating", "rpa", "sale",
	"salescenter", "sign.b2e", "smile", "social", "socialnetwork",
	"sonet_group", "task", "tasks", "tasks_extended", "tasksmobile",
	"telephony", "timeman", "user", "user.userfield", "user_basic",
	"user_brief", "userconsent", "userfieldconfig",
}

// UnknownScopeCodeError reports a scope code the portal does not know.
type UnknownScopeCodeError struct {
	Code string
}

// Error implements the error interface.
func (e *UnknownScopeCodeError) Error() string {
	return fmt.Sprintf("unknown scope code %q", e.Code)
}

// Scope is an ordered set of permission scope codes.
type Scope struct {
	codes []string
}

// ParseScope parses a comma separated list of scope codes. Codes are
// trimmed and lower cased, duplicates are dropped and the first occurrence
// keeps its position. An empty string is an empty scope.
func ParseScope(s string) (Scope, error) {
	var codes []string
	for _, raw := range strings.Split(s, ",") {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if !slices.Contains(knownScopeCodes, code) {
			return Scope{}, &UnknownScopeCodeError{Code: code}
		}
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return Scope{codes: codes}, nil
}

// Codes returns a copy of the scope codes.
func (s Scope) Codes() []string {
	return slices.Clone(s.codes)
}

// Contains reports whether code is part of the scope.
func (s Scope) Contains(code string) bool {
	return slices.Contains(s.codes, strings.ToLower(code))
}

// IsEmpty reports whether the scope has no codes.
func (s Scope) IsEmpty() bool {
	return len(s.codes) == 0
}

// String returns the codes joined by commas.
func (s Scope) String() string {
	return strings.Join(s.codes, ",")
}

// IsUnknownScope reports whether err was caused by an unknown scope code.
func IsUnknownScope(err error) bool {
	var target *UnknownScopeCodeError
	return errors.As(err, &target)
}
