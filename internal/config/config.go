package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type LoginPolicy string

const (
	// LoginPolicyStrict rejects seller/admin credentials at the storefront entry point.
	LoginPolicyStrict LoginPolicy = "strict"
	// LoginPolicyLenient merges whatever role the credential resolves to.
	LoginPolicyLenient LoginPolicy = "lenient"
)

type RoleSource string

const (
	RoleSourceProbe    RoleSource = "probe"
	RoleSourceIdentity RoleSource = "identity"
)

type Config struct {
	APIBaseURL      string
	CredentialsFile string
	LogLevel        string
	Debug           bool
	ServiceName     string
	Environment     string
	RequestTimeout  time.Duration
	LoginPolicy     LoginPolicy
	RoleSource      RoleSource
	PageSize        int
	TaxRate         decimal.Decimal
	FakeShopPort    string
	FakeShopSecret  string
	FakeShopWorkers int
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8000"
	}

	credentialsFile := os.Getenv("CREDENTIALS_FILE")
	if credentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		credentialsFile = filepath.Join(home, ".almirah", "credentials.yaml")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	debug := os.Getenv("DEBUG")
	if debug == "" {
		debug = "false"
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "almirah-storefront"
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	var requestTimeout time.Duration
	if rt := os.Getenv("REQUEST_TIMEOUT"); rt != "" {
		parsed, err := time.ParseDuration(rt)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		requestTimeout = parsed
	}

	loginPolicy := LoginPolicy(os.Getenv("LOGIN_POLICY"))
	switch loginPolicy {
	case "":
		loginPolicy = LoginPolicyStrict
	case LoginPolicyStrict, LoginPolicyLenient:
	default:
		return nil, fmt.Errorf("invalid LOGIN_POLICY %q: want strict or lenient", loginPolicy)
	}

	roleSource := RoleSource(os.Getenv("ROLE_SOURCE"))
	switch roleSource {
	case "":
		roleSource = RoleSourceProbe
	case RoleSourceProbe, RoleSourceIdentity:
	default:
		return nil, fmt.Errorf("invalid ROLE_SOURCE %q: want probe or identity", roleSource)
	}

	pageSize := 12 // default value
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil {
			pageSize = parsed
		}
	}
	pageSize = ClampPageSize(pageSize)

	taxRate := decimal.NewFromFloat(0.10)
	if tr := os.Getenv("TAX_RATE"); tr != "" {
		parsed, err := decimal.NewFromString(tr)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
		}
		if parsed.IsNegative() {
			return nil, errors.New("TAX_RATE must not be negative")
		}
		taxRate = parsed
	}

	fakeShopPort := os.Getenv("FAKESHOP_PORT")
	if fakeShopPort == "" {
		fakeShopPort = "8000"
	}

	fakeShopSecret := os.Getenv("FAKESHOP_SECRET")
	if fakeShopSecret == "" {
		fakeShopSecret = "almirah-dev-secret"
	}

	fakeShopWorkers := 2 // default value
	if fw := os.Getenv("FAKESHOP_WORKERS"); fw != "" {
		if parsed, err := strconv.Atoi(fw); err == nil {
			fakeShopWorkers = parsed
		}
	}

	return &Config{
		APIBaseURL:      apiBaseURL,
		CredentialsFile: credentialsFile,
		LogLevel:        logLevel,
		Debug:           debug == "true",
		ServiceName:     serviceName,
		Environment:     environment,
		RequestTimeout:  requestTimeout,
		LoginPolicy:     loginPolicy,
		RoleSource:      roleSource,
		PageSize:        pageSize,
		TaxRate:         taxRate,
		FakeShopPort:    fakeShopPort,
		FakeShopSecret:  fakeShopSecret,
		FakeShopWorkers: fakeShopWorkers,
	}, nil
}

// ClampPageSize keeps a page size inside the 1..60 window the catalog endpoint accepts.
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > 60 {
		return 60
	}
	return n
}
