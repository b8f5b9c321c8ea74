package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultCSVName = "Red_Bird_Trick-or-Treat_Trail_2025-10-06_19_26_14.csv"

type Config struct {
	DBPath    string
	OutputDir string
	DataDir   string
	AssetsDir string
	SitePage  string
	SiteOut   string

	DataSource       string
	DataCSVPath      string
	DataCSVURL       string
	DataXLSXPath     string
	DataQuoteMode    string
	EmbeddedFallback bool
	Offline          bool

	FetchTimeoutMs int
	FetchRetries   int

	SheetsSpreadsheetID string
	SheetsRange         string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURI   string
	GoogleRefreshToken  string

	MountID  string
	CountID  string
	IconBase string

	SiteAddr         string
	WatchIntervalSec int

	GeocoderBaseURL    string
	GeocoderUserAgent  string
	GeocoderIntervalMs int
	GeocodeLocality    string
	PinsPath           string
	MapsDir            string
	MapRenderer        string
	ChromeBin          string
	MapTileWaitMs      int

	MatchOKThreshold     float64
	MatchReviewThreshold float64
	MatchGapThreshold    float64

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	dataDir := getEnv("DATA_DIR", filepath.Join(cwd, "data"))
	assetsDir := getEnv("ASSETS_DIR", filepath.Join(cwd, "assets"))
	outputDir := getEnv("OUTPUT_DIR", filepath.Join(cwd, "out"))

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(dataDir, "app.db")),
		OutputDir: outputDir,
		DataDir:   dataDir,
		AssetsDir: assetsDir,
		SitePage:  getEnv("SITE_PAGE", ""),
		SiteOut:   getEnv("SITE_OUT", filepath.Join(outputDir, "site", "index.html")),

		DataSource:       strings.ToLower(strings.TrimSpace(getEnv("DATA_SOURCE", "file"))),
		DataCSVPath:      getEnv("DATA_CSV_PATH", filepath.Join(dataDir, DefaultCSVName)),
		DataCSVURL:       getEnv("DATA_CSV_URL", ""),
		DataXLSXPath:     getEnv("DATA_XLSX_PATH", ""),
		DataQuoteMode:    strings.ToLower(strings.TrimSpace(getEnv("DATA_QUOTE_MODE", "strict"))),
		EmbeddedFallback: getEnvBool("EMBEDDED_FALLBACK", true),
		Offline:          getEnvBool("OFFLINE", false),

		FetchTimeoutMs: getEnvInt("FETCH_TIMEOUT_MS", 10000),
		FetchRetries:   getEnvInt("FETCH_RETRIES", 3),

		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:         getEnv("SHEETS_RANGE", "Form Responses 1"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GoogleRefreshToken:  getEnv("GOOGLE_REFRESH_TOKEN", ""),

		MountID:  getEnv("MOUNT_ID", "houses-unified-container"),
		CountID:  getEnv("COUNT_ID", "house-count"),
		IconBase: getEnv("ICON_BASE", "assets/img/icons/"),

		SiteAddr:         getEnv("SITE_ADDR", ":8080"),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),

		GeocoderBaseURL:    getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:  getEnv("GEOCODER_USER_AGENT", "redbird-trail-map"),
		GeocoderIntervalMs: getEnvInt("GEOCODER_INTERVAL_MS", 1100),
		GeocodeLocality:    getEnv("GEOCODE_LOCALITY", "Miami, FL 33155"),
		PinsPath:           getEnv("PINS_PATH", filepath.Join(cwd, "export", "pins.json")),
		MapsDir:            getEnv("MAPS_DIR", filepath.Join(assetsDir, "maps")),
		MapRenderer:        strings.ToLower(strings.TrimSpace(getEnv("MAP_RENDERER", "raster"))),
		ChromeBin:          getEnv("CHROME_BIN", ""),
		MapTileWaitMs:      getEnvInt("MAP_TILE_WAIT_MS", 3000),

		MatchOKThreshold:     getEnvFloat("MATCH_OK_THRESHOLD", 0.90),
		MatchReviewThreshold: getEnvFloat("MATCH_REVIEW_THRESHOLD", 0.72),
		MatchGapThreshold:    getEnvFloat("MATCH_GAP_THRESHOLD", 0.08),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
