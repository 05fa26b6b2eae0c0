package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/danthegoodman1/tabula/gologger"
	"github.com/joho/godotenv"
)

var (
	DATA_DIR   string
	DATA_STORE string
	PLOT_DIR   string
	EXPORT_DIR string

	CENSUS_DB_URL string

	AWS_DEFAULT_REGION string

	S3_BUCKET_NAME string
	S3_PREFIX      string
	S3_ENDPOINT    string

	HTTP_PORT string
)

func init() {
	readEnv()
}

func readEnv() {
	DATA_DIR = GetEnvOrDefault("DATA_DIR", "_datasets")
	DATA_STORE = GetEnvOrDefault("DATA_STORE", "disk")
	PLOT_DIR = GetEnvOrDefault("PLOT_DIR", "plots")
	EXPORT_DIR = os.Getenv("EXPORT_DIR")

	CENSUS_DB_URL = os.Getenv("CENSUS_DB_URL")

	AWS_DEFAULT_REGION = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_PREFIX = os.Getenv("S3_PREFIX")
	S3_ENDPOINT = os.Getenv("S3_ENDPOINT")

	HTTP_PORT = GetEnvOrDefault("HTTP_PORT", "8080")
}

// LoadEnv loads the given .env files (".env" when none are given) without
// overriding variables that are already set, then re-reads the environment
// and the logging settings.
// Missing files are not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error in godotenv.Load: %w", err)
	}
	readEnv()
	gologger.Configure()
	return nil
}
