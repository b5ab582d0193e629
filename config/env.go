package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "ostaa"
	defaultRedisAddr     = "localhost:6379"
	defaultDevPort       = "5000"
	defaultProdPort      = "80"
	defaultAppEnv        = "local"
	defaultStoreTimeout  = "5s"
	defaultImageDir      = "img"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Later calls return the first
// result. Missing files are not an error; defaults apply.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":      defaultMongoURI,
		"MONGO_DATABASE": defaultMongoDatabase,
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
		"APP_PORT":       "",
		"APP_ENV":        defaultAppEnv,
		"STORE_TIMEOUT":  defaultStoreTimeout,
		"IMAGE_DIR":      defaultImageDir,
	}
}

// MongoURI returns the connection string for the document store.
func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

// MongoDatabase returns the database name holding the users and items
// collections.
func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

// AppPort returns the HTTP listen port. The historical deployment listened
// on 80 in production and 5000 everywhere else; APP_PORT overrides both.
func AppPort() string {
	_ = Load()
	if port := get("APP_PORT", ""); port != "" {
		return port
	}
	switch AppEnv() {
	case "production", "prod":
		return defaultProdPort
	default:
		return defaultDevPort
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// StoreTimeout bounds every single store operation. Exceeding it surfaces
// as a timeout failure, distinct from "not found".
func StoreTimeout() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("STORE_TIMEOUT", defaultStoreTimeout))
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ImageDir is the directory (relative to the storage disk root) where item
// images are written. Only the filename is persisted on the item.
func ImageDir() string {
	_ = Load()
	return get("IMAGE_DIR", defaultImageDir)
}

// MaxUploadBytes caps multipart item uploads (default 8 MB).
func MaxUploadBytes() int64 {
	_ = Load()
	n, err := strconv.ParseInt(get("MAX_UPLOAD_BYTES", "8388608"), 10, 64)
	if err != nil || n <= 0 {
		return 8 << 20
	}
	return n
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:5000/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Logging ──────────────────────────────────────────────────────────────────

// LogMongoEnabled reports whether log records should also be shipped to the
// Mongo log collection.
func LogMongoEnabled() bool {
	_ = Load()
	return get("LOG_MONGO", "") == "true"
}

func LogMongoCollection() string {
	_ = Load()
	return get("LOG_MONGO_COLLECTION", "logs")
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
