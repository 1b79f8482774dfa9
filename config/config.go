package config

import "os"

type Config struct {
	Port        string
	DBPath      string
	UploadDir   string
	DownloadDir string
	VaultDir    string
	JWTSecret   string
	GeminiKey   string
	GeminiModel string
	OMDBKey     string
}

// Load reads configuration from the environment, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./butler.db"),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		DownloadDir: getEnv("DOWNLOAD_DIR", "./downloads"),
		VaultDir:    getEnv("VAULT_DIR", "./vault"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OMDBKey:     os.Getenv("OMDB_API_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
