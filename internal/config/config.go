package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobDriver   string // fs|supabase
	BlobBasePath string // for fs

	// Supabase storage (BLOB_DRIVER=supabase)
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// bcrypt hash of the shared access code. Default is the hash of "787".
	// This is a soft gate, not an auth system.
	AccessCodeHash string
	AuthHMACSecret string

	// Exam drawing knobs.
	ExamSize      int
	ExamPassScore int

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobDriver:   envOr("BLOB_DRIVER", "fs"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: envOr("SUPABASE_BUCKET", "question-images"),

		AccessCodeHash: envOr("ACCESS_CODE_HASH", "$2a$10$N0Yfl8mAFtptk8eson5kCOQP0Cib5zW8gVmF27SUBBGTP6p0EKJky"),
		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		ExamSize:      envInt("EXAM_SIZE", 25),
		ExamPassScore: envInt("EXAM_PASS_SCORE", 70),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
