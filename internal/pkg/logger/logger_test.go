package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{name: "json debug", format: "json", level: "debug", wantLevel: logrus.DebugLevel, wantJSON: true},
		{name: "text warn", format: "text", level: "warn", wantLevel: logrus.WarnLevel},
		{name: "unknown level falls back to info", format: "json", level: "loud", wantLevel: logrus.InfoLevel, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Logging: config.LoggingConfig{Format: tt.format, Level: tt.level}}

			log := NewWithWriter(cfg, &buf)
			if log.GetLevel() != tt.wantLevel {
				t.Fatalf("level = %v, want %v", log.GetLevel(), tt.wantLevel)
			}

			log.WithField("article_id", 7).Error("boom")
			var decoded map[string]interface{}
			isJSON := json.Unmarshal(buf.Bytes(), &decoded) == nil
			if isJSON != tt.wantJSON {
				t.Fatalf("json output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
			if tt.wantJSON && decoded["article_id"] != float64(7) {
				t.Errorf("article_id field = %v, want 7", decoded["article_id"])
			}
		})
	}
}
