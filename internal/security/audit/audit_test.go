package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
)

func TestLogIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(logger.New(&buf, "info", "json"))

	ctx := logger.WithRequestID(context.Background(), "req-42")
	al.Log(ctx, Entry{
		UserID:     "user_1",
		Action:     "convert",
		Resource:   "leads",
		ResourceID: "lead_1",
		Status:     StatusSucceeded,
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "audit", rec["msg"])
	assert.Equal(t, "convert", rec["action"])
	assert.Equal(t, "lead_1", rec["resource_id"])
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusSucceeded, StatusFor(201))
	assert.Equal(t, StatusRejected, StatusFor(400))
	assert.Equal(t, StatusRejected, StatusFor(404))
	assert.Equal(t, StatusFailed, StatusFor(500))
}
