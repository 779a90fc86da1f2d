package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_Stderr(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer

	closer, err := configure(logger, Options{Level: "info"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("shown")

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure_InvalidLevel(t *testing.T) {
	_, err := configure(logrus.New(), Options{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestConfigure_File(t *testing.T) {
	logger := logrus.New()
	path := filepath.Join(t.TempDir(), "cli.log")

	closer, err := configure(logger, Options{Level: "debug", File: path}, &bytes.Buffer{})
	require.NoError(t, err)

	logger.WithField("request_id", "abc").Warn("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "written to file", line["message"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "abc", line["request_id"])
	assert.Contains(t, line, "timestamp")
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	id := GenerateRequestID()
	assert.Len(t, id, 36)

	ctx = WithRequestID(ctx, id)
	assert.Equal(t, id, GetRequestID(ctx))
	assert.Equal(t, id, FromContext(ctx).Data["request_id"])
}

func TestLogAPICall(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	entry := logrus.NewEntry(logger)
	LogAPICall(entry, "GET", "/v3/global/asset/host/1.1.1.1", 200, 120*time.Millisecond, nil)
	LogAPICall(entry, "POST", "/v3/global/search/query", 403, 0, errors.New("forbidden"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var ok, failed map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &ok))
	require.NoError(t, json.Unmarshal(lines[1], &failed))

	assert.Equal(t, "api_call_success", ok["msg"])
	assert.Equal(t, float64(200), ok["status_code"])
	assert.Equal(t, float64(120), ok["duration_ms"])
	assert.Equal(t, "api_call_failed", failed["msg"])
	assert.Equal(t, "forbidden", failed["error"])
}
