package db

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/user-service/internal/common/logger"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Service: "db-test", Level: "debug", Output: &buf})
	require.NoError(t, err)
	return log, &buf
}
