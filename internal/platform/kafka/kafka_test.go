package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/platform/config"
)

func TestNewWithoutBrokersDisablesMirroring(t *testing.T) {
	client, err := New(config.KafkaConfig{Topic: "truetrace.events"})
	require.NoError(t, err)
	assert.Nil(t, client)
}
