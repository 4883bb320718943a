package main

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 0, retryCount(amqp.Table{"other": int32(4)}))
	assert.Equal(t, 3, retryCount(amqp.Table{retryHeader: int32(3)}))
	assert.Equal(t, 7, retryCount(amqp.Table{retryHeader: int64(7)}))
	assert.Equal(t, 0, retryCount(amqp.Table{retryHeader: "3"}))
}
