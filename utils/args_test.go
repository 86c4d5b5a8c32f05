package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgumentsCommandAndFlags(t *testing.T) {
	args := ParseArguments([]string{"download", "--panoids=p.json", "--batch-size", "20", "--force"})
	assert.Equal(t, "download", args["command"])
	assert.Equal(t, "p.json", args["panoids"])
	assert.Equal(t, "20", args["batch-size"])
	assert.Equal(t, "true", args["force"])
}

func TestParseArgumentsNoCommand(t *testing.T) {
	args := ParseArguments([]string{"--debug"})
	_, ok := args["command"]
	assert.False(t, ok)
	assert.True(t, GetBool(args, "debug"))
}

func TestParseArgumentsUnknownWordIgnored(t *testing.T) {
	args := ParseArguments([]string{"launch", "--in", "a.json"})
	_, ok := args["command"]
	assert.False(t, ok)
	assert.Equal(t, "a.json", args["in"])
}

func TestGetHelpers(t *testing.T) {
	args := map[string]string{"max": "7", "bad": "x"}
	assert.Equal(t, 7, GetInt(args, "max", 1))
	assert.Equal(t, 1, GetInt(args, "missing", 1))
	assert.Equal(t, 9, GetInt(args, "bad", 9))
	assert.Equal(t, "def", GetString(args, "missing", "def"))
}
