package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValues(t *testing.T) {
	args := []string{"-a", ":9090", "-d", "postgres://localhost/keepintouch", "-unknown", "zzz"}
	got := FilterArgs(args, []string{"-a", "-d"})
	assert.Equal(t, []string{"-a", ":9090", "-d", "postgres://localhost/keepintouch"}, got)
}

func TestFilterArgs_InlineValues(t *testing.T) {
	args := []string{"--vpub=BPubKey", "-i=30", "--other=x"}
	got := FilterArgs(args, []string{"--vpub", "-i"})
	assert.Equal(t, []string{"--vpub=BPubKey", "-i=30"}, got)
}

func TestFilterArgs_BoolFlagWithoutValue(t *testing.T) {
	// -n disables the scheduler and takes no value; the next flag must not
	// be swallowed as one.
	args := []string{"-n", "-a", ":8080"}
	got := FilterArgs(args, []string{"-n", "-a"})
	assert.Equal(t, []string{"-n", "-a", ":8080"}, got)
}

func TestFilterArgs_NothingAllowed(t *testing.T) {
	got := FilterArgs([]string{"-x", "secret", "-i", "15"}, nil)
	assert.Empty(t, got)
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"keepintouch", "-a", ":8080", "-c", "server.json"}
	assert.Equal(t, "server.json", JsonConfigFlags())

	os.Args = []string{"keepintouch", "--config=client.json"}
	assert.Equal(t, "client.json", JsonConfigFlags())

	os.Args = []string{"keepintouch", "-d", "dsn"}
	assert.Equal(t, "", JsonConfigFlags())
}
