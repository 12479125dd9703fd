package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "bot.json", "-i", "5s"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "bot.json"},
		},
		{
			name:    "flag with equals",
			args:    []string{"-config=alt.json", "-i", "5s"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-u"},
			allowed: []string{"-c", "-u"},
			want:    []string{"-c", "-u"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-u", "@alice,42", "-d", "bot.db", "--other", "x"},
			allowed: []string{"-d", "-u"},
			want:    []string{"-u", "@alice,42", "-d", "bot.db"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	old := os.Args
	t.Cleanup(func() { os.Args = old })

	os.Args = []string{"bot", "-d", "x.db", "-c", "bot.json"}
	assert.Equal(t, "bot.json", ConfigFileFlag())

	os.Args = []string{"bot", "-config=other.json"}
	assert.Equal(t, "other.json", ConfigFileFlag())

	os.Args = []string{"bot", "-d", "x.db"}
	assert.Equal(t, "", ConfigFileFlag())
}

func TestStringFlag(t *testing.T) {
	args := []string{"-d", "x.db", "-env", "prod.env", "-c", "bot.json"}
	assert.Equal(t, "prod.env", StringFlag(args, "env"))
	assert.Equal(t, "x.db", StringFlag(args, "d"))
	assert.Equal(t, "", StringFlag(args, "missing"))
	assert.Equal(t, "bot.json", ConfigFile(args))
}
