package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		main     string
		want     string
	}{
		{"explicit wins over main", "-hyunju", "-vqsk", "-hyunju"},
		{"main used when no explicit", "", "-vqsk", "-vqsk"},
		{"sentinel when nothing configured", "", "", SentinelID},
		{"explicit wins with no main", "-hyunju", "", "-hyunju"},
		{"explicit sentinel stays sentinel", SentinelID, "-vqsk", SentinelID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.explicit, tt.main))
		})
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel("default"))
	assert.False(t, IsSentinel("-vqsk"))
	assert.False(t, IsSentinel(""))
}
