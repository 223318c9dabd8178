package navigation_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/deskhub/internal/app/system/navigation"
	"github.com/stretchr/testify/assert"
)

func TestSafeBackURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   navigation.BackURLOptions
		want   string
	}{
		{"valid return", "/teams/3/assign?return=%2Fteams%3Fq%3Dal", navigation.TeamsBackURL, "/teams?q=al"},
		{"wrong prefix", "/x?return=%2Fusers", navigation.TeamsBackURL, "/teams"},
		{"excluded subpath", "/x?return=%2Fteams%2F3%2Fedit", navigation.TeamsBackURL, "/teams"},
		{"preserve param", "/x?team=4", navigation.TeamsBackURL, "/teams?team=4"},
		{"sentinel not preserved", "/x?module=All", navigation.ModulesBackURL, "/modules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			assert.Equal(t, tt.want, navigation.SafeBackURL(r, tt.opts))
		})
	}
}
