package rewriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBulletStyle(t *testing.T) {
	report := CheckBulletStyle([]string{
		"Led migration of 40 services to Kubernetes",
		"Responsible for the billing system and all of its upkeep",
		"Automated releases",
		"  ",
	})
	assert.Equal(t, 3, report.Bullets)
	assert.Equal(t, []string{"Responsible for the billing..."}, report.WeakOpeners)
	assert.Equal(t, 2, report.Unquantified)
}

func TestCheckStrongVerb(t *testing.T) {
	tests := map[string]bool{
		"led the team":      true,
		"refactored code":   true,
		"worked on stuff":   true,
		"helping customers": false,
		"":                  false,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, checkStrongVerb(in))
		})
	}
}
