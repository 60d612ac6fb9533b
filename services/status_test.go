package services

import (
	"testing"

	"govstay-server/models"
	"govstay-server/utils"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	today := utils.ParseLocalDate("2024-06-15")

	cases := []struct {
		name      string
		checkOut  string
		cancelled bool
		want      string
	}{
		{"cancelled in the past stays cancelled", "2024-06-01", true, models.StatusCancelled},
		{"cancelled in the future", "2024-07-01", true, models.StatusCancelled},
		{"past check-out completes", "2024-06-14", false, models.StatusCompleted},
		{"check-out today is still active", "2024-06-15", false, models.StatusActive},
		{"future check-out", "2024-06-20", false, models.StatusActive},
		{"malformed check-out", "soon", false, models.StatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.checkOut, tc.cancelled, today))
		})
	}
}
