package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libreclinica/api-gateway/internal/models"
)

func TestSOAPResultUsable(t *testing.T) {
	tests := []struct {
		name           string
		success        bool
		payloadLen     int
		expectNonEmpty bool
		usable         bool
	}{
		{"failure is never usable", false, 5, false, false},
		{"success with payload", true, 5, true, true},
		{"empty where payload expected", true, 0, true, false},
		{"empty where empty is valid", true, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, soapResultUsable(tt.success, tt.payloadLen, tt.expectNonEmpty))
		})
	}
}

func TestComputeServiceStatus(t *testing.T) {
	off := ComputeServiceStatus(false)
	assert.Equal(t, models.ServiceStatus{
		SOAPEnabled: false,
		Mode:        models.ModeDatabaseOnly,
		Description: "Database only mode (SOAP disabled)",
	}, off)

	on := ComputeServiceStatus(true)
	assert.True(t, on.SOAPEnabled)
	assert.Equal(t, models.ModeSOAPPrimary, on.Mode)
}

func TestNormalizePage(t *testing.T) {
	page, limit, offset := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	page, limit, offset = normalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 200, offset)
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, pageSlice(items, 1, 2))
	assert.Equal(t, []int{5}, pageSlice(items, 3, 2))
	assert.Empty(t, pageSlice(items, 4, 2))
}

func TestPaginationFor(t *testing.T) {
	p := paginationFor(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)

	assert.Equal(t, 0, paginationFor(1, 10, 0).TotalPages)
}
