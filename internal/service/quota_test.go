package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restrictedbot/internal/config"
	"restrictedbot/internal/domain"
	"restrictedbot/internal/testutil"
)

func testLimits() config.Limits {
	return config.Limits{
		FreeDownloads:    5,
		PremiumDownloads: 50,
		ProDownloads:     200,
		FreeFileSize:     500 * 1024 * 1024,
		PremiumFileSize:  2048 * 1024 * 1024,
		ProFileSize:      5120 * 1024 * 1024,
		CooldownSeconds:  20,
	}
}

func TestQuotaGate_Tier(t *testing.T) {
	gate := NewQuotaGate(testLimits(), []int64{900})

	pro := testutil.NewTestUser(2)
	pro.IsPro = true
	proAndPremium := testutil.NewTestUser(3)
	proAndPremium.IsPro = true
	proAndPremium.IsPremium = true
	dbAdmin := testutil.NewTestUser(4)
	dbAdmin.IsAdmin = true

	tests := []struct {
		name string
		user *domain.User
		want domain.Tier
	}{
		{"free", testutil.NewTestUser(1), domain.TierFree},
		{"premium", testutil.NewPremiumUser(1), domain.TierPremium},
		{"pro", pro, domain.TierPro},
		{"pro wins over premium", proAndPremium, domain.TierPro},
		{"admin from config list", testutil.NewTestUser(900), domain.TierAdmin},
		{"admin from database flag", dbAdmin, domain.TierAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Tier(tt.user))
		})
	}
}

func TestQuotaGate_CanProceed(t *testing.T) {
	gate := NewQuotaGate(testLimits(), []int64{900})

	user := testutil.NewTestUser(1)
	user.DownloadCount = 4
	assert.NoError(t, gate.CanProceed(user))

	user.DownloadCount = 5
	err := gate.CanProceed(user)
	var quota *domain.QuotaExceededError
	assert.ErrorAs(t, err, &quota)
	assert.Equal(t, 5, quota.Used)
	assert.Equal(t, 5, quota.Max)

	premium := testutil.NewPremiumUser(2)
	premium.DownloadCount = 49
	assert.NoError(t, gate.CanProceed(premium))
	premium.DownloadCount = 50
	assert.Error(t, gate.CanProceed(premium))

	admin := testutil.NewTestUser(900)
	admin.DownloadCount = 100000
	assert.NoError(t, gate.CanProceed(admin))
}

func TestQuotaGate_Cooldown(t *testing.T) {
	gate := NewQuotaGate(testLimits(), nil)

	assert.Equal(t, 20*time.Second, gate.Cooldown(testutil.NewTestUser(1)))
	assert.Equal(t, time.Duration(0), gate.Cooldown(testutil.NewPremiumUser(2)))

	pro := testutil.NewTestUser(3)
	pro.IsPro = true
	assert.Equal(t, time.Duration(0), gate.Cooldown(pro))
}

func TestQuotaGate_FileSizeLimit(t *testing.T) {
	gate := NewQuotaGate(testLimits(), []int64{900})

	assert.Equal(t, int64(500*1024*1024), gate.FileSizeLimit(testutil.NewTestUser(1)))
	assert.Equal(t, int64(2048*1024*1024), gate.FileSizeLimit(testutil.NewPremiumUser(2)))

	pro := testutil.NewTestUser(3)
	pro.IsPro = true
	assert.Equal(t, int64(5120*1024*1024), gate.FileSizeLimit(pro))

	assert.Equal(t, int64(50)<<30, gate.FileSizeLimit(testutil.NewTestUser(900)))
}

func TestQuotaGate_TierFileSize(t *testing.T) {
	gate := NewQuotaGate(testLimits(), nil)

	assert.Equal(t, int64(500*1024*1024), gate.TierFileSize(domain.TierFree))
	assert.Equal(t, int64(2048*1024*1024), gate.TierFileSize(domain.TierPremium))
	assert.Equal(t, int64(5120*1024*1024), gate.TierFileSize(domain.TierPro))
	assert.Equal(t, int64(50)<<30, gate.TierFileSize(domain.TierAdmin))
}

func TestQuotaGate_Remaining(t *testing.T) {
	gate := NewQuotaGate(testLimits(), []int64{900})

	user := testutil.NewTestUser(1)
	user.DownloadCount = 3
	assert.Equal(t, 2, gate.Remaining(user))

	user.DownloadCount = 7
	assert.Equal(t, 0, gate.Remaining(user))

	// Admins have no cap, so no finite count is reported.
	admin := testutil.NewTestUser(900)
	admin.DownloadCount = 100000
	assert.Equal(t, UnlimitedDownloads, gate.Remaining(admin))
}
