package repo

import (
	"time"

	"amcwallet/internal/models"
)

func (r *Repository) CreateOTPCode(code *models.OTPCode) error {
	return r.db.Create(code).Error
}

// ConsumeOTPCode marks a matching live code as used and returns it.
// Codes are single-use; expired or already-used codes never match.
func (r *Repository) ConsumeOTPCode(userID, purpose, code string, now time.Time) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := r.db.Where(
		"user_id = ? AND purpose = ? AND code = ? AND used = ? AND expires_at > ?",
		userID, purpose, code, false, now,
	).First(&otp).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.Model(&otp).Update("used", true).Error; err != nil {
		return nil, err
	}
	otp.Used = true
	return &otp, nil
}

// PurgeExpiredOTPCodes drops codes past their expiry.
func (r *Repository) PurgeExpiredOTPCodes(now time.Time) error {
	return r.db.Where("expires_at <= ?", now).Delete(&models.OTPCode{}).Error
}
