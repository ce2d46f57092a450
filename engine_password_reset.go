package authgate

import (
	"context"
	"errors"
	"time"

	"github.com/mwhitlock/authgate/otc"
)

// SendResetCode issues a fresh password-recovery code and hands it to the
// mail collaborator. Like verification, this flow reveals existence: an
// unknown email returns [ErrIdentityNotFound].
func (e *Engine) SendResetCode(ctx context.Context, email string) error {
	return e.sendCode(ctx, email, codeDelivery{
		event:  "reset_sent",
		metric: MetricResetSent,
		config: e.configOrZero().Reset,
		save: func(ctx context.Context, id, code string, expiry time.Time) error {
			return e.repo.SaveResetCode(ctx, id, code, expiry)
		},
		deliver: func(ctx context.Context, address, code string) error {
			return e.mailer.SendResetCode(ctx, address, code)
		},
	})
}

// ResetPassword redeems a recovery code and rotates the credential.
//
// The new password is policy-checked before any repository access. Code
// failures collapse into [ErrCodeInvalid] exactly as in email verification.
// No hook fires on completion; OnVerify covers verification only.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if e == nil || e.repo == nil {
		return ErrEngineNotReady
	}

	if err := e.config.validatePassword(newPassword); err != nil {
		return e.fail(ctx, err)
	}

	email = normalizeEmail(email)
	identity, err := e.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			e.metricInc(MetricResetFailure)
			return e.fail(ctx, ErrCodeInvalid)
		}
		e.logger.Printf("authgate: reset lookup: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}

	if !otc.Validate(identity.ResetCode, identity.ResetCodeExpiry, code) {
		e.metricInc(MetricResetFailure)
		e.emit(ctx, "reset_password", identity.ID, email, false, ErrCodeInvalid, nil)
		return e.fail(ctx, ErrCodeInvalid)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.logger.Printf("authgate: reset hash: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}

	redeemed, err := e.repo.RedeemResetCode(ctx, identity.ID, code, hash)
	if err != nil {
		e.logger.Printf("authgate: reset redeem: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}
	if !redeemed {
		// Lost the race: the code was redeemed between validation and here.
		e.metricInc(MetricResetFailure)
		return e.fail(ctx, ErrCodeInvalid)
	}

	e.metricInc(MetricResetSuccess)
	e.emit(ctx, "reset_password", identity.ID, email, true, nil, nil)
	return nil
}
