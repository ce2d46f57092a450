package authgate

import (
	"context"
	"errors"
	"time"

	"github.com/mwhitlock/authgate/otc"
)

// SendVerificationCode issues a fresh email-verification code and hands it
// to the mail collaborator.
//
// Unlike login, this flow reveals existence: an unknown email returns
// [ErrIdentityNotFound]. Issuing a new code replaces any outstanding one;
// staleness is otherwise checked lazily at validation time, never swept.
func (e *Engine) SendVerificationCode(ctx context.Context, email string) error {
	return e.sendCode(ctx, email, codeDelivery{
		event:  "verification_sent",
		metric: MetricVerificationSent,
		config: e.configOrZero().Verification,
		save: func(ctx context.Context, id, code string, expiry time.Time) error {
			return e.repo.SaveEmailCode(ctx, id, code, expiry)
		},
		deliver: func(ctx context.Context, address, code string) error {
			return e.mailer.SendVerificationCode(ctx, address, code)
		},
	})
}

// VerifyEmail redeems a verification code, marking the identity verified and
// clearing the code pair.
//
// Every failure — unknown email, wrong code, expired code, already-redeemed
// code — collapses into [ErrCodeInvalid]; which check failed is never
// revealed. The OnVerify hook fires after a successful redemption.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) error {
	if e == nil || e.repo == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	identity, err := e.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			e.metricInc(MetricVerificationFailure)
			return e.fail(ctx, ErrCodeInvalid)
		}
		e.logger.Printf("authgate: verify lookup: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}

	if !otc.Validate(identity.EmailCode, identity.EmailCodeExpiry, code) {
		e.metricInc(MetricVerificationFailure)
		e.emit(ctx, "verify_email", identity.ID, email, false, ErrCodeInvalid, nil)
		return e.fail(ctx, ErrCodeInvalid)
	}

	redeemed, err := e.repo.RedeemEmailCode(ctx, identity.ID, code)
	if err != nil {
		e.logger.Printf("authgate: verify redeem: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}
	if !redeemed {
		// Lost the race: the code was redeemed between validation and here.
		e.metricInc(MetricVerificationFailure)
		return e.fail(ctx, ErrCodeInvalid)
	}

	identity.Verified = true
	identity.EmailCode = ""
	identity.EmailCodeExpiry = time.Time{}

	e.metricInc(MetricVerificationSuccess)
	e.emit(ctx, "verify_email", identity.ID, email, true, nil, nil)

	e.runHook(ctx, "onVerify", func() error {
		if e.hooks.OnVerify == nil {
			return nil
		}
		return e.hooks.OnVerify(ctx, identity)
	})

	return nil
}

// codeDelivery parameterizes the shared send-code flow for the two one-time
// code workflows.
type codeDelivery struct {
	event   string
	metric  MetricID
	config  CodeConfig
	save    func(ctx context.Context, id, code string, expiry time.Time) error
	deliver func(ctx context.Context, address, code string) error
}

func (e *Engine) sendCode(ctx context.Context, email string, d codeDelivery) error {
	if e == nil || e.repo == nil {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.gate(ctx, routeSendCode, email, MetricSendCodeRateLimited); err != nil {
		return err
	}

	identity, err := e.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			e.emit(ctx, d.event, "", email, false, ErrIdentityNotFound, nil)
			return e.fail(ctx, ErrIdentityNotFound)
		}
		e.logger.Printf("authgate: send code lookup: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}

	code, err := otc.Generate(d.config.Length, d.config.Charset)
	if err != nil {
		e.logger.Printf("authgate: code generate: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}
	expiry := time.Now().Add(d.config.Expiry)

	if err := d.save(ctx, identity.ID, code, expiry); err != nil {
		e.logger.Printf("authgate: code save: %v", err)
		return e.fail(ctx, ErrStoreUnavailable)
	}

	if err := d.deliver(ctx, identity.Email, code); err != nil {
		e.logger.Printf("authgate: code delivery: %v", err)
		e.emit(ctx, d.event, identity.ID, email, false, ErrMailUnavailable, nil)
		return e.fail(ctx, ErrMailUnavailable)
	}

	e.metricInc(d.metric)
	e.emit(ctx, d.event, identity.ID, email, true, nil, nil)
	return nil
}

func (e *Engine) configOrZero() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}
