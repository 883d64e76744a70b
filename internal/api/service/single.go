package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/model"
	"github.com/cuongbtq/email-verifier-be/shared/bouncify"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
)

const providerName = "bouncify"

type singleInput struct {
	Email string `validate:"required,email"`
}

// SingleVerifier verifies one address at a time for one credit
type SingleVerifier struct {
	ledger      *Ledger
	provider    Provider
	validations ValidationStore
	activity    ActivityRecorder
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewSingleVerifier(
	ledger *Ledger,
	provider Provider,
	validations ValidationStore,
	activity ActivityRecorder,
	logger *slog.Logger,
) *SingleVerifier {
	return &SingleVerifier{
		ledger:      ledger,
		provider:    provider,
		validations: validations,
		activity:    orNop(activity),
		validate:    validator.New(),
		logger:      logger,
	}
}

// SingleVerification is the provider verdict plus the stored record. Record
// is nil when the check could not be charged or persisted.
type SingleVerification struct {
	Result *bouncify.SingleResult
	Record *model.EmailValidation
}

// Verify checks an address with the provider. A nil result with a nil error
// means the provider gave no verdict and nothing was charged.
//
// Once the provider has answered, the result is always returned: a failed
// deduction skips persistence, and a failed persist is only logged.
func (s *SingleVerifier) Verify(ctx context.Context, userID, email string) (*SingleVerification, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(singleInput{Email: email}); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}

	ok, err := s.ledger.HasEnoughCredits(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: single verification needs 1 credit", domain.ErrInsufficientCredits)
	}

	result, err := s.provider.VerifySingle(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if result == nil {
		return nil, nil
	}

	if _, err := s.ledger.DeductCredits(ctx, userID, 1, domain.EmailChargeReason(email), domain.CategoryVerifiedEmail); err != nil {
		s.logger.Error("Failed to deduct credit for single verification",
			slog.String("user_id", userID),
			slog.String("email", email),
			slog.Any("error", err),
		)
		return &SingleVerification{Result: result}, nil
	}

	record := s.persist(ctx, userID, email, result)

	metadata := map[string]any{"email": email, "result": result.Result}
	if record != nil {
		metadata["id"] = SingleIDPrefix + record.ID
	}
	s.activity.Record(ctx, domain.Activity{
		UserID:      userID,
		Module:      domain.ModuleSingleEmail,
		Action:      domain.ActionVerifySingle,
		Description: "Verified " + email,
		Metadata:    metadata,
	})

	return &SingleVerification{Result: result, Record: record}, nil
}

func (s *SingleVerifier) persist(ctx context.Context, userID, email string, result *bouncify.SingleResult) *model.EmailValidation {
	raw := result.Raw
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(result); err != nil {
			s.logger.Error("Failed to encode verification result", slog.Any("error", err))
			return nil
		}
	}

	record := &model.EmailValidation{
		UserID:      userID,
		Email:       email,
		Status:      result.Result,
		Provider:    providerName,
		UsedCredits: 1,
		Result:      types.JSONText(raw),
	}
	if err := s.validations.CreateValidation(ctx, record); err != nil {
		s.logger.Error("Failed to persist single verification",
			slog.String("user_id", userID),
			slog.String("email", email),
			slog.Any("error", err),
		)
		return nil
	}

	return record
}
