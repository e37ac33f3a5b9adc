package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-view/internal/domain/user"
	pkgerrors "user-view/pkg/errors"
	"user-view/pkg/logger"
)

// Usecase loads the user record for a view mount and applies payload policy.
type Usecase struct {
	source   Source              // Source for the upstream record
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for strict payload checks
	strict   bool                // Reject non-null payloads that fail the schema
}

// Option configures a Usecase.
type Option func(*Usecase)

// WithStrictSchema turns schema validation of non-null payloads on or off.
func WithStrictSchema(strict bool) Option {
	return func(uc *Usecase) {
		uc.strict = strict
	}
}

// New creates a new instance of Usecase with the provided source and logger.
func New(s Source, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{source: s, log: log, validate: validator.New()}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// LoadUser fetches the user once from the source.
// A nil user with a nil error means the upstream returned no usable value.
func (uc *Usecase) LoadUser(ctx context.Context) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Debug("loading user")

	u, err := uc.source.FetchUser(ctx)
	if err != nil {
		log.Warn("failed to load user", zap.Error(err))
		return nil, err
	}

	if u == nil {
		log.Info("upstream returned no user")
		return nil, nil
	}

	if uc.strict {
		if err := uc.validate.Struct(u); err != nil {
			log.Warn("user payload failed schema validation", zap.Error(err))
			return nil, formatValidationError(err)
		}
	}

	log.Info("user loaded", zap.String("id", u.ID), zap.Bool("has_street", u.HasStreet()))
	return u, nil
}
