package quote

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/common"
	"github.com/noah-isme/tour-inventory/internal/obs"
	"github.com/noah-isme/tour-inventory/internal/pricing"
)

// SnapshotSource provides the catalog snapshot quotes are priced against.
type SnapshotSource interface {
	Current(ctx context.Context) (*catalog.Snapshot, error)
}

// Input is the payload of a quote request.
type Input struct {
	OfferID  string `json:"offerId" validate:"required,max=64"`
	RateID   string `json:"rateId" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=10000"`
	Channel  string `json:"channel" validate:"required,max=32"`
}

// Quote is a priced sell attempt.
type Quote struct {
	ID              string    `json:"id"`
	QuotedAt        time.Time `json:"quotedAt"`
	CatalogLoadedAt time.Time `json:"catalogLoadedAt"`
	pricing.Response
}

// Service prices quote requests against the current catalog snapshot.
type Service struct {
	Catalog   SnapshotSource
	Engine    *pricing.Engine
	Validator *validator.Validate
	Log       zerolog.Logger
	Now       func() time.Time
	NewID     func() string
}

// NewValidator returns a validator reporting json field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create validates in and prices it. Unknown catalog references surface as
// 404 errors and failed validation as 400.
func (s *Service) Create(ctx context.Context, in Input) (Quote, error) {
	if s == nil || s.Catalog == nil || s.Engine == nil {
		return Quote{}, errors.New("quote service not configured")
	}
	in.OfferID = strings.TrimSpace(in.OfferID)
	in.RateID = strings.TrimSpace(in.RateID)
	in.Channel = strings.ToLower(strings.TrimSpace(in.Channel))
	if err := s.validate(in); err != nil {
		record(in.Channel, "invalid")
		return Quote{}, err
	}

	snap, err := s.Catalog.Current(ctx)
	if err != nil {
		record(in.Channel, "error")
		return Quote{}, err
	}
	resp, err := s.Engine.ComputePrice(snap, pricing.Request{
		OfferID:  in.OfferID,
		RateID:   in.RateID,
		Quantity: in.Quantity,
		Channel:  in.Channel,
	})
	if err != nil {
		var nf *pricing.NotFoundError
		if errors.As(err, &nf) {
			record(in.Channel, "not_found")
			appErr := common.NotFound(fmt.Sprintf("%s not found", nf.Kind), err)
			appErr.Details = map[string]string{"kind": nf.Kind, "id": nf.ID}
			return Quote{}, appErr
		}
		record(in.Channel, "error")
		return Quote{}, err
	}

	if resp.Policy != nil && !resp.Policy.Strategy.Valid() {
		s.Log.Warn().Str("policy_id", resp.Policy.ID).Str("strategy", string(resp.Policy.Strategy)).Msg("pricing policy has unknown strategy, no markup applied")
	}
	if !resp.Availability.CanBook {
		if obs.AvailabilityDeniedTotal != nil {
			obs.AvailabilityDeniedTotal.Inc()
		}
		record(in.Channel, "unavailable")
	} else {
		record(in.Channel, "ok")
	}

	q := Quote{
		ID:              s.newID(),
		QuotedAt:        s.now(),
		CatalogLoadedAt: snap.LoadedAt(),
		Response:        resp,
	}
	s.Log.Debug().
		Str("quote_id", q.ID).
		Str("offer_id", resp.OfferID).
		Str("rate_id", resp.RateID).
		Str("channel", resp.Channel).
		Str("gross", resp.GrossRate.String()).
		Bool("can_book", resp.Availability.CanBook).
		Msg("quote computed")
	return q, nil
}

func (s *Service) validate(in Input) error {
	v := s.Validator
	if v == nil {
		v = NewValidator()
	}
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.BadRequest("invalid quote request", err, nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return common.BadRequest("invalid quote request", err, map[string]any{"fields": fields})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func record(channel, result string) {
	if obs.QuotesTotal == nil {
		return
	}
	if channel == "" {
		channel = "unknown"
	}
	obs.QuotesTotal.WithLabelValues(channel, result).Inc()
}
