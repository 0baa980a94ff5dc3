package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"horizonte-forms/internal/cep"
	"horizonte-forms/internal/mask"
	"horizonte-forms/internal/validation"
)

const (
	serviceTracerName = "horizonte-forms/internal/service"
	serviceMeterName  = "horizonte-forms/internal/service"
)

// FieldLookuper resolves a CEP on behalf of a form field, discarding
// responses for values the field no longer holds. Fields are keyed with
// cep.FieldKey.
type FieldLookuper interface {
	Observe(field string, rawCEP string)
	LookupField(ctx context.Context, field string, rawCEP string) (cep.Address, error)
}

type Service struct {
	registry *validation.Registry
	cep      FieldLookuper
	logger   *slog.Logger
	now      func() time.Time

	validationCounter metric.Int64Counter
	cepCounter        metric.Int64Counter
}

type Option func(*Service)

func New(options ...Option) *Service {
	svc := &Service{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	if svc.registry == nil {
		svc.registry = validation.NewRegistry(svc.now)
	}
	svc.initMetrics()
	return svc
}

// WithCEPLookup wires the address lookup collaborator. Plain Lookupers are
// wrapped so that stale responses are discarded per field.
func WithCEPLookup(lookup cep.Lookuper) Option {
	return func(s *Service) {
		if lookup == nil {
			return
		}
		if fieldLookup, ok := lookup.(FieldLookuper); ok {
			s.cep = fieldLookup
			return
		}
		s.cep = cep.NewGuarded(lookup, cep.NewTracker())
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRegistry(registry *validation.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func (s *Service) initMetrics() {
	meter := otel.Meter(serviceMeterName)

	validationCounter, err := meter.Int64Counter(
		"horizonte.validation.count",
		metric.WithDescription("Total de validacoes executadas por tipo e resultado"),
	)
	if err != nil {
		s.logger.Error("create validation counter", "error", err)
	}
	s.validationCounter = validationCounter

	cepCounter, err := meter.Int64Counter(
		"horizonte.cep.lookup.count",
		metric.WithDescription("Total de consultas de CEP por resultado"),
	)
	if err != nil {
		s.logger.Error("create cep lookup counter", "error", err)
	}
	s.cepCounter = cepCounter
}

// ValidatorNames lists the validator kinds accepted by Validate.
func (s *Service) ValidatorNames() []string {
	return s.registry.Names()
}

func (s *Service) Validate(ctx context.Context, kind string, value string) (validation.Result, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.Validate")
	defer span.End()

	kind = strings.ToLower(strings.TrimSpace(kind))
	span.SetAttributes(attribute.String("validation.kind", kind))

	validate, ok := s.registry.Lookup(kind)
	if !ok {
		return validation.Result{}, notFoundError(fmt.Sprintf("unknown validator %q", kind))
	}

	result := validate(value)
	s.recordValidation(ctx, kind, result.IsValid)
	return result, nil
}

// ValidateFields checks a whole form at once. Fields without a registered
// validator are only checked for presence when required.
func (s *Service) ValidateFields(ctx context.Context, input ValidateFieldsInput) (FormValidationOutput, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.ValidateFields")
	defer span.End()

	if len(input.Fields) == 0 {
		return FormValidationOutput{}, validationError("fields must contain at least one field")
	}

	output := FormValidationOutput{
		AllValid: true,
		Results:  make(map[string]validation.Result, len(input.Fields)),
	}
	for idx, field := range input.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return FormValidationOutput{}, validationError(fmt.Sprintf("fields[%d]: name is required", idx))
		}

		kind := strings.ToLower(strings.TrimSpace(field.Validation))
		var result validation.Result
		if validate, ok := s.registry.Lookup(kind); ok && kind != "" {
			result = validate(field.Value)
			s.recordValidation(ctx, kind, result.IsValid)
		} else {
			result = requiredResult(field)
		}

		output.Results[name] = result
		if !result.IsValid {
			output.AllValid = false
		}
	}

	span.SetAttributes(
		attribute.Int("form.field_count", len(input.Fields)),
		attribute.Bool("form.all_valid", output.AllValid),
	)
	return output, nil
}

func requiredResult(field FieldInput) validation.Result {
	filled := strings.TrimSpace(field.Value) != ""
	switch {
	case !field.Required:
		return validation.Result{IsValid: true}
	case filled:
		return validation.Result{IsValid: true, Message: "Campo preenchido"}
	default:
		return validation.Result{IsValid: false, Message: "Este campo é obrigatório"}
	}
}

func (s *Service) PasswordStrength(ctx context.Context, input PasswordInput) PasswordStrengthOutput {
	_, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.PasswordStrength")
	defer span.End()

	strength := validation.PasswordStrength(input.Password)
	span.SetAttributes(attribute.Int("password.level", strength.Level))

	return PasswordStrengthOutput{
		Level:   strength.Level,
		Label:   strength.Label,
		Missing: strength.Missing,
		Message: strength.Summary(),
	}
}

func (s *Service) ValidateFile(ctx context.Context, input FileValidationInput) (validation.Result, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.ValidateFile")
	defer span.End()

	if strings.TrimSpace(input.Name) == "" {
		return validation.Result{}, validationError("name is required")
	}
	if input.MaxSizeMB <= 0 {
		return validation.Result{}, validationError("max_size_mb must be greater than zero")
	}
	if input.Size < 0 {
		return validation.Result{}, validationError("size cannot be negative")
	}

	allowedTypes := strings.TrimSpace(input.AllowedTypes)
	if allowedTypes == "" {
		allowedTypes = validation.AnyFileType
	}

	result := validation.ValidateFile(validation.FileInfo{
		Name: strings.TrimSpace(input.Name),
		Size: input.Size,
		Type: strings.TrimSpace(input.Type),
	}, input.MaxSizeMB, allowedTypes)
	s.recordValidation(ctx, "file", result.IsValid)
	return result, nil
}

func (s *Service) ApplyMask(ctx context.Context, kind string, value string) (MaskOutput, error) {
	_, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.ApplyMask")
	defer span.End()

	kind = strings.ToLower(strings.TrimSpace(kind))
	span.SetAttributes(attribute.String("mask.kind", kind))

	masked, err := mask.Apply(kind, value)
	if err != nil {
		if errors.Is(err, mask.ErrUnknownMask) {
			return MaskOutput{}, notFoundError(fmt.Sprintf("unknown mask %q", kind))
		}
		return MaskOutput{}, err
	}
	return MaskOutput{Kind: kind, Value: masked}, nil
}

// LookupCEP resolves a postal code for the given form field. Lookup failures
// are reported in the output message; only a response superseded by a newer
// value for the same field is returned as an error. Every call counts as an
// edit of the field, including values too short to look up.
func (s *Service) LookupCEP(ctx context.Context, input CEPLookupInput) (CEPOutput, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.LookupCEP")
	defer span.End()

	if s.cep == nil {
		return CEPOutput{}, fmt.Errorf("cep lookup is not configured")
	}

	fieldID := strings.TrimSpace(input.FieldID)
	if fieldID != "" && strings.TrimSpace(input.ClientID) == "" {
		return CEPOutput{}, validationError("client id is required when field_id is set")
	}
	field := cep.FieldKey(input.ClientID, fieldID)
	s.cep.Observe(field, input.CEP)

	if result := validation.ValidateCEP(input.CEP); !result.IsValid {
		s.recordCEP(ctx, "invalid")
		return CEPOutput{Message: result.Message}, nil
	}

	address, err := s.cep.LookupField(ctx, field, input.CEP)
	switch {
	case err == nil:
		s.recordCEP(ctx, "found")
		return CEPOutput{
			Found:   true,
			Message: "CEP encontrado",
			Address: &AddressOutput{
				CEP:          address.CEP,
				Street:       address.Street,
				Complement:   address.Complement,
				Neighborhood: address.Neighborhood,
				City:         address.City,
				State:        address.State,
			},
		}, nil
	case errors.Is(err, cep.ErrStale):
		s.recordCEP(ctx, "stale")
		return CEPOutput{}, conflictError("cep changed during lookup")
	case errors.Is(err, cep.ErrNotFound):
		s.recordCEP(ctx, "not_found")
		return CEPOutput{Message: "CEP não encontrado"}, nil
	case errors.Is(err, cep.ErrTimeout):
		s.recordCEP(ctx, "timeout")
		s.logger.WarnContext(ctx, "cep lookup timed out", "error", err)
		return CEPOutput{Message: "Tempo limite excedido"}, nil
	default:
		s.recordCEP(ctx, "error")
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "cep lookup failed", "error", err)
		return CEPOutput{Message: "Erro ao buscar CEP"}, nil
	}
}

func (s *Service) SubmitContact(ctx context.Context, input ContactInput) (SubmissionOutput, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.SubmitContact")
	defer span.End()

	if strings.TrimSpace(input.Name) == "" {
		return SubmissionOutput{}, validationError("name is required")
	}
	if !validation.ValidateEmail(input.Email) {
		return SubmissionOutput{}, validationError("invalid email")
	}
	if err := validateOptionalPhone(input.Phone); err != nil {
		return SubmissionOutput{}, err
	}
	if strings.TrimSpace(input.Message) == "" {
		return SubmissionOutput{}, validationError("message is required")
	}

	protocol, err := newUUIDV7()
	if err != nil {
		return SubmissionOutput{}, err
	}

	s.logger.InfoContext(ctx, "contact message received",
		"protocol", protocol,
		"subject", strings.TrimSpace(input.Subject),
	)
	return SubmissionOutput{
		Protocol: protocol,
		Message:  "Mensagem enviada com sucesso! Entraremos em contato em breve.",
	}, nil
}

func (s *Service) SubmitDonor(ctx context.Context, input DonorInput) (DonorOutput, error) {
	ctx, span := otel.Tracer(serviceTracerName).Start(ctx, "Service.SubmitDonor")
	defer span.End()

	if strings.TrimSpace(input.Name) == "" {
		return DonorOutput{}, validationError("name is required")
	}
	if !validation.ValidateEmail(input.Email) {
		return DonorOutput{}, validationError("invalid email")
	}
	if result := validation.ValidateTaxID(input.TaxIDNumber); !result.IsValid {
		return DonorOutput{}, validationError("invalid CPF/CNPJ")
	}
	if err := validateOptionalPhone(input.Phone); err != nil {
		return DonorOutput{}, err
	}
	if input.CEP != nil && strings.TrimSpace(*input.CEP) != "" {
		if result := validation.ValidateCEP(*input.CEP); !result.IsValid {
			return DonorOutput{}, validationError("invalid CEP")
		}
	}
	if input.AmountCents <= 0 {
		return DonorOutput{}, validationError("amount_cents must be greater than zero")
	}

	protocol, err := newUUIDV7()
	if err != nil {
		return DonorOutput{}, err
	}

	amount := mask.BRL(input.AmountCents)
	s.logger.InfoContext(ctx, "donor registration received", "protocol", protocol, "amount", amount)
	return DonorOutput{
		SubmissionOutput: SubmissionOutput{
			Protocol: protocol,
			Message:  "Cadastro de doador recebido com sucesso!",
		},
		TaxIDNumber: mask.TaxID(input.TaxIDNumber),
		Amount:      amount,
	}, nil
}

func validateOptionalPhone(phone *string) error {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if !validation.ValidatePhone(*phone).IsValid {
		return validationError("invalid phone")
	}
	return nil
}

func (s *Service) recordValidation(ctx context.Context, kind string, valid bool) {
	if s.validationCounter == nil {
		return
	}
	s.validationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("validation.kind", kind),
		attribute.Bool("validation.valid", valid),
	))
}

func (s *Service) recordCEP(ctx context.Context, outcome string) {
	if s.cepCounter == nil {
		return
	}
	s.cepCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("cep.outcome", outcome)))
}

func newUUIDV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}
	return id.String(), nil
}
