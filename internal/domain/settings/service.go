package settings

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/beforest/brandvoice/pkg/errors"
	"github.com/beforest/brandvoice/pkg/util"
)

// Service reads and writes the prompt editor state.
type Service interface {
	Get(ctx context.Context) (View, error)
	Save(ctx context.Context, updatedBy string, req SaveRequest) (SaveResult, error)
	Put(ctx context.Context, updatedBy string, req PutRequest) (SaveResult, error)
	Prompts(ctx context.Context) (Prompts, error)
	ModelParams(ctx context.Context) (ModelParams, error)
	CheckPasscode(passcode string) error
	VerifyPasscode(passcode string) bool
	Seed(ctx context.Context, force bool) (int, error)
}

type service struct {
	cfg    Config
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService wires the settings domain.
func NewService(cfg Config, repo Repository, cache Cache, logger *slog.Logger) Service {
	cfg.PasscodeHash = strings.ToLower(strings.TrimSpace(cfg.PasscodeHash))
	return &service{cfg: cfg, repo: repo, cache: cache, logger: logger.With("component", "settings.service")}
}

func (s *service) Get(ctx context.Context) (View, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return View{}, apperrors.Wrap("settings_error", "failed to load settings", err)
	}
	prompts := DefaultPrompts()
	model := s.withDefaults(DefaultModelParams())
	view := View{Count: len(records)}
	for _, record := range records {
		switch record.Key {
		case KeyPrompts:
			if decoded, ok := s.decodePrompts(record); ok {
				prompts = decoded
			}
		case KeyModel:
			if decoded, ok := s.decodeModel(record); ok {
				model = s.withDefaults(decoded)
			}
		}
		if view.LastUpdated == nil || record.UpdatedAt.After(*view.LastUpdated) {
			updated := record.UpdatedAt
			view.LastUpdated = &updated
		}
	}
	view.Settings = prompts.Flatten()
	view.Model = model
	return view, nil
}

func (s *service) Save(ctx context.Context, updatedBy string, req SaveRequest) (SaveResult, error) {
	if req.Settings == nil {
		return SaveResult{}, apperrors.Wrap("invalid_input", "settings object is required", nil)
	}
	prompts, err := promptsFromMap(req.Settings)
	if err != nil {
		return SaveResult{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	if req.Model != nil {
		if err := req.Model.Validate(); err != nil {
			return SaveResult{}, apperrors.Wrap("invalid_input", err.Error(), nil)
		}
	}

	if err := s.store(ctx, KeyPrompts, prompts, updatedBy); err != nil {
		return SaveResult{}, err
	}
	saved := 1
	if req.Model != nil {
		if err := s.store(ctx, KeyModel, *req.Model, updatedBy); err != nil {
			return SaveResult{}, err
		}
		saved++
	}
	s.logger.Info("settings saved", "updated_by", updatedBy, "saved", saved)
	return SaveResult{Success: true, Message: "Settings saved successfully", Saved: saved, Timestamp: util.NowUTC()}, nil
}

func (s *service) Put(ctx context.Context, updatedBy string, req PutRequest) (SaveResult, error) {
	if len(req.Value) == 0 {
		return SaveResult{}, apperrors.Wrap("invalid_input", "value is required", nil)
	}
	switch strings.TrimSpace(req.Key) {
	case KeyPrompts:
		var prompts Prompts
		if err := decodeStrict(req.Value, &prompts); err != nil {
			return SaveResult{}, apperrors.Wrap("invalid_input", "prompts value is malformed", err)
		}
		if err := prompts.Validate(); err != nil {
			return SaveResult{}, apperrors.Wrap("invalid_input", err.Error(), nil)
		}
		if err := s.store(ctx, KeyPrompts, prompts, updatedBy); err != nil {
			return SaveResult{}, err
		}
	case KeyModel:
		var model ModelParams
		if err := decodeStrict(req.Value, &model); err != nil {
			return SaveResult{}, apperrors.Wrap("invalid_input", "model value is malformed", err)
		}
		if err := model.Validate(); err != nil {
			return SaveResult{}, apperrors.Wrap("invalid_input", err.Error(), nil)
		}
		if err := s.store(ctx, KeyModel, model, updatedBy); err != nil {
			return SaveResult{}, err
		}
	default:
		return SaveResult{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown setting key %q", req.Key), nil)
	}
	return SaveResult{Success: true, Message: "Setting updated successfully", Saved: 1, Timestamp: util.NowUTC()}, nil
}

func (s *service) Prompts(ctx context.Context) (Prompts, error) {
	record, found, err := s.load(ctx, KeyPrompts)
	if err != nil {
		return Prompts{}, apperrors.Wrap("settings_error", "failed to load prompts", err)
	}
	if found {
		if prompts, ok := s.decodePrompts(record); ok {
			return prompts, nil
		}
	}
	return DefaultPrompts(), nil
}

func (s *service) ModelParams(ctx context.Context) (ModelParams, error) {
	record, found, err := s.load(ctx, KeyModel)
	if err != nil {
		return ModelParams{}, apperrors.Wrap("settings_error", "failed to load model parameters", err)
	}
	if found {
		if model, ok := s.decodeModel(record); ok {
			return s.withDefaults(model), nil
		}
	}
	return s.withDefaults(DefaultModelParams()), nil
}

// CheckPasscode gates settings writes. An unset hash disables the gate.
func (s *service) CheckPasscode(passcode string) error {
	if s.cfg.PasscodeHash == "" {
		return nil
	}
	if !s.VerifyPasscode(passcode) {
		return apperrors.Wrap("forbidden", "settings passcode required", nil)
	}
	return nil
}

func (s *service) VerifyPasscode(passcode string) bool {
	if s.cfg.PasscodeHash == "" {
		return true
	}
	if passcode == "" {
		return false
	}
	sum := sha256.Sum256([]byte(passcode))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(s.cfg.PasscodeHash)) == 1
}

// Seed writes the default records. Existing rows are kept unless force is set.
func (s *service) Seed(ctx context.Context, force bool) (int, error) {
	defaults := []struct {
		key   string
		value any
	}{
		{KeyPrompts, DefaultPrompts()},
		{KeyModel, DefaultModelParams()},
	}
	written := 0
	for _, d := range defaults {
		if !force {
			_, found, err := s.repo.Get(ctx, d.key)
			if err != nil {
				return written, apperrors.Wrap("settings_error", "failed to read setting", err)
			}
			if found {
				continue
			}
		}
		if err := s.store(ctx, d.key, d.value, "init-settings"); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (s *service) store(ctx context.Context, key string, value any, updatedBy string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap("settings_error", "failed to encode setting", err)
	}
	if _, err := s.repo.Upsert(ctx, Record{Key: key, Value: payload, UpdatedBy: updatedBy, UpdatedAt: util.NowUTC()}); err != nil {
		return apperrors.Wrap("settings_error", "failed to save setting", err)
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("settings cache invalidation failed", "key", key, "error", err)
	}
	return nil
}

func (s *service) load(ctx context.Context, key string) (Record, bool, error) {
	if cached, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("settings cache read failed", "key", key, "error", err)
	} else if hit {
		var record Record
		if err := json.Unmarshal(cached, &record); err == nil {
			return record, true, nil
		}
	}

	record, found, err := s.repo.Get(ctx, key)
	if err != nil || !found {
		return record, found, err
	}
	if payload, err := json.Marshal(record); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("settings cache write failed", "key", key, "error", err)
		}
	}
	return record, true, nil
}

func (s *service) decodePrompts(record Record) (Prompts, bool) {
	var prompts Prompts
	if err := json.Unmarshal(record.Value, &prompts); err != nil {
		s.logger.Warn("stored prompts are malformed, using defaults", "error", err)
		return Prompts{}, false
	}
	if err := prompts.Validate(); err != nil {
		s.logger.Warn("stored prompts are invalid, using defaults", "error", err)
		return Prompts{}, false
	}
	return prompts, true
}

func (s *service) decodeModel(record Record) (ModelParams, bool) {
	var model ModelParams
	if err := json.Unmarshal(record.Value, &model); err != nil {
		s.logger.Warn("stored model parameters are malformed, using defaults", "error", err)
		return ModelParams{}, false
	}
	if err := model.Validate(); err != nil {
		s.logger.Warn("stored model parameters are invalid, using defaults", "error", err)
		return ModelParams{}, false
	}
	return model, true
}

func (s *service) withDefaults(model ModelParams) ModelParams {
	if strings.TrimSpace(model.Deployment) == "" {
		model.Deployment = s.cfg.DefaultDeployment
	}
	return model
}

func promptsFromMap(values map[string]any) (Prompts, error) {
	get := func(key string) (string, error) {
		raw, ok := values[key]
		if !ok {
			return "", fmt.Errorf("invalid or missing setting: %s", key)
		}
		str, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("invalid or missing setting: %s (must be a string)", key)
		}
		return str, nil
	}
	var (
		prompts Prompts
		err     error
	)
	if prompts.Main, err = get(PromptMain); err != nil {
		return Prompts{}, err
	}
	if prompts.Transform, err = get(PromptTransform); err != nil {
		return Prompts{}, err
	}
	if prompts.Justification, err = get(PromptJustification); err != nil {
		return Prompts{}, err
	}
	if err := prompts.Validate(); err != nil {
		return Prompts{}, err
	}
	return prompts, nil
}

func decodeStrict(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
