package games

import (
	"log/slog"
	"sort"

	apperrors "github.com/formacode/course-service/internal/errors"
	"github.com/formacode/course-service/internal/models"
)

// GameDefinition describes one mini-game kind: how to recognize a valid
// payload and which top-level fields the editor must supply.
type GameDefinition struct {
	GameType       string
	RequiredFields []string

	// Validate reports whether config is structurally valid. It must never
	// panic; callers decide whether invalidity is fatal (import) or degrades
	// to an "unavailable" state (render).
	Validate func(config map[string]interface{}) bool
}

// Registry maps gameType discriminators to their definitions. It is built
// explicitly at startup and handed to the importer, exporter and play
// service; there is no process-global table.
type Registry struct {
	logger *slog.Logger
	defs   map[string]GameDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		defs:   make(map[string]GameDefinition),
	}
}

// NewDefaultRegistry creates a registry with the built-in game kinds.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, def := range builtinDefinitions() {
		r.Register(def)
	}
	return r
}

// Register adds a definition. Registering an already-known gameType replaces
// the previous entry; that is legal for extensions but worth a diagnostic.
func (r *Registry) Register(def GameDefinition) {
	if _, exists := r.defs[def.GameType]; exists {
		r.logger.Warn("overwriting registered game type", "game_type", def.GameType)
	}
	r.defs[def.GameType] = def
}

// Lookup returns the definition for a gameType.
func (r *Registry) Lookup(gameType string) (GameDefinition, bool) {
	def, ok := r.defs[gameType]
	return def, ok
}

// GameTypes returns the registered discriminators, sorted.
func (r *Registry) GameTypes() []string {
	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Unwrap resolves an accidentally double-wrapped payload: a config whose
// game_content field holds the real config is unwrapped exactly once. A
// second nesting level is ambiguous and rejected rather than recursed into.
func Unwrap(config map[string]interface{}) (map[string]interface{}, error) {
	inner, ok := config["game_content"].(map[string]interface{})
	if !ok {
		return config, nil
	}
	if _, nested := inner["game_content"].(map[string]interface{}); nested {
		return nil, apperrors.NewValidationError("game_content", "payload is nested more than one level deep", nil)
	}
	return inner, nil
}

// ValidateConfig checks a game payload end to end: unwraps one accidental
// wrapper level, requires a gameType discriminator, resolves it against the
// registry and runs the definition's validator. The returned error is nil
// for a valid payload.
func (r *Registry) ValidateConfig(config map[string]interface{}) error {
	if config == nil {
		return apperrors.NewValidationError(models.GameTypeKey, "game payload is missing", nil)
	}

	config, err := Unwrap(config)
	if err != nil {
		return err
	}

	gameType, _ := config[models.GameTypeKey].(string)
	if gameType == "" {
		return apperrors.NewValidationError(models.GameTypeKey, "is required", nil)
	}

	def, ok := r.defs[gameType]
	if !ok {
		return apperrors.NewInvalidTypeError(gameType, r.GameTypes())
	}

	if !def.Validate(config) {
		return apperrors.NewValidationError(models.GameTypeKey, "payload is invalid for game type "+gameType, gameType)
	}
	return nil
}
