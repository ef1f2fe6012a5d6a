package scan

import (
	"context"
	"strconv"
	"time"

	"github.com/jhoicas/scanledger/pkg/logger"

	codes "github.com/jhoicas/scanledger/internal/domain/scan"
)

// DefaultPromptTTL vencimiento de un prompt abierto que la UI nunca descartó.
const DefaultPromptTTL = time.Minute

// Service une Normalizer -> Resolver -> Route para las tres superficies de entrada.
type Service struct {
	normalizer codes.Normalizer
	resolver   *Resolver
	guard      PromptGuard
	promptTTL  time.Duration
	log        *logger.Logger
}

// NewService construye el orquestador. guard nil usa un MemoryGuard.
func NewService(normalizer codes.Normalizer, resolver *Resolver, guard PromptGuard, promptTTL time.Duration, log *logger.Logger) *Service {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if promptTTL <= 0 {
		promptTTL = DefaultPromptTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		normalizer: normalizer,
		resolver:   resolver,
		guard:      guard,
		promptTTL:  promptTTL,
		log:        log.Component("scan"),
	}
}

// Normalize expone el normalizador (alta manual de ítems, chequeos de código).
func (s *Service) Normalize(raw string) string {
	return s.normalizer.Normalize(raw)
}

// Scan procesa una entrada cruda de la sesión session.
// Un código vacío devuelve ActionNone; uno desconocido, ActionRegister.
// Si ya hay un prompt abierto para el mismo ítem, con la misma acción y sin cambios de estado
// desde que se abrió, la decisión vuelve con Duplicate=true.
func (s *Service) Scan(ctx context.Context, session, raw string, src Source) (Decision, error) {
	code := s.normalizer.Normalize(raw)
	if code == "" {
		return Decision{Action: ActionNone, Source: src}, nil
	}

	res, err := s.resolver.Lookup(ctx, code)
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Str("source", string(src)).Msg("fallo al resolver código")
		return Decision{}, err
	}

	d := Route(code, res.Item)
	d.Match = res.Match
	d.Source = src

	ok, err := s.guard.Acquire(ctx, promptKey(session, d.Subject()), promptToken(d), s.promptTTL)
	if err != nil {
		// sin guardián se muestra el prompt; peor caso, uno repetido
		s.log.Warn().Err(err).Str("session", session).Msg("guardián de prompts no disponible")
	} else if !ok {
		d.Duplicate = true
	}

	ev := s.log.Info().Str("code", code).Str("action", string(d.Action)).Str("source", string(src)).Bool("duplicate", d.Duplicate)
	if d.Item != nil {
		ev = ev.Str("item_id", d.Item.ID).Str("match", string(d.Match))
	}
	ev.Msg("escaneo resuelto")
	return d, nil
}

// Dismiss cierra el prompt de subject (ver Decision.Subject) en la sesión.
func (s *Service) Dismiss(ctx context.Context, session, subject string) error {
	return s.guard.Release(ctx, promptKey(session, subject))
}

// Consumed cierra el prompt del ítem en la sesión tras un movimiento aplicado.
func (s *Service) Consumed(ctx context.Context, session, itemID string) error {
	return s.Dismiss(ctx, session, "item:"+itemID)
}

func promptKey(session, subject string) string {
	return session + "|" + subject
}

// promptToken versión del prompt: la acción y la última modificación del ítem. Un movimiento o
// cambio de estado hecho desde cualquier sesión abre un prompt nuevo al re-escanear.
func promptToken(d Decision) string {
	if d.Item == nil {
		return string(d.Action)
	}
	return string(d.Action) + "@" + strconv.FormatInt(d.Item.UpdatedAt.UnixNano(), 10)
}
