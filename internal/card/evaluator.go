package card

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"innerlevel/internal/energy"
)

// CooldownError reports a card still cooling down.
type CooldownError struct {
	CardID string
	Until  time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("card %s is on cooldown until %s", e.CardID, e.Until.Format(time.RFC3339))
}

// ConditionError reports the first declared condition that failed.
type ConditionError struct {
	Kind   ConditionKind
	Reason string
}

func (e *ConditionError) Error() string { return e.Reason }

// Context is the player-side input to eligibility and execution.
type Context struct {
	Energy    energy.State
	Level     int
	Now       time.Time
	Cooldowns map[string]time.Time
}

// ExecutionResult is the ephemeral outcome of executing a card. It is
// consumed immediately by the reducer and never persisted.
type ExecutionResult struct {
	Success        bool      `json:"success"`
	EnergyConsumed float64   `json:"energy_consumed"`
	EnergyRestored float64   `json:"energy_restored"`
	ProgressGained int       `json:"progress_gained"`
	AppliedEffects []string  `json:"applied_effects,omitempty"`
	CooldownUntil  time.Time `json:"cooldown_until,omitempty"`
	Message        string    `json:"message"`
}

// Evaluator decides card eligibility and scores executions. It wraps a CEL
// environment for cards carrying a custom condition expression; compiled
// programs are cached per expression.
type Evaluator struct {
	// RecoveryCap bounds how much energy a single recovery execution may
	// restore, regardless of how negative the card's cost is. This is a
	// balance knob, not validation: recovery cards are intentional.
	RecoveryCap float64

	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator builds an evaluator with a CEL environment exposing the
// player context to condition expressions.
func NewEvaluator(recoveryCap float64) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("energy", cel.DoubleType),
		cel.Variable("energyPct", cel.DoubleType),
		cel.Variable("level", cel.IntType),
		cel.Variable("hour", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("build condition env: %w", err)
	}
	return &Evaluator{
		RecoveryCap: recoveryCap,
		env:         env,
		programs:    map[string]cel.Program{},
	}, nil
}

// Evaluate returns nil when the card is eligible, or the first failure as
// a typed error: *CooldownError, *energy.InsufficientError or
// *ConditionError. Checks run in a fixed order (cooldown, energy,
// conditions) and short-circuit; the caller surfaces exactly one reason.
func (ev *Evaluator) Evaluate(c Card, ctx Context) error {
	if until, ok := ctx.Cooldowns[c.ID]; ok && until.After(ctx.Now) {
		return &CooldownError{CardID: c.ID, Until: until}
	}

	// Recovery cards (cost <= 0) always pass the energy gate.
	if c.EnergyCost > 0 && ctx.Energy.Current < c.EnergyCost {
		return &energy.InsufficientError{Need: c.EnergyCost, Have: ctx.Energy.Current}
	}

	if c.Conditions == nil {
		return nil
	}
	cond := *c.Conditions

	if cond.MinEnergyPct != nil && ctx.Energy.Percent() < *cond.MinEnergyPct {
		return &ConditionError{
			Kind:   CondEnergyPct,
			Reason: fmt.Sprintf("requires at least %.0f%% energy, at %.0f%%", *cond.MinEnergyPct, ctx.Energy.Percent()),
		}
	}
	if len(cond.TimeOfDay) > 0 {
		now := CurrentWindow(ctx.Now)
		ok := false
		for _, w := range cond.TimeOfDay {
			if w == now {
				ok = true
				break
			}
		}
		if !ok {
			return &ConditionError{
				Kind:   CondTimeOfDay,
				Reason: fmt.Sprintf("only playable during %v", cond.TimeOfDay),
			}
		}
	}
	if cond.MinLevel != nil && ctx.Level < *cond.MinLevel {
		return &ConditionError{
			Kind:   CondMinLevel,
			Reason: fmt.Sprintf("requires level %d, at level %d", *cond.MinLevel, ctx.Level),
		}
	}
	if cond.Expr != "" {
		ok, err := ev.evalExpr(cond.Expr, ctx)
		if err != nil || !ok {
			// Evaluation failure counts as not met; the engine never
			// crashes on a malformed generated expression.
			return &ConditionError{
				Kind:   CondExpr,
				Reason: fmt.Sprintf("condition %q not met", cond.Expr),
			}
		}
	}
	return nil
}

// Execute scores an eligible card. Scoring order is fixed policy: declared
// multiplier effects, then the rarity multiplier, then the time-of-day
// bonus, each multiplicative, rounded to the nearest integer at the end.
// Execute does not re-check eligibility and never mutates the card.
func (ev *Evaluator) Execute(c Card, ctx Context) ExecutionResult {
	raw := c.Impact
	applied := []string{}

	for _, eff := range c.Effects {
		switch eff.Kind {
		case EffectMultiplier:
			raw *= eff.Value
			applied = append(applied, fmt.Sprintf("%s x%.2f", effectLabel(eff), eff.Value))
		case EffectFlatBonus:
			raw += eff.Value
			applied = append(applied, fmt.Sprintf("%s +%.0f", effectLabel(eff), eff.Value))
		}
	}

	if m := c.Rarity.Multiplier(); m != 1.0 {
		raw *= m
		applied = append(applied, fmt.Sprintf("%s rarity x%.2f", c.Rarity, m))
	}

	if b := timeBonus(ctx.Now); b != 1.0 {
		raw *= b
		applied = append(applied, fmt.Sprintf("time of day x%.1f", b))
	}

	progress := int(math.Round(raw))

	res := ExecutionResult{
		Success:        true,
		ProgressGained: progress,
		AppliedEffects: applied,
		Message:        fmt.Sprintf("%s complete: +%d progress", c.Name, progress),
	}

	if c.EnergyCost >= 0 {
		res.EnergyConsumed = c.EnergyCost
	} else {
		restore := -c.EnergyCost
		if ev.RecoveryCap > 0 && restore > ev.RecoveryCap {
			restore = ev.RecoveryCap
		}
		res.EnergyRestored = restore
		res.Message = fmt.Sprintf("%s complete: +%d progress, +%.0f energy", c.Name, progress, restore)
	}

	if c.CooldownHours > 0 {
		res.CooldownUntil = ctx.Now.Add(time.Duration(c.CooldownHours * float64(time.Hour)))
	}
	return res
}

// timeBonus rewards early-morning and early-evening executions.
func timeBonus(t time.Time) float64 {
	switch h := t.Hour(); {
	case h >= 6 && h < 10:
		return 1.2
	case h >= 18 && h < 21:
		return 1.1
	default:
		return 1.0
	}
}

func effectLabel(e Effect) string {
	if e.Target != "" {
		return e.Target
	}
	return "progress"
}

func (ev *Evaluator) evalExpr(expr string, ctx Context) (bool, error) {
	prg, err := ev.program(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]any{
		"energy":    ctx.Energy.Current,
		"energyPct": ctx.Energy.Percent(),
		"level":     int64(ctx.Level),
		"hour":      int64(ctx.Now.Hour()),
	})
	if err != nil {
		return false, err
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("condition expression %q is not boolean", expr)
	}
	return ok, nil
}

func (ev *Evaluator) program(expr string) (cel.Program, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if prg, ok := ev.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := ev.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile condition %q: %w", expr, issues.Err())
	}
	prg, err := ev.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program condition %q: %w", expr, err)
	}
	ev.programs[expr] = prg
	return prg, nil
}
