package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"innerlevel/internal/card"
	"innerlevel/internal/config"
	"innerlevel/internal/energy"
	"innerlevel/internal/forge"
	"innerlevel/internal/game"
	"innerlevel/internal/persist"
	"innerlevel/internal/player"
	"innerlevel/internal/quest"
	"innerlevel/internal/recommend"
	"innerlevel/internal/telemetry"
)

// Session is the single logical owner of one player's state. The engine
// itself is pure; the session serializes dispatches and feeds the
// debounced saver after every successful transition.
type Session struct {
	mu     sync.Mutex
	state  player.State
	engine game.Engine
	saver  *persist.Saver
}

func NewSession(initial player.State, engine game.Engine, saver *persist.Saver) *Session {
	return &Session{state: initial, engine: engine, saver: saver}
}

// Dispatch applies one action and, on success, queues a snapshot write.
func (s *Session) Dispatch(a game.Action) (game.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.engine.Apply(s.state, a)
	if err != nil {
		return game.Result{State: s.state}, err
	}
	s.state = res.State
	if s.saver != nil {
		s.saver.Queue(s.state.UserID, s.state)
	}
	return res, nil
}

// State returns the current snapshot with energy advanced to now, so a
// periodic UI refresh reads a correct value without dispatching anything.
func (s *Session) State() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := player.Clone(s.state)
	view.Energy = energy.Advance(view.Energy, s.engine.Clock.Now())
	return view
}

// App holds what the handlers depend on.
type App struct {
	Session   *Session
	Balance   config.Balance
	Forge     *forge.Client
	Telemetry telemetry.Repository
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps typed engine failures onto HTTP statuses. The
// body carries the precise reason so the UI can render exact copy.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		insufficient *energy.InsufficientError
		cooldown     *card.CooldownError
		condition    *card.ConditionError
		cardMissing  *game.CardNotFoundError
		questMissing *game.QuestNotFoundError
	)
	switch {
	case errors.As(err, &insufficient), errors.As(err, &cooldown), errors.As(err, &condition):
		status = http.StatusConflict
	case errors.As(err, &cardMissing), errors.As(err, &questMissing):
		status = http.StatusNotFound
	default:
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	session := app.Session

	Handle(mux, rr, "GET /api/state", "Current player state", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, session.State())
	})

	Handle(mux, rr, "POST /api/energy/add", "Restore energy", `{"amount":10}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount float64 `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := session.Dispatch(game.AddEnergy{Amount: body.Amount})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Energy)
	})

	Handle(mux, rr, "POST /api/energy/consume", "Spend energy on an activity", `{"amount":15,"activity":"errands"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount   float64 `json:"amount"`
			Activity string  `json:"activity"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := session.Dispatch(game.ConsumeEnergy{Amount: body.Amount, Activity: body.Activity})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Energy)
	})

	Handle(mux, rr, "POST /api/cards/execute", "Execute an inventory card", `{"card_id":"c_morning_ritual"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CardID string `json:"card_id"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := session.Dispatch(game.ExecuteCard{CardID: body.CardID})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"state":     res.State,
			"execution": res.Execution,
			"message":   res.Message,
		})
	})

	Handle(mux, rr, "POST /api/cards", "Add a card to the inventory", `{"id":"c_custom","name":"Custom","type":"action","rarity":"common","impact":10}`, func(w http.ResponseWriter, r *http.Request) {
		var c card.Card
		if !decode(w, r, &c) {
			return
		}
		res, err := session.Dispatch(game.AddCard{Card: c})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Inventory)
	})

	Handle(mux, rr, "POST /api/xp", "Gain experience", `{"amount":50}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount int `json:"amount"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := session.Dispatch(game.GainExperience{Amount: body.Amount})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"experience":   res.State.Experience,
			"level":        res.State.Level,
			"skill_points": res.State.SkillPoints,
		})
	})

	Handle(mux, rr, "POST /api/quests", "Create a quest", `{"id":"q_report","title":"Ship the report","type":"work"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Type  string `json:"type"`
		}
		if !decode(w, r, &body) {
			return
		}
		q := quest.New(body.ID, body.Title, body.Type, time.Now())
		res, err := session.Dispatch(game.CreateQuest{Quest: q})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Quests)
	})

	Handle(mux, rr, "POST /api/quests/{id}/advance", "Advance quest progress", `{"delta":25}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Delta float64 `json:"delta"`
		}
		if !decode(w, r, &body) {
			return
		}
		res, err := session.Dispatch(game.AdvanceQuest{QuestID: r.PathValue("id"), Delta: body.Delta})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Quests)
	})

	Handle(mux, rr, "POST /api/quests/{id}/complete", "Complete a quest", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := session.Dispatch(game.CompleteQuest{QuestID: r.PathValue("id")})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, map[string]any{"quests": res.State.Quests, "message": res.Message})
	})

	Handle(mux, rr, "POST /api/quests/{id}/pause", "Pause a quest", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := session.Dispatch(game.PauseQuest{QuestID: r.PathValue("id")})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Quests)
	})

	Handle(mux, rr, "POST /api/quests/{id}/resume", "Resume a paused quest", "", func(w http.ResponseWriter, r *http.Request) {
		res, err := session.Dispatch(game.ResumeQuest{QuestID: r.PathValue("id")})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, res.State.Quests)
	})

	Handle(mux, rr, "GET /api/recommendations", "Rank the catalogue for right now", "", func(w http.ResponseWriter, r *http.Request) {
		limit := app.Balance.ShortlistSize
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 {
				limit = n
			}
		}
		st := session.State()
		ranked := recommend.Rank(st.Inventory, recommendContext(st), limit)
		writeJSON(w, ranked)
	})

	Handle(mux, rr, "POST /api/forge/suggest", "Ask the forge for new cards, fall back to local ranking", `{"goal":"finish thesis","situation":"tired, evening"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Goal      string `json:"goal"`
			Situation string `json:"situation"`
		}
		if !decode(w, r, &body) {
			return
		}
		st := session.State()

		if app.Forge != nil {
			suggestion, err := app.Forge.Suggest(r.Context(), forge.PromptContext{
				Class:     st.Class,
				Level:     st.Level,
				Energy:    st.Energy.Current,
				MaxEnergy: st.Energy.Maximum,
				Goal:      body.Goal,
				Situation: body.Situation,
			})
			if err == nil {
				writeJSON(w, map[string]any{"source": "forge", "cards": suggestion.Cards, "reasoning": suggestion.Reasoning})
				return
			}
			log.Printf("forge suggestion failed, falling back to local scorer: %v", err)
			if app.Telemetry != nil {
				_ = app.Telemetry.RecordEvent(telemetry.EventForgeFallback, telemetry.EventMetadata{"error": err.Error()})
			}
		}

		ranked := recommend.Rank(st.Inventory, recommendContext(st), app.Balance.ShortlistSize)
		cards := make([]card.Card, 0, len(ranked))
		for _, sc := range ranked {
			cards = append(cards, sc.Card)
		}
		writeJSON(w, map[string]any{"source": "local", "cards": cards})
	})

	Handle(mux, rr, "GET /api/telemetry/stats", "Aggregated session stats", "", func(w http.ResponseWriter, r *http.Request) {
		if app.Telemetry == nil {
			writeJSON(w, telemetry.Stats{})
			return
		}
		events, err := app.Telemetry.GetEvents(time.Time{}, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		stats, err := telemetry.CalculateStats(events, time.Time{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	})

	Handle(mux, rr, "GET /api/routes", "List registered routes", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rr.List())
	})
}

func recommendContext(st player.State) recommend.Context {
	return recommend.Context{
		Energy:    st.Energy,
		Level:     st.Level,
		Now:       st.Energy.LastUpdate,
		Cooldowns: st.Cooldowns,
		Quests:    st.Quests,
	}
}
