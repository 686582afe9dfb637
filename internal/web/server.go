// Package web serves the inbound webhook and the operational endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leminhq/remindbot/internal/cache"
	"github.com/leminhq/remindbot/internal/command"
	"github.com/leminhq/remindbot/internal/config"
	"github.com/leminhq/remindbot/internal/report"
	"github.com/leminhq/remindbot/internal/store"
	"github.com/leminhq/remindbot/internal/telegram"
)

// Reporter builds the on-demand task listing.
type Reporter interface {
	List(ctx context.Context, today time.Time) report.Report
}

// Notifier delivers messages to the configured chat.
type Notifier interface {
	Send(ctx context.Context, text string) bool
	SendLong(ctx context.Context, text string) bool
}

// Pages is the write side of the record store used by chat commands.
type Pages interface {
	CreatePage(ctx context.Context, dbID string, properties map[string]any) (store.Record, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]any) error
	Schema(ctx context.Context, dbID string) (json.RawMessage, error)
}

// Server holds the webhook handlers and their dependencies.
type Server struct {
	cfg      config.Config
	loc      *time.Location
	reporter Reporter
	notifier Notifier
	pages    Pages
	index    *cache.Index
	now      func() time.Time
}

// NewServer creates the webhook server.
func NewServer(cfg config.Config, loc *time.Location, reporter Reporter, notifier Notifier, pages Pages, index *cache.Index) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		cfg:      cfg,
		loc:      loc,
		reporter: reporter,
		notifier: notifier,
		pages:    pages,
		index:    index,
		now:      time.Now,
	}
}

// Routes returns the router for the webhook server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/schema", s.handleSchema)
	return mux
}

// handleWebhook processes one chat update. It always answers 200 so the chat
// platform never retries a delivered update; failures are reported back into
// the chat instead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("webhook payload did not decode")
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.ChatID()
	// The configured chat id doubles as the shared secret.
	if s.cfg.Telegram.ChatID == "" || chatID != s.cfg.Telegram.ChatID {
		log.Warn().Str("chat_id", chatID).Msg("update from unexpected chat, ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	s.dispatch(r.Context(), chatID, update.Message.Text)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(ctx context.Context, chatID, text string) {
	cmd, err := command.Parse(text, s.loc)
	switch {
	case errors.Is(err, command.ErrNotCommand):
		return
	case errors.Is(err, command.ErrUnknown):
		s.notifier.Send(ctx, "Unknown command. I understand /check, /done.N and /new.title.DDMMYY.HHMM.priority")
		return
	case err != nil:
		s.notifier.Send(ctx, fmt.Sprintf("Could not read that command: %v", err))
		return
	}

	switch c := cmd.(type) {
	case command.List:
		s.handleList(ctx, chatID)
	case command.Done:
		s.handleDone(ctx, chatID, c)
	case command.New:
		s.handleNew(ctx, c)
	}
}

func (s *Server) handleList(ctx context.Context, chatID string) {
	rep := s.reporter.List(ctx, s.today())
	s.index.Store(chatID, rep.TaskIDs)
	s.notifier.SendLong(ctx, rep.Text)
}

func (s *Server) handleDone(ctx context.Context, chatID string, c command.Done) {
	taskID, err := s.index.Resolve(chatID, c.Index)
	if err != nil {
		s.notifier.Send(ctx, fmt.Sprintf("No task number %d in the last listing. Run /check first.", c.Index))
		return
	}

	props := map[string]any{
		s.cfg.Properties.Done:      store.CheckboxProp(true),
		s.cfg.Properties.Completed: store.DateProp(s.today()),
	}
	if err := s.pages.UpdatePage(ctx, taskID, props); err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("mark done failed")
		s.notifier.Send(ctx, fmt.Sprintf("Could not mark task %d done, try again later.", c.Index))
		return
	}
	s.notifier.Send(ctx, fmt.Sprintf("✅ Task %d marked done.", c.Index))
}

func (s *Server) handleNew(ctx context.Context, c command.New) {
	props := map[string]any{
		s.cfg.Properties.Title:    store.TitleProp(c.Title),
		s.cfg.Properties.Due:      store.DateProp(c.Due),
		s.cfg.Properties.Priority: store.SelectProp(c.Priority),
		s.cfg.Properties.Done:     store.CheckboxProp(false),
		s.cfg.Properties.Active:   store.CheckboxProp(true),
		s.cfg.Properties.Type:     store.SelectProp("daily"),
	}
	if _, err := s.pages.CreatePage(ctx, s.cfg.Notion.TasksDB, props); err != nil {
		log.Error().Err(err).Str("title", c.Title).Msg("create task failed")
		s.notifier.Send(ctx, "Could not create the task, try again later.")
		return
	}
	s.notifier.Send(ctx, fmt.Sprintf("🆕 Task created: <b>%s</b>, due %s.", c.Title, c.Due.Format("02/01/2006 15:04")))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleSchema dumps the tasks database property schema, for checking the
// configured property names against the live database.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.pages.Schema(r.Context(), s.cfg.Notion.TasksDB)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(schema)
}

// today is the current date in the configured timezone.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}
