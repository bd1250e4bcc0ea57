// File: services/conversation/script.go
package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"foodbot/models"
	"foodbot/services/messaging"
	"foodbot/services/search"
	"foodbot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PromptConfirm  = "Would you like food recomendations near you?"
	PromptFoodType = "What type of food are you interested in?"
	PromptLocation = "Where are you?"

	SayGreat     = "Great!"
	SayLater     = "Perhaps later."
	SayOk        = "Ok."
	SayFetching  = "Ok! One sec. Pulling up results."
	SayNoResults = "No results."
)

// Script runs the food recommendation dialogue:
//
//	START -> CONFIRM -> ASK_TYPE -> ASK_LOCATION -> SEARCHING -> DONE
//
// CONFIRM loops on unrecognized replies and ends in DECLINED on a negative one.
// Only the non-terminal steps are ever persisted.
type Script struct {
	store      SessionStore
	searcher   search.Searcher
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

type Option func(*Script)

// WithMaxConfirmRetries bounds how many unrecognized confirmation replies are
// tolerated before the dialogue is declined. Zero means unbounded.
func WithMaxConfirmRetries(n int) Option {
	return func(s *Script) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Script) { s.now = now }
}

func NewScript(store SessionStore, searcher search.Searcher, logger *zap.Logger, opts ...Option) *Script {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Script{
		store:    store,
		searcher: searcher,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a dialogue for the sender and asks the confirmation question.
// While a dialogue is open the router hands every message from that user and
// channel to Resume, so a second trigger is read as a reply, not a restart.
func (s *Script) Start(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error {
	sess := &models.Session{
		ID:        uuid.NewString(),
		User:      msg.User,
		Channel:   msg.Channel,
		Step:      models.StepConfirm,
		StartedAt: s.now(),
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.logger.Debug("Dialogue started",
		zap.String("session", sess.ID),
		zap.String("user", sess.User),
		zap.String("channel", sess.Channel),
	)
	return bot.Send(ctx, sess.Channel, PromptConfirm)
}

// Resume feeds msg to the sender's active dialogue. It reports false when the
// sender has none, leaving the message to the caller.
func (s *Script) Resume(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) (bool, error) {
	sess, err := s.store.Get(ctx, msg.User, msg.Channel)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return false, nil
	}

	switch sess.Step {
	case models.StepConfirm:
		return true, s.ask(ctx, bot, sess, msg.Text, []Branch{
			{Pattern: Yes, Handle: s.accept},
			{Pattern: No, Handle: s.decline},
		}, s.repeatConfirm)
	case models.StepAskType:
		return true, s.captureFoodType(ctx, bot, sess, msg.Text)
	case models.StepAskLocation:
		return true, s.captureLocation(ctx, bot, sess, msg.Text)
	default:
		if err := s.store.Clear(ctx, sess.User, sess.Channel); err != nil {
			s.logger.Warn("Failed to clear session with unknown step",
				zap.String("session", sess.ID),
				zap.String("step", string(sess.Step)),
				zap.Error(err),
			)
		}
		return true, fmt.Errorf("session %s: unknown step %q", sess.ID, sess.Step)
	}
}

// ask hands reply to the first branch whose pattern matches, else to fallback.
func (s *Script) ask(ctx context.Context, bot messaging.Messenger, sess *models.Session, reply string, branches []Branch, fallback StepFunc) error {
	for _, b := range branches {
		if b.Pattern.MatchString(reply) {
			return b.Handle(ctx, bot, sess, reply)
		}
	}
	return fallback(ctx, bot, sess, reply)
}

func (s *Script) accept(ctx context.Context, bot messaging.Messenger, sess *models.Session, _ string) error {
	sess.Step = models.StepAskType
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := bot.Send(ctx, sess.Channel, SayGreat); err != nil {
		return err
	}
	return bot.Send(ctx, sess.Channel, PromptFoodType)
}

func (s *Script) decline(ctx context.Context, bot messaging.Messenger, sess *models.Session, _ string) error {
	if err := s.store.Clear(ctx, sess.User, sess.Channel); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	utils.DialoguesFinished.WithLabelValues(utils.OutcomeDeclined).Inc()
	return bot.Send(ctx, sess.Channel, SayLater)
}

func (s *Script) repeatConfirm(ctx context.Context, bot messaging.Messenger, sess *models.Session, reply string) error {
	sess.Retries++
	if s.maxRetries > 0 && sess.Retries >= s.maxRetries {
		s.logger.Debug("Confirmation retries exhausted", zap.String("session", sess.ID), zap.Int("retries", sess.Retries))
		return s.decline(ctx, bot, sess, reply)
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return bot.Send(ctx, sess.Channel, PromptConfirm)
}

func (s *Script) captureFoodType(ctx context.Context, bot messaging.Messenger, sess *models.Session, reply string) error {
	sess.FoodType = reply
	sess.Step = models.StepAskLocation
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := bot.Send(ctx, sess.Channel, SayOk); err != nil {
		return err
	}
	return bot.Send(ctx, sess.Channel, PromptLocation)
}

// captureLocation ends the dialogue; the search runs on this session's own values.
func (s *Script) captureLocation(ctx context.Context, bot messaging.Messenger, sess *models.Session, reply string) error {
	sess.Location = reply
	if err := s.store.Clear(ctx, sess.User, sess.Channel); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := bot.Send(ctx, sess.Channel, SayFetching); err != nil {
		return err
	}
	return s.results(ctx, bot, sess)
}

func (s *Script) results(ctx context.Context, bot messaging.Messenger, sess *models.Session) error {
	businesses, err := s.searcher.Search(ctx, sess.FoodType, sess.Location)
	if err != nil {
		s.logger.Warn("Search failed",
			zap.String("session", sess.ID),
			zap.String("food_type", sess.FoodType),
			zap.String("location", sess.Location),
			zap.Error(err),
		)
		utils.DialoguesFinished.WithLabelValues(utils.OutcomeFailed).Inc()
		return bot.Send(ctx, sess.Channel, SayNoResults)
	}

	utils.DialoguesFinished.WithLabelValues(utils.OutcomeCompleted).Inc()
	if len(businesses) == 0 {
		return bot.Send(ctx, sess.Channel, SayNoResults)
	}
	for _, b := range businesses {
		if err := bot.SendCard(ctx, sess.Channel, Card(b)); err != nil {
			return err
		}
	}
	return nil
}

// Card renders one business as a message attachment.
func Card(b models.Business) models.Card {
	return models.Card{
		Fallback:  SayNoResults,
		Pretext:   "rating: " + strconv.FormatFloat(b.Rating, 'f', -1, 64),
		Title:     b.Name,
		TitleLink: b.URL,
		ImageURL:  b.ImageURL,
	}
}
