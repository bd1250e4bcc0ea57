package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"foodbot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// ==========================
// Test doubles
// ==========================

type outbound struct {
	Channel string
	Text    string
	Card    *models.Card
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []outbound
}

func (m *recordingMessenger) Send(_ context.Context, channel, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, outbound{Channel: channel, Text: text})
	return nil
}

func (m *recordingMessenger) SendCard(_ context.Context, channel string, card models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, outbound{Channel: channel, Card: &card})
	return nil
}

func (m *recordingMessenger) UserName(context.Context, string) (string, error) {
	return "", errors.New("not supported")
}

// drain returns and forgets everything sent so far.
func (m *recordingMessenger) drain() []outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sent
	m.sent = nil
	return out
}

type searchCall struct {
	Category string
	Location string
}

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []searchCall
	results []models.Business
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, category, location string) ([]models.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{Category: category, Location: location})
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

// ==========================
// Test helpers
// ==========================

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, time.Minute), mr
}

func newTestScript(t *testing.T, searcher *fakeSearcher, opts ...Option) (*Script, *RedisSessionStore, *miniredis.Miniredis) {
	store, mr := newTestStore(t)
	return NewScript(store, searcher, zaptest.NewLogger(t), opts...), store, mr
}

func msgFrom(user, channel, text string) models.IncomingMessage {
	return models.IncomingMessage{User: user, Channel: channel, Text: text, Context: models.ContextDirectMessage}
}

func texts(sent []outbound) []string {
	var out []string
	for _, o := range sent {
		if o.Card == nil {
			out = append(out, o.Text)
		}
	}
	return out
}

func resume(t *testing.T, s *Script, bot *recordingMessenger, user, channel, text string) []outbound {
	handled, err := s.Resume(context.Background(), bot, msgFrom(user, channel, text))
	require.NoError(t, err)
	require.True(t, handled)
	return bot.drain()
}

var testBusinesses = []models.Business{
	{Name: "Tuk Tuk Thai", Rating: 4.5, URL: "https://yelp.com/biz/tuk", ImageURL: "https://img/tuk.jpg"},
	{Name: "Orient", Rating: 4, URL: "https://yelp.com/biz/orient", ImageURL: "https://img/orient.jpg"},
	{Name: "Jewel of India", Rating: 3.5, URL: "https://yelp.com/biz/jewel", ImageURL: "https://img/jewel.jpg"},
}

// ==========================
// Core flow
// ==========================

func TestScript_Start(t *testing.T) {
	started := time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)
	script, store, _ := newTestScript(t, &fakeSearcher{}, WithClock(func() time.Time { return started }))
	bot := &recordingMessenger{}

	require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "hungry")))
	assert.Equal(t, []outbound{{Channel: "C1", Text: PromptConfirm}}, bot.drain())

	sess, err := store.Get(context.Background(), "U1", "C1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.StepConfirm, sess.Step)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, started.Equal(sess.StartedAt), "startedAt = %v", sess.StartedAt)
}

func TestScript_AffirmativeDialogue(t *testing.T) {
	searcher := &fakeSearcher{results: testBusinesses}
	script, store, _ := newTestScript(t, searcher)
	bot := &recordingMessenger{}
	ctx := context.Background()

	require.NoError(t, script.Start(ctx, bot, msgFrom("U1", "C1", "hungry")))
	bot.drain()

	assert.Equal(t, []string{SayGreat, PromptFoodType}, texts(resume(t, script, bot, "U1", "C1", "Yes please")))
	assert.Empty(t, searcher.Calls())

	assert.Equal(t, []string{SayOk, PromptLocation}, texts(resume(t, script, bot, "U1", "C1", "thai")))
	assert.Empty(t, searcher.Calls())

	sent := resume(t, script, bot, "U1", "C1", "Hanover, NH")
	assert.Equal(t, []searchCall{{Category: "thai", Location: "Hanover, NH"}}, searcher.Calls())
	require.Len(t, sent, 1+len(testBusinesses))
	assert.Equal(t, SayFetching, sent[0].Text)

	sess, err := store.Get(ctx, "U1", "C1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestScript_ResultsPreserveOrderAndFields(t *testing.T) {
	searcher := &fakeSearcher{results: testBusinesses}
	script, store, _ := newTestScript(t, searcher)
	bot := &recordingMessenger{}

	require.NoError(t, store.Set(context.Background(), &models.Session{
		ID: "s1", User: "U1", Channel: "C1", Step: models.StepAskLocation, FoodType: "indian",
	}))

	sent := resume(t, script, bot, "U1", "C1", "Boston")
	require.Len(t, sent, 1+len(testBusinesses))
	for i, b := range testBusinesses {
		card := sent[i+1].Card
		require.NotNil(t, card)
		assert.Equal(t, "C1", sent[i+1].Channel)
		assert.Equal(t, b.Name, card.Title)
		assert.Equal(t, b.URL, card.TitleLink)
		assert.Equal(t, b.ImageURL, card.ImageURL)
		assert.Equal(t, fmt.Sprintf("rating: %v", b.Rating), card.Pretext)
		assert.Equal(t, SayNoResults, card.Fallback)
	}
}

func TestScript_NegativeReply(t *testing.T) {
	for _, reply := range []string{"no", "Nope", "nah thanks", "n"} {
		t.Run(reply, func(t *testing.T) {
			searcher := &fakeSearcher{results: testBusinesses}
			script, store, _ := newTestScript(t, searcher)
			bot := &recordingMessenger{}

			require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "hungry")))
			bot.drain()

			assert.Equal(t, []outbound{{Channel: "C1", Text: SayLater}}, resume(t, script, bot, "U1", "C1", reply))
			assert.Empty(t, searcher.Calls())

			sess, err := store.Get(context.Background(), "U1", "C1")
			require.NoError(t, err)
			assert.Nil(t, sess)
		})
	}
}

func TestScript_UnrecognizedReplyRepeatsPrompt(t *testing.T) {
	script, store, _ := newTestScript(t, &fakeSearcher{})
	bot := &recordingMessenger{}

	require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "hungry")))
	bot.drain()

	for i := 0; i < 10; i++ {
		assert.Equal(t, []outbound{{Channel: "C1", Text: PromptConfirm}}, resume(t, script, bot, "U1", "C1", "maybe?"))

		sess, err := store.Get(context.Background(), "U1", "C1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, models.StepConfirm, sess.Step)
	}

	assert.Equal(t, []string{SayGreat, PromptFoodType}, texts(resume(t, script, bot, "U1", "C1", "sure")))
}

func TestScript_MaxConfirmRetries(t *testing.T) {
	searcher := &fakeSearcher{}
	script, store, _ := newTestScript(t, searcher, WithMaxConfirmRetries(2))
	bot := &recordingMessenger{}

	require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "hungry")))
	bot.drain()

	assert.Equal(t, []string{PromptConfirm}, texts(resume(t, script, bot, "U1", "C1", "hmm")))
	assert.Equal(t, []string{SayLater}, texts(resume(t, script, bot, "U1", "C1", "hmm")))

	sess, err := store.Get(context.Background(), "U1", "C1")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, searcher.Calls())
}

func TestScript_SearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("dial tcp: connection refused")}
	script, store, _ := newTestScript(t, searcher)
	bot := &recordingMessenger{}

	require.NoError(t, store.Set(context.Background(), &models.Session{
		ID: "s1", User: "U1", Channel: "C1", Step: models.StepAskLocation, FoodType: "pizza",
	}))

	sent := resume(t, script, bot, "U1", "C1", "Boston")
	assert.Equal(t, []outbound{
		{Channel: "C1", Text: SayFetching},
		{Channel: "C1", Text: SayNoResults},
	}, sent)
}

func TestScript_EmptyResults(t *testing.T) {
	script, store, _ := newTestScript(t, &fakeSearcher{results: []models.Business{}})
	bot := &recordingMessenger{}

	require.NoError(t, store.Set(context.Background(), &models.Session{
		ID: "s1", User: "U1", Channel: "C1", Step: models.StepAskLocation, FoodType: "pizza",
	}))

	assert.Equal(t, []string{SayFetching, SayNoResults}, texts(resume(t, script, bot, "U1", "C1", "Antarctica")))
}

func TestScript_ResumeWithoutSession(t *testing.T) {
	script, _, _ := newTestScript(t, &fakeSearcher{})
	bot := &recordingMessenger{}

	handled, err := script.Resume(context.Background(), bot, msgFrom("U1", "C1", "yes"))
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, bot.drain())
}

func TestScript_AbandonedSessionExpires(t *testing.T) {
	script, _, mr := newTestScript(t, &fakeSearcher{})
	bot := &recordingMessenger{}

	require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "hungry")))
	bot.drain()

	mr.FastForward(2 * time.Minute)

	handled, err := script.Resume(context.Background(), bot, msgFrom("U1", "C1", "yes"))
	require.NoError(t, err)
	assert.False(t, handled)
}

// ==========================
// Session isolation
// ==========================

func TestScript_InterleavedDialoguesAreIsolated(t *testing.T) {
	searcher := &fakeSearcher{results: testBusinesses[:1]}
	script, _, _ := newTestScript(t, searcher)
	bot := &recordingMessenger{}
	ctx := context.Background()

	require.NoError(t, script.Start(ctx, bot, msgFrom("U1", "C1", "hungry")))
	require.NoError(t, script.Start(ctx, bot, msgFrom("U2", "C1", "hungry")))
	require.NoError(t, script.Start(ctx, bot, msgFrom("U1", "C2", "hungry")))
	bot.drain()

	resume(t, script, bot, "U1", "C1", "yes")
	resume(t, script, bot, "U2", "C1", "yes")
	resume(t, script, bot, "U1", "C2", "yes")
	resume(t, script, bot, "U2", "C1", "pizza")
	resume(t, script, bot, "U1", "C1", "thai")
	resume(t, script, bot, "U1", "C2", "ramen")
	resume(t, script, bot, "U1", "C1", "Hanover")
	resume(t, script, bot, "U1", "C2", "Tokyo")
	resume(t, script, bot, "U2", "C1", "Boston")

	assert.Equal(t, []searchCall{
		{Category: "thai", Location: "Hanover"},
		{Category: "ramen", Location: "Tokyo"},
		{Category: "pizza", Location: "Boston"},
	}, searcher.Calls())
}

func TestScript_ConcurrentDialoguesAreIsolated(t *testing.T) {
	searcher := &fakeSearcher{results: testBusinesses[:1]}
	script, _, _ := newTestScript(t, searcher)
	ctx := context.Background()

	users := map[string]searchCall{
		"U1": {Category: "thai", Location: "Hanover"},
		"U2": {Category: "pizza", Location: "Boston"},
		"U3": {Category: "ramen", Location: "Tokyo"},
	}

	var wg sync.WaitGroup
	for user, want := range users {
		wg.Add(1)
		go func(user string, want searchCall) {
			defer wg.Done()
			bot := &recordingMessenger{}
			msg := msgFrom(user, "C1", "hungry")
			assert.NoError(t, script.Start(ctx, bot, msg))
			for _, reply := range []string{"yes", want.Category, want.Location} {
				msg.Text = reply
				handled, err := script.Resume(ctx, bot, msg)
				assert.NoError(t, err)
				assert.True(t, handled)
			}
		}(user, want)
	}
	wg.Wait()

	assert.ElementsMatch(t, []searchCall{users["U1"], users["U2"], users["U3"]}, searcher.Calls())
}

// ==========================
// Rendering and utterances
// ==========================

func TestScript_TriggerWordDuringDialogueIsAReply(t *testing.T) {
	script, store, _ := newTestScript(t, &fakeSearcher{})
	bot := &recordingMessenger{}

	require.NoError(t, script.Start(context.Background(), bot, msgFrom("U1", "C1", "I'm hungry")))
	resume(t, script, bot, "U1", "C1", "yes")

	assert.Equal(t, []string{SayOk, PromptLocation}, texts(resume(t, script, bot, "U1", "C1", "hungry")))

	sess, err := store.Get(context.Background(), "U1", "C1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.StepAskLocation, sess.Step)
	assert.Equal(t, "hungry", sess.FoodType)
}

// failingClearStore wraps a real store but cannot delete sessions.
type failingClearStore struct {
	SessionStore
}

func (failingClearStore) Clear(context.Context, string, string) error {
	return errors.New("redis down")
}

func TestScript_UnknownStep(t *testing.T) {
	t.Run("session is cleared", func(t *testing.T) {
		script, store, _ := newTestScript(t, &fakeSearcher{})
		require.NoError(t, store.Set(context.Background(), &models.Session{ID: "s1", User: "U1", Channel: "C1", Step: "searching"}))

		handled, err := script.Resume(context.Background(), &recordingMessenger{}, msgFrom("U1", "C1", "hello"))
		assert.True(t, handled)
		assert.ErrorContains(t, err, "unknown step")

		sess, err := store.Get(context.Background(), "U1", "C1")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("clear failure is logged", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Set(context.Background(), &models.Session{ID: "s1", User: "U1", Channel: "C1", Step: "searching"}))

		core, logs := observer.New(zap.WarnLevel)
		script := NewScript(failingClearStore{store}, &fakeSearcher{}, zap.New(core))

		handled, err := script.Resume(context.Background(), &recordingMessenger{}, msgFrom("U1", "C1", "hello"))
		assert.True(t, handled)
		assert.ErrorContains(t, err, "unknown step")

		entries := logs.FilterMessage("Failed to clear session with unknown step").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "s1", entries[0].ContextMap()["session"])
		assert.Equal(t, "redis down", entries[0].ContextMap()["error"])
	})
}

func TestCard(t *testing.T) {
	card := Card(models.Business{Name: "Orient", Rating: 4, URL: "https://u", ImageURL: "https://i"})
	assert.Equal(t, models.Card{
		Fallback:  "No results.",
		Pretext:   "rating: 4",
		Title:     "Orient",
		TitleLink: "https://u",
		ImageURL:  "https://i",
	}, card)
	assert.Equal(t, "rating: 4.5", Card(models.Business{Rating: 4.5}).Pretext)
}

func TestUtterances(t *testing.T) {
	for _, s := range []string{"yes", "Yeah", "yep!", "sure thing", "ok", "OK cool", "y", "ya"} {
		assert.True(t, Yes.MatchString(s), s)
		assert.False(t, No.MatchString(s), s)
	}
	for _, s := range []string{"no", "Nope", "nah", "n"} {
		assert.True(t, No.MatchString(s), s)
		assert.False(t, Yes.MatchString(s), s)
	}
	for _, s := range []string{"maybe?", "what", "", "hmm"} {
		assert.False(t, Yes.MatchString(s), s)
		assert.False(t, No.MatchString(s), s)
	}
}
