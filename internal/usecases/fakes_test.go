package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"regbot/internal/entities"
	"regbot/internal/infrastructure"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var errStore = errors.New("store unavailable")

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[int64]entities.User
	order     []int64
	upsertErr error
	now       time.Time
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[int64]entities.User),
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeUserStore) add(u entities.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		f.order = append(f.order, u.ID)
	}
	f.users[u.ID] = u
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserStore) Upsert(_ context.Context, reg entities.Registration) (*entities.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)
	u, ok := f.users[reg.ID]
	if !ok {
		u = entities.User{ID: reg.ID, CreatedAt: f.now}
		f.order = append(f.order, reg.ID)
	}
	u.Name, u.Mobile, u.Batch, u.UpdatedAt = reg.Name, reg.Mobile, reg.Batch, f.now
	f.users[reg.ID] = u
	return &u, nil
}

func (f *fakeUserStore) UpdateFeedback(_ context.Context, id int64, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil
	}
	u.Feedback = feedback
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) List(_ context.Context, filter entities.UserFilter) ([]entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entities.User{}
	for _, id := range f.order {
		u := f.users[id]
		if filter.Batch != 0 && u.Batch != filter.Batch {
			continue
		}
		out = append(out, u)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

type sent struct {
	chatID int64
	text   string
	menu   bool
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sent
	answered int
	failFor  map[int64]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: make(map[int64]bool)}
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[chatID] {
		return errors.New("Forbidden: bot was blocked by the user")
	}
	m.sent = append(m.sent, sent{chatID: chatID, text: text})
	return nil
}

func (m *fakeMessenger) SendMessageWithMenu(_ context.Context, chatID int64, text string, _ tgbotapi.InlineKeyboardMarkup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{chatID: chatID, text: text, menu: true})
	return nil
}

func (m *fakeMessenger) AnswerCallback(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered++
	return nil
}

// take returns the messages sent since the last call.
func (m *fakeMessenger) take() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sent
	m.sent = nil
	return out
}

type fakeSettingsStore struct {
	saved   *entities.Settings
	saves   int
	saveErr error
}

func (f *fakeSettingsStore) Load(context.Context, string) (*entities.Settings, error) {
	if f.saved == nil {
		return nil, nil
	}
	return f.saved.Clone(), nil
}

func (f *fakeSettingsStore) Save(_ context.Context, s *entities.Settings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.saved = s.Clone()
	return nil
}

const (
	testChat  int64 = 42
	testAdmin int64 = 100
)

type harness struct {
	bot       *BotService
	users     *fakeUserStore
	sessions  *infrastructure.MemorySessionStore
	messenger *fakeMessenger
	settings  *SettingsService
	store     *fakeSettingsStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:     newFakeUserStore(),
		sessions:  infrastructure.NewMemorySessionStore(),
		messenger: newFakeMessenger(),
		store:     &fakeSettingsStore{},
	}
	settings, err := LoadSettings(context.Background(), h.store, []int64{testAdmin}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	h.settings = settings
	h.bot = NewBotService(h.users, h.sessions, h.messenger, settings, zerolog.Nop())
	return h
}

func (h *harness) command(from int64, cmd, args string) {
	h.bot.HandleUpdate(context.Background(), entities.Message{
		ChatID: from, From: from, Command: cmd, Args: args,
		Text: "/" + cmd, HasText: true,
	})
}

func (h *harness) text(from int64, firstName, text string) {
	h.bot.HandleUpdate(context.Background(), entities.Message{
		ChatID: from, From: from, FirstName: firstName, Text: text, HasText: true,
	})
}

func (h *harness) press(from int64, data string) {
	h.bot.HandleUpdate(context.Background(), entities.Message{
		ChatID: from, From: from, IsCallback: true, CallbackID: "cb", Data: data,
	})
}

func (h *harness) step(t *testing.T, userID int64) entities.DialogueStep {
	t.Helper()
	sess, err := h.sessions.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess == nil {
		return entities.StepNone
	}
	return sess.Step
}

// expectReplies asserts the exact texts sent since the last check.
func (h *harness) expectReplies(t *testing.T, want ...string) {
	t.Helper()
	got := h.messenger.take()
	if len(got) != len(want) {
		texts := make([]string, len(got))
		for i, s := range got {
			texts[i] = s.text
		}
		t.Fatalf("got %d replies %q, want %q", len(got), texts, want)
	}
	for i := range want {
		if got[i].text != want[i] {
			t.Fatalf("reply %d = %q, want %q", i, got[i].text, want[i])
		}
	}
}

// stickySessions is a memory store whose Delete always fails.
type stickySessions struct {
	*infrastructure.MemorySessionStore
}

func (stickySessions) Delete(context.Context, int64) error {
	return errStore
}
