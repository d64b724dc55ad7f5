package usecases

import (
	"context"
	"testing"

	"regbot/internal/entities"
	"regbot/internal/infrastructure"

	"github.com/rs/zerolog"
)

func TestValidMobile(t *testing.T) {
	cases := map[string]bool{
		"9876543210":  true,
		"0000000000":  true,
		"987654321":   false,
		"98765432100": false,
		"98765 43210": false,
		"+919876543":  false,
		"abcdefghij":  false,
		"":            false,
		"٩٨٧٦٥٤٣٢١٠":  false,
	}
	for in, want := range cases {
		if got := ValidMobile(in); got != want {
			t.Errorf("ValidMobile(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRegistrationHappyPath(t *testing.T) {
	h := newHarness(t)

	h.command(testChat, "register", "")
	h.expectReplies(t, promptName)
	if got := h.step(t, testChat); got != entities.StepAwaitingName {
		t.Fatalf("step = %q, want awaiting_name", got)
	}

	h.text(testChat, "", "  Jane Doe  ")
	h.expectReplies(t, promptMobile)
	if got := h.step(t, testChat); got != entities.StepAwaitingMobile {
		t.Fatalf("step = %q, want awaiting_mobile", got)
	}

	h.text(testChat, "", "12345")
	h.expectReplies(t, promptMobileInvalid)
	if got := h.step(t, testChat); got != entities.StepAwaitingMobile {
		t.Fatalf("invalid mobile moved step to %q", got)
	}

	h.text(testChat, "", "9876543210")
	replies := h.messenger.take()
	if len(replies) != 1 || replies[0].text != promptBatch || !replies[0].menu {
		t.Fatalf("expected batch keyboard, got %+v", replies)
	}
	if got := h.step(t, testChat); got != entities.StepAwaitingBatch {
		t.Fatalf("step = %q, want awaiting_batch", got)
	}

	h.press(testChat, CallbackBatch2)
	h.expectReplies(t, "✅ Registration complete!\n\nName: Jane Doe\nMobile: 9876543210\nBatch: 2")
	if h.messenger.answered != 1 {
		t.Fatalf("answered %d callbacks, want 1", h.messenger.answered)
	}

	u, _ := h.users.FindByID(context.Background(), testChat)
	if u == nil || u.Name != "Jane Doe" || u.Mobile != "9876543210" || u.Batch != 2 {
		t.Fatalf("stored user = %+v", u)
	}
	if h.sessions.Len() != 0 {
		t.Fatalf("session not cleared, %d left", h.sessions.Len())
	}
}

func TestDialogueTransitionsInOrder(t *testing.T) {
	ctx := context.Background()
	sess := &entities.Session{UserID: testChat, Step: entities.StepAwaitingName}

	steps := []struct {
		event string
		want  entities.DialogueStep
	}{
		{eventNameReceived, entities.StepAwaitingMobile},
		{eventMobileReceived, entities.StepAwaitingBatch},
		{eventBatchSelected, entities.StepAwaitingConfirmation},
		{eventConfirmed, stateRegistered},
	}
	for _, s := range steps {
		if err := advance(ctx, sess, s.event); err != nil {
			t.Fatalf("%s: %v", s.event, err)
		}
		if sess.Step != s.want {
			t.Fatalf("after %s step = %q, want %q", s.event, sess.Step, s.want)
		}
	}

	skip := &entities.Session{UserID: testChat, Step: entities.StepAwaitingName}
	if err := advance(ctx, skip, eventBatchSelected); err == nil {
		t.Fatal("batch accepted before name and mobile")
	}
	if skip.Step != entities.StepAwaitingName {
		t.Fatalf("rejected event moved step to %q", skip.Step)
	}
}

func TestRegistrationRefusedWhenRegistered(t *testing.T) {
	h := newHarness(t)
	h.users.add(entities.User{ID: testChat, Name: "Old", Mobile: "1111111111", Batch: 1})

	h.command(testChat, "register", "")
	h.expectReplies(t, msgAlreadyRegistered)

	h.press(testChat, CallbackStartRegister)
	h.expectReplies(t, msgAlreadyRegistered)

	if got := h.step(t, testChat); got != entities.StepNone {
		t.Fatalf("dialogue started for registered user: %q", got)
	}
}

func TestCancelFromEveryStep(t *testing.T) {
	advanceTo := map[entities.DialogueStep]func(h *harness){
		entities.StepAwaitingName: func(h *harness) {},
		entities.StepAwaitingMobile: func(h *harness) {
			h.text(testChat, "", "Jane")
		},
		entities.StepAwaitingBatch: func(h *harness) {
			h.text(testChat, "", "Jane")
			h.text(testChat, "", "9876543210")
		},
	}

	for step, walk := range advanceTo {
		t.Run(string(step), func(t *testing.T) {
			h := newHarness(t)
			h.command(testChat, "register", "")
			walk(h)
			if got := h.step(t, testChat); got != step {
				t.Fatalf("step = %q, want %q", got, step)
			}
			h.messenger.take()

			h.command(testChat, "cancel", "")
			h.expectReplies(t, msgCancelled)
			if h.sessions.Len() != 0 {
				t.Fatal("session survived cancel")
			}

			h.command(testChat, "register", "")
			h.expectReplies(t, promptName)
		})
	}
}

func TestCancelButtonDuringBatch(t *testing.T) {
	h := newHarness(t)
	h.command(testChat, "register", "")
	h.text(testChat, "", "Jane")
	h.text(testChat, "", "9876543210")
	h.messenger.take()

	h.press(testChat, CallbackCancel)
	h.expectReplies(t, msgCancelled)
	if got := h.step(t, testChat); got != entities.StepNone {
		t.Fatalf("step = %q after cancel", got)
	}
}

func TestCancelWithoutDialogue(t *testing.T) {
	h := newHarness(t)
	h.command(testChat, "cancel", "")
	h.expectReplies(t, msgNothingToCancel)

	h.press(testChat, CallbackCancel)
	h.expectReplies(t, msgNothingToCancel)
}

func TestDialogueRejectsWrongInput(t *testing.T) {
	h := newHarness(t)
	h.command(testChat, "register", "")
	h.messenger.take()

	h.text(testChat, "", "   ")
	h.expectReplies(t, promptNameAgain)

	h.press(testChat, CallbackInfo)
	h.expectReplies(t, promptNameAgain)

	h.text(testChat, "", "Jane")
	h.messenger.take()

	h.bot.HandleUpdate(context.Background(), entities.Message{ChatID: testChat, From: testChat})
	h.expectReplies(t, promptMobileAgain)

	h.text(testChat, "", "9876543210")
	h.messenger.take()

	h.text(testChat, "", "1")
	h.expectReplies(t, promptUseButtons)

	h.press(testChat, "batch:3")
	h.expectReplies(t, promptBatchInvalid)

	if got := h.step(t, testChat); got != entities.StepAwaitingBatch {
		t.Fatalf("step = %q, want awaiting_batch", got)
	}
}

func TestCommandDuringDialogueReprompts(t *testing.T) {
	h := newHarness(t)
	h.command(testChat, "register", "")
	h.text(testChat, "", "Jane")
	h.messenger.take()

	h.command(testChat, "info", "")
	h.expectReplies(t, msgFinishFirst, promptMobile)

	h.command(testChat, "start", "")
	h.expectReplies(t, msgFinishFirst, promptMobile)

	if got := h.step(t, testChat); got != entities.StepAwaitingMobile {
		t.Fatalf("step = %q, want awaiting_mobile", got)
	}
}

func TestRegistrationSaveFailureEndsDialogue(t *testing.T) {
	h := newHarness(t)
	h.command(testChat, "register", "")
	h.text(testChat, "", "Jane")
	h.text(testChat, "", "9876543210")
	h.messenger.take()

	h.users.upsertErr = errStore
	h.press(testChat, CallbackBatch1)
	h.expectReplies(t, msgSaveFailed)

	if u, _ := h.users.FindByID(context.Background(), testChat); u != nil {
		t.Fatalf("user stored despite failure: %+v", u)
	}
	if h.sessions.Len() != 0 {
		t.Fatal("session survived failed save")
	}
}

func TestDialogueEndsWhenSessionDeleteFails(t *testing.T) {
	h := newHarness(t)
	sessions := stickySessions{infrastructure.NewMemorySessionStore()}
	h.bot = NewBotService(h.users, sessions, h.messenger, h.settings, zerolog.Nop())
	stepOf := func() entities.DialogueStep {
		sess, err := sessions.Get(context.Background(), testChat)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if sess == nil {
			return entities.StepNone
		}
		return sess.Step
	}

	h.command(testChat, "register", "")
	h.command(testChat, "cancel", "")
	h.expectReplies(t, promptName, msgCancelled)
	if got := stepOf(); got != entities.StepNone {
		t.Fatalf("step after cancel = %q", got)
	}

	h.command(testChat, "register", "")
	h.text(testChat, "", "Jane")
	h.text(testChat, "", "9876543210")
	h.messenger.take()

	h.press(testChat, CallbackBatch1)
	h.expectReplies(t, "✅ Registration complete!\n\nName: Jane\nMobile: 9876543210\nBatch: 1")
	if u, _ := h.users.FindByID(context.Background(), testChat); u == nil {
		t.Fatal("user not stored")
	}
	if got := stepOf(); got != entities.StepNone {
		t.Fatalf("step after confirm = %q", got)
	}
}
