package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"regbot/internal/entities"
	"regbot/internal/interfaces"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

const (
	eventNameReceived   = "name_received"
	eventMobileReceived = "mobile_received"
	eventBatchSelected  = "batch_selected"
	eventConfirmed      = "confirmed"
	eventCancel         = "cancel"

	stateRegistered = "registered"
	stateCancelled  = "cancelled"
)

const (
	promptName          = "Enter your Full name:"
	promptNameAgain     = "Please send text for your name."
	promptMobile        = "Enter your mobile number:"
	promptMobileAgain   = "Please send text for your mobile number."
	promptMobileInvalid = "Invalid mobile number. Enter exactly 10 digits (numbers only):"
	promptBatch         = "Select your batch:"
	promptUseButtons    = "Please use the buttons to select a batch."
	promptBatchInvalid  = "Invalid selection. Please choose Batch 1 or Batch 2."
	msgCancelled        = "Current process is cancelled."
	msgNothingToCancel  = "Nothing to cancel."
	msgSaveFailed       = "❌ Error saving your data. Please try again later."
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// ValidMobile reports whether s is exactly ten ASCII digits.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// newDialogueFSM rebuilds the wizard machine positioned at step.
// The machine only validates transitions; side effects live in the handlers.
func newDialogueFSM(step entities.DialogueStep) *fsm.FSM {
	active := []string{
		string(entities.StepAwaitingName),
		string(entities.StepAwaitingMobile),
		string(entities.StepAwaitingBatch),
		string(entities.StepAwaitingConfirmation),
	}
	return fsm.NewFSM(
		string(step),
		fsm.Events{
			{Name: eventNameReceived, Src: []string{string(entities.StepAwaitingName)}, Dst: string(entities.StepAwaitingMobile)},
			{Name: eventMobileReceived, Src: []string{string(entities.StepAwaitingMobile)}, Dst: string(entities.StepAwaitingBatch)},
			{Name: eventBatchSelected, Src: []string{string(entities.StepAwaitingBatch)}, Dst: string(entities.StepAwaitingConfirmation)},
			{Name: eventConfirmed, Src: []string{string(entities.StepAwaitingConfirmation)}, Dst: stateRegistered},
			{Name: eventCancel, Src: active, Dst: stateCancelled},
		},
		fsm.Callbacks{},
	)
}

func advance(ctx context.Context, sess *entities.Session, event string) error {
	machine := newDialogueFSM(sess.Step)
	if err := machine.Event(ctx, event); err != nil {
		return fmt.Errorf("dialogue %s from %q: %w", event, sess.Step, err)
	}
	sess.Step = entities.DialogueStep(machine.Current())
	return nil
}

// RegistrationDialogue is the four step name → mobile → batch → confirmation wizard.
type RegistrationDialogue struct {
	users     interfaces.UserStore
	sessions  interfaces.SessionStore
	messenger interfaces.Messenger
	log       zerolog.Logger
}

func NewRegistrationDialogue(users interfaces.UserStore, sessions interfaces.SessionStore, messenger interfaces.Messenger, log zerolog.Logger) *RegistrationDialogue {
	return &RegistrationDialogue{
		users:     users,
		sessions:  sessions,
		messenger: messenger,
		log:       log.With().Str("component", "registration").Logger(),
	}
}

// Start enters awaiting_name. The caller has already checked the user is not registered.
func (d *RegistrationDialogue) Start(ctx context.Context, chatID int64, sess *entities.Session) error {
	sess.Step = entities.StepAwaitingName
	sess.Data = entities.RegistrationData{}
	sess.AwaitingFeedback = false
	if err := d.persist(ctx, sess); err != nil {
		return err
	}
	d.log.Debug().Int64("user_id", sess.UserID).Msg("dialogue started")
	return d.reply(ctx, chatID, promptName)
}

// Handle feeds one message or button press to the active step.
func (d *RegistrationDialogue) Handle(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if msg.IsCallback {
		if err := d.messenger.AnswerCallback(ctx, msg.CallbackID); err != nil {
			d.log.Warn().Err(err).Int64("user_id", msg.From).Msg("answer callback failed")
		}
	}

	switch sess.Step {
	case entities.StepAwaitingName:
		return d.handleName(ctx, msg, sess)
	case entities.StepAwaitingMobile:
		return d.handleMobile(ctx, msg, sess)
	case entities.StepAwaitingBatch:
		return d.handleBatch(ctx, msg, sess)
	case entities.StepAwaitingConfirmation:
		return d.confirm(ctx, msg.ChatID, sess)
	}
	return fmt.Errorf("no active dialogue for user %d", sess.UserID)
}

// Cancel destroys an active dialogue, or says there is nothing to cancel.
func (d *RegistrationDialogue) Cancel(ctx context.Context, chatID int64, sess *entities.Session) error {
	if !sess.InDialogue() {
		return d.reply(ctx, chatID, msgNothingToCancel)
	}
	if err := advance(ctx, sess, eventCancel); err != nil {
		return err
	}
	d.finish(ctx, sess)
	d.log.Debug().Int64("user_id", sess.UserID).Msg("dialogue cancelled")
	return d.reply(ctx, chatID, msgCancelled)
}

// Reprompt repeats the question for the current step.
func (d *RegistrationDialogue) Reprompt(ctx context.Context, chatID int64, sess *entities.Session) error {
	switch sess.Step {
	case entities.StepAwaitingName:
		return d.reply(ctx, chatID, promptName)
	case entities.StepAwaitingMobile:
		return d.reply(ctx, chatID, promptMobile)
	case entities.StepAwaitingBatch:
		return d.messenger.SendMessageWithMenu(ctx, chatID, promptBatch, CreateBatchKeyboard())
	}
	return nil
}

func (d *RegistrationDialogue) handleName(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	name := strings.TrimSpace(msg.Text)
	if msg.IsCallback || !msg.HasText || name == "" {
		return d.reply(ctx, msg.ChatID, promptNameAgain)
	}

	if err := advance(ctx, sess, eventNameReceived); err != nil {
		return err
	}
	sess.Data.Name = name
	if err := d.persist(ctx, sess); err != nil {
		return err
	}
	return d.reply(ctx, msg.ChatID, promptMobile)
}

func (d *RegistrationDialogue) handleMobile(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if msg.IsCallback || !msg.HasText {
		return d.reply(ctx, msg.ChatID, promptMobileAgain)
	}
	mobile := strings.TrimSpace(msg.Text)
	if !ValidMobile(mobile) {
		return d.reply(ctx, msg.ChatID, promptMobileInvalid)
	}

	if err := advance(ctx, sess, eventMobileReceived); err != nil {
		return err
	}
	sess.Data.Mobile = mobile
	if err := d.persist(ctx, sess); err != nil {
		return err
	}
	return d.messenger.SendMessageWithMenu(ctx, msg.ChatID, promptBatch, CreateBatchKeyboard())
}

func (d *RegistrationDialogue) handleBatch(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if !msg.IsCallback {
		return d.reply(ctx, msg.ChatID, promptUseButtons)
	}

	var batch int
	switch msg.Data {
	case CallbackCancel:
		return d.Cancel(ctx, msg.ChatID, sess)
	case CallbackBatch1:
		batch = entities.BatchOne
	case CallbackBatch2:
		batch = entities.BatchTwo
	default:
		return d.reply(ctx, msg.ChatID, promptBatchInvalid)
	}

	if err := advance(ctx, sess, eventBatchSelected); err != nil {
		return err
	}
	sess.Data.Batch = batch
	return d.confirm(ctx, msg.ChatID, sess)
}

// confirm writes the registration. Success or failure, the dialogue ends here.
func (d *RegistrationDialogue) confirm(ctx context.Context, chatID int64, sess *entities.Session) error {
	reg := entities.Registration{
		ID:     sess.UserID,
		Name:   sess.Data.Name,
		Mobile: sess.Data.Mobile,
		Batch:  sess.Data.Batch,
	}

	user, saveErr := d.users.Upsert(ctx, reg)
	if saveErr == nil {
		if err := advance(ctx, sess, eventConfirmed); err != nil {
			d.log.Warn().Err(err).Int64("user_id", reg.ID).Msg("confirm transition rejected")
		}
	}
	d.finish(ctx, sess)

	if saveErr != nil {
		d.log.Error().Err(saveErr).Int64("user_id", reg.ID).Msg("DB error saving user")
		return d.reply(ctx, chatID, msgSaveFailed)
	}

	d.log.Info().Int64("user_id", user.ID).Int("batch", user.Batch).Msg("user registered")
	return d.reply(ctx, chatID, fmt.Sprintf(
		"✅ Registration complete!\n\nName: %s\nMobile: %s\nBatch: %d",
		user.Name, user.Mobile, user.Batch,
	))
}

// finish ends the dialogue. A store failure is logged, never surfaced: the
// caller still owes the user a reply.
func (d *RegistrationDialogue) finish(ctx context.Context, sess *entities.Session) {
	sess.Step = entities.StepNone
	sess.Data = entities.RegistrationData{}
	err := d.persist(ctx, sess)
	if err == nil {
		return
	}
	d.log.Error().Err(err).Int64("user_id", sess.UserID).Msg("clear dialogue session failed")
	if !sess.Empty() {
		return
	}
	// fall back to overwriting the step with an idle session
	if err := d.sessions.Save(ctx, sess); err != nil {
		d.log.Error().Err(err).Int64("user_id", sess.UserID).Msg("reset dialogue session failed")
	}
}

func (d *RegistrationDialogue) persist(ctx context.Context, sess *entities.Session) error {
	if sess.Empty() {
		return d.sessions.Delete(ctx, sess.UserID)
	}
	return d.sessions.Save(ctx, sess)
}

func (d *RegistrationDialogue) reply(ctx context.Context, chatID int64, text string) error {
	return d.messenger.SendMessage(ctx, chatID, text)
}
