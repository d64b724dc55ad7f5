package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"regbot/internal/entities"
	"regbot/internal/interfaces"

	"github.com/rs/zerolog"
)

const (
	msgWelcome            = "Welcome! Use /register to start registration or press the button below."
	msgAlreadyRegistered  = "You have Already Registered!"
	msgNotRegistered      = "You are not registered. Use /register."
	msgFinishFirst        = "Please finish the registration first or send /cancel."
	msgFeedbackClosed     = "❌ Feedback is currently closed."
	msgFeedbackNeedsUser  = "❌ You must be registered to give feedback."
	msgFeedbackPrompt     = "Please send your feedback now:"
	msgFeedbackThanks     = "✅ Thank you for your feedback!"
	msgFeedbackSaveFailed = "❌ Could not save your feedback. Please try again later."
	msgSetFeedbackUsage   = "Usage: /set_feedback on|off"
	msgAddAdminUsage      = "Usage: /add_admin <telegramId>"
	msgAddAdminDenied     = "❌ Unauthorized — only admins can add other admins."
	msgSettingsSaveFailed = "❌ Could not update settings. Please try again later."
	msgSomethingWentWrong = "❌ Something went wrong. Please try again later."
)

// Whole words only, so "this" or "ohio" do not trigger a greeting.
var greetingPattern = regexp.MustCompile(`(?i)\b(hi|hello)\b`)

// BotService routes chat events to the dialogue or to one-shot handlers.
type BotService struct {
	users     interfaces.UserStore
	sessions  interfaces.SessionStore
	messenger interfaces.Messenger
	settings  *SettingsService
	dialogue  *RegistrationDialogue
	log       zerolog.Logger
}

func NewBotService(users interfaces.UserStore, sessions interfaces.SessionStore, messenger interfaces.Messenger, settings *SettingsService, log zerolog.Logger) *BotService {
	return &BotService{
		users:     users,
		sessions:  sessions,
		messenger: messenger,
		settings:  settings,
		dialogue:  NewRegistrationDialogue(users, sessions, messenger, log),
		log:       log.With().Str("component", "bot").Logger(),
	}
}

// HandleUpdate processes one chat event. Errors are logged, never returned to the transport.
func (s *BotService) HandleUpdate(ctx context.Context, msg entities.Message) {
	if err := s.handle(ctx, msg); err != nil {
		s.log.Error().Err(err).
			Int64("user_id", msg.From).
			Int64("chat_id", msg.ChatID).
			Str("command", msg.Command).
			Str("callback", msg.Data).
			Msg("update failed")
	}
}

func (s *BotService) handle(ctx context.Context, msg entities.Message) error {
	sess, err := s.loadSession(ctx, msg.From)
	if err != nil {
		return err
	}

	if !msg.IsCallback && msg.Command == "cancel" {
		return s.dialogue.Cancel(ctx, msg.ChatID, sess)
	}

	if sess.InDialogue() {
		if !msg.IsCallback && msg.Command != "" {
			if err := s.reply(ctx, msg.ChatID, msgFinishFirst); err != nil {
				return err
			}
			return s.dialogue.Reprompt(ctx, msg.ChatID, sess)
		}
		return s.dialogue.Handle(ctx, msg, sess)
	}

	switch {
	case msg.IsCallback:
		return s.handleCallback(ctx, msg, sess)
	case msg.Command != "":
		return s.handleCommand(ctx, msg, sess)
	default:
		return s.handleText(ctx, msg, sess)
	}
}

func (s *BotService) loadSession(ctx context.Context, userID int64) (*entities.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = &entities.Session{UserID: userID}
	}
	return sess, nil
}

func (s *BotService) handleCallback(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if err := s.messenger.AnswerCallback(ctx, msg.CallbackID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", msg.From).Msg("answer callback failed")
	}

	switch msg.Data {
	case CallbackStartRegister:
		return s.register(ctx, msg, sess)
	case CallbackInfo:
		return s.info(ctx, msg, true)
	case CallbackCancel:
		return s.reply(ctx, msg.ChatID, msgNothingToCancel)
	}
	// stale batch buttons and unknown payloads
	s.log.Debug().Int64("user_id", msg.From).Str("callback", msg.Data).Msg("callback ignored")
	return nil
}

func (s *BotService) handleCommand(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	switch msg.Command {
	case "start":
		return s.messenger.SendMessageWithMenu(ctx, msg.ChatID, msgWelcome, CreateWelcomeKeyboard())
	case "register":
		return s.register(ctx, msg, sess)
	case "info":
		return s.info(ctx, msg, false)
	case "feedback":
		return s.openFeedback(ctx, msg, sess)
	case "set_feedback":
		return s.setFeedback(ctx, msg)
	case "add_admin":
		return s.addAdmin(ctx, msg)
	}
	s.log.Debug().Int64("user_id", msg.From).Str("command", msg.Command).Msg("unknown command")
	return nil
}

// handleText: pending feedback first, then the greeting pattern.
func (s *BotService) handleText(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if !msg.HasText {
		return nil
	}
	if sess.AwaitingFeedback {
		return s.captureFeedback(ctx, msg, sess)
	}
	if greetingPattern.MatchString(msg.Text) {
		return s.reply(ctx, msg.ChatID, greeting(msg.FirstName))
	}
	return nil
}

func (s *BotService) register(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	existing, err := s.users.FindByID(ctx, msg.From)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("lookup before register failed")
		return s.reply(ctx, msg.ChatID, msgSomethingWentWrong)
	}
	if existing != nil {
		return s.reply(ctx, msg.ChatID, msgAlreadyRegistered)
	}
	return s.dialogue.Start(ctx, msg.ChatID, sess)
}

// info answers /info and the Info button; the two are worded slightly differently.
func (s *BotService) info(ctx context.Context, msg entities.Message, fromButton bool) error {
	user, err := s.users.FindByID(ctx, msg.From)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("info lookup failed")
		return s.reply(ctx, msg.ChatID, msgSomethingWentWrong)
	}

	if user == nil {
		if fromButton {
			return s.reply(ctx, msg.ChatID, fmt.Sprintf("No registration found for you (ID: %d). Use /register.", msg.From))
		}
		return s.reply(ctx, msg.ChatID, msgNotRegistered)
	}

	header := "Your Registration:"
	if fromButton {
		header = "Your registration:"
	}
	return s.reply(ctx, msg.ChatID, fmt.Sprintf("%s\nName: %s\nMobile: %s\nBatch: %d", header, user.Name, user.Mobile, user.Batch))
}

func (s *BotService) openFeedback(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	if !s.settings.FeedbackAllowed() {
		return s.reply(ctx, msg.ChatID, msgFeedbackClosed)
	}

	user, err := s.users.FindByID(ctx, msg.From)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("feedback lookup failed")
		return s.reply(ctx, msg.ChatID, msgSomethingWentWrong)
	}
	if user == nil {
		return s.reply(ctx, msg.ChatID, msgFeedbackNeedsUser)
	}

	sess.AwaitingFeedback = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return s.reply(ctx, msg.ChatID, msgFeedbackPrompt)
}

// captureFeedback clears the flag before writing so a second message is not captured again.
func (s *BotService) captureFeedback(ctx context.Context, msg entities.Message, sess *entities.Session) error {
	sess.AwaitingFeedback = false
	if err := s.clearSession(ctx, sess); err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("clear feedback flag failed")
		return s.reply(ctx, msg.ChatID, msgFeedbackSaveFailed)
	}

	if err := s.users.UpdateFeedback(ctx, msg.From, msg.Text); err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("DB error saving feedback")
		return s.reply(ctx, msg.ChatID, msgFeedbackSaveFailed)
	}
	s.log.Info().Int64("user_id", msg.From).Msg("feedback stored")
	return s.reply(ctx, msg.ChatID, msgFeedbackThanks)
}

// setFeedback ignores non-admins without a reply.
func (s *BotService) setFeedback(ctx context.Context, msg entities.Message) error {
	if !s.settings.IsAdmin(msg.From) {
		s.log.Debug().Int64("user_id", msg.From).Msg("set_feedback from non-admin ignored")
		return nil
	}

	var allowed bool
	switch strings.ToLower(firstArg(msg.Args)) {
	case "on":
		allowed = true
	case "off":
		allowed = false
	default:
		return s.reply(ctx, msg.ChatID, msgSetFeedbackUsage)
	}

	if err := s.settings.SetFeedbackAllowed(ctx, allowed); err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("persist feedback flag failed")
		return s.reply(ctx, msg.ChatID, msgSettingsSaveFailed)
	}

	state := "DISABLED"
	if allowed {
		state = "ENABLED"
	}
	s.log.Info().Int64("admin_id", msg.From).Bool("feedback_allowed", allowed).Msg("feedback toggled")
	return s.reply(ctx, msg.ChatID, fmt.Sprintf("✅ Feedback is now %s for all users.", state))
}

func (s *BotService) addAdmin(ctx context.Context, msg entities.Message) error {
	if !s.settings.IsAdmin(msg.From) {
		return s.reply(ctx, msg.ChatID, msgAddAdminDenied)
	}

	id, err := strconv.ParseInt(firstArg(msg.Args), 10, 64)
	if err != nil || id == 0 {
		return s.reply(ctx, msg.ChatID, msgAddAdminUsage)
	}

	added, err := s.settings.AddAdmin(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", msg.From).Msg("persist admin list failed")
		return s.reply(ctx, msg.ChatID, msgSettingsSaveFailed)
	}
	if !added {
		return s.reply(ctx, msg.ChatID, fmt.Sprintf("ℹ️ ID %d is already an admin.", id))
	}
	s.log.Info().Int64("admin_id", msg.From).Int64("new_admin_id", id).Msg("admin added")
	return s.reply(ctx, msg.ChatID, fmt.Sprintf("✅ Added admin: %d", id))
}

// clearSession drops an idle session, overwriting it when the delete fails.
func (s *BotService) clearSession(ctx context.Context, sess *entities.Session) error {
	if err := s.sessions.Delete(ctx, sess.UserID); err != nil {
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			return fmt.Errorf("clear session: %w", saveErr)
		}
	}
	return nil
}

func (s *BotService) reply(ctx context.Context, chatID int64, text string) error {
	return s.messenger.SendMessage(ctx, chatID, text)
}

func greeting(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		return "Hi!"
	}
	return "Hi " + name + "!"
}

func firstArg(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
