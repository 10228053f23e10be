package notifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gloggi/ausbildung-api/internal/config"
	"github.com/gloggi/ausbildung-api/internal/models"
)

// Notifier tells staff about new registrations and emergency sheets.
type Notifier interface {
	NotifyRegistration(user models.User, course models.Course, registration models.Registration) error
	NotifyEmergencySheet(registration models.Registration) error
}

// messageSender is the part of a discordgo session the notifier uses.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   messageSender
	channelID string
}

func NewDiscordNotifier(session messageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewFromConfig opens a bot session. It returns an error when the bot is not
// configured; callers run without notifications then.
func NewFromConfig(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" || cfg.DiscordNotificationsChannelID == "" {
		return nil, errors.New("discord bot token or channel not configured")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("discordgo.New -> %w", err)
	}
	return NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID), nil
}

// send posts message to the channel. Every failure is logged here since
// handlers do not fail a request over a notification.
func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		err := errors.New("discord session is nil")
		zap.L().Warn("failed to send discord message", zap.Error(err))
		return err
	}
	if n.channelID == "" {
		err := errors.New("discord channel ID is empty")
		zap.L().Warn("failed to send discord message", zap.Error(err))
		return err
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		zap.L().Warn("failed to send discord message", zap.String("channel", n.channelID), zap.Error(err))
		return err
	}
	return nil
}

func (n *DiscordNotifier) NotifyRegistration(user models.User, course models.Course, registration models.Registration) error {
	var diet []string
	if registration.Vegetarian {
		diet = append(diet, "vegetarisch")
	}
	if registration.NoPork {
		diet = append(diet, "kein Schweinefleisch")
	}
	dietStr := ""
	if len(diet) > 0 {
		dietStr = fmt.Sprintf("\n**Essen:** %s", strings.Join(diet, ", "))
	}

	level, _ := models.LevelChoices.Label(registration.Level)
	message := fmt.Sprintf("📝 **Neue Anmeldung**\n**Kurs:** %s\n**Teilnehmer:** %s (%s)\n**Stufe:** %s%s",
		course.Name,
		registration.String(),
		user.Username,
		level,
		dietStr,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyEmergencySheet(registration models.Registration) error {
	course := ""
	if registration.Course != nil {
		course = " für " + registration.Course.Name
	}
	return n.send(fmt.Sprintf("🩹 **Notfallblatt erhalten**\n%s%s", registration.String(), course))
}
