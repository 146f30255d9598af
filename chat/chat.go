// Package chat connects the bot to the channel over Twitch IRC. It is
// a thin adapter: commands and plain messages are forwarded to the bot
// core with their receive time, and reply or announcement lines are
// sent back with Say. Scoring, state, and scheduling live elsewhere.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/mbhooden/leetbot/bot"
	"github.com/mbhooden/leetbot/config"
)

// ParseCommand splits a "!command arg..." message. ok is false for
// anything that doesn't start with the command prefix; a bare "!" is
// not a command either.
func ParseCommand(text string) (command string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") {
		return "", nil, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Start joins the configured channel and blocks until the connection
// closes or ctx is canceled. Announcement lines from the scheduler are
// drained to the shared channel for as long as the context lives.
func Start(ctx context.Context, cfg *config.Config, b *bot.Bot, announcements <-chan string) error {
	client := twitch.NewClient(cfg.TwitchBotUsername, cfg.TwitchOAuthToken)

	client.OnConnect(func() {
		slog.Info("joined chat", slog.String("channel", cfg.TwitchChannel))
		client.Say(cfg.TwitchChannel, "LeetBot is now online! Type '!help' for commands.")
	})

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		now := time.Now()
		nick := msg.User.Name
		if strings.EqualFold(nick, cfg.TwitchBotUsername) {
			return
		}
		if command, args, ok := ParseCommand(msg.Message); ok {
			for _, line := range b.OnQuery(command, args, now) {
				client.Say(cfg.TwitchChannel, line)
			}
			return
		}
		b.OnMessage(ctx, nick, msg.Message, now)
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case line := <-announcements:
				client.Say(cfg.TwitchChannel, line)
			}
		}
	}()

	// Handle context cancellation by closing the client
	go func() {
		<-ctx.Done()
		if err := client.Disconnect(); err != nil {
			slog.Debug("chat disconnect", slog.Any("err", err))
		}
	}()

	client.Join(cfg.TwitchChannel)
	return client.Connect()
}
