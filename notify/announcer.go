package notify

import (
	"context"
	"fmt"

	"raffler/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const defaultQueueSize = 64

// EmbedSender is the part of a discordgo session the announcer uses
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts raffle events to a Discord channel. Events are queued by
// HandleEvent and sent from a separate goroutine started with Start.
type Announcer struct {
	sender    EmbedSender
	channelID string
	queue     chan *discordgo.MessageEmbed
}

// NewAnnouncer creates an announcer for the given channel
func NewAnnouncer(sender EmbedSender, channelID string) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan *discordgo.MessageEmbed, defaultQueueSize),
	}
}

// NewSession opens a Discord bot session for posting announcements
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}
	return dg, nil
}

// EventTypes lists the events the announcer posts
func (a *Announcer) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeRoundCalculating,
		events.EventTypeWinnerPicked,
		events.EventTypeSettlementFailed,
	}
}

// HandleEvent queues an announcement. It never blocks: when the queue is
// full the announcement is dropped.
func (a *Announcer) HandleEvent(ctx context.Context, event events.Event) error {
	embed := embedFor(event)
	if embed == nil {
		return nil
	}

	select {
	case a.queue <- embed:
	default:
		log.WithField("eventType", event.Type()).Warn("Announcement queue full, dropping message")
	}
	return nil
}

// Start sends queued announcements until stopped and returns a function that
// stops the sender and waits for it
func (a *Announcer) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		log.WithField("channelId", a.channelID).Info("Discord announcer started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Discord announcer shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Discord announcer shutting down (stop requested)...")
				return
			case embed := <-a.queue:
				a.send(embed)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-doneChan
	}
}

func (a *Announcer) send(embed *discordgo.MessageEmbed) {
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"channelId": a.channelID,
			"title":     embed.Title,
		}).Error("Failed to post raffle announcement")
	}
}
