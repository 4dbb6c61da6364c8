package presentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// queuePageSize is the number of tracks shown per /queue page.
const queuePageSize = 10

// Handlers implements the module's slash commands on top of the orchestrator.
type Handlers struct {
	orchestrator *application.Orchestrator
	voice        ports.VoiceManager
	guilds       ports.GuildCache
	localizer    *i18n.Localizer
}

// NewHandlers creates the command handlers.
func NewHandlers(
	orchestrator *application.Orchestrator,
	voice ports.VoiceManager,
	guilds ports.GuildCache,
	localizer *i18n.Localizer,
) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		voice:        voice,
		guilds:       guilds,
		localizer:    localizer,
	}
}

// invocation is the parsed identity of one guild command invocation.
type invocation struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
	locale    string
}

// parseInvocation extracts the guild, caller and text channel behind an
// interaction. The second return is false when the handler should stop: a
// localized refusal has already been sent for commands used outside a guild.
func (h *Handlers) parseInvocation(i *discordgo.InteractionCreate, r bot.Responder) (invocation, bool, error) {
	locale := bot.InteractionLocale(i)

	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return invocation{}, false, h.respondError(r, locale, "guild_only")
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return invocation{}, false, fmt.Errorf("parsing guild id: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return invocation{}, false, fmt.Errorf("parsing user id: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return invocation{}, false, fmt.Errorf("parsing channel id: %w", err)
	}

	return invocation{
		guildID:   guildID,
		userID:    userID,
		channelID: channelID,
		locale:    locale,
	}, true, nil
}

// getPlayer returns the guild's player. A nil player with a nil error means
// the guild has none and a localized refusal was already sent.
func (h *Handlers) getPlayer(inv invocation, r bot.Responder) (*application.Player, error) {
	player, err := h.orchestrator.Get(inv.guildID)
	if errors.Is(err, application.ErrPlayerNotFound) {
		return nil, h.respondError(r, inv.locale, "no_player")
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// ensurePlayer returns the guild's player, creating it when the caller is in
// a voice channel. A nil player with a nil error means a localized refusal
// was already sent.
func (h *Handlers) ensurePlayer(ctx context.Context, inv invocation, r bot.Responder) (*application.Player, error) {
	player, err := h.orchestrator.Get(inv.guildID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, application.ErrPlayerNotFound) {
		return nil, err
	}

	channelID, ok := h.guilds.UserVoiceChannel(inv.guildID, inv.userID)
	if !ok {
		return nil, h.respondError(r, inv.locale, "not_in_voice")
	}
	if err := h.voice.Join(ctx, inv.guildID, channelID); err != nil {
		return nil, fmt.Errorf("joining voice channel: %w", err)
	}
	return h.orchestrator.Init(ctx, inv.guildID, inv.locale, inv.channelID)
}

// HandleJoin handles the /join command.
func (h *Handlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	ctx := context.Background()

	var channelID snowflake.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "channel" {
			channelID, _ = snowflake.Parse(opt.ChannelValue(s).ID)
		}
	}
	if channelID == 0 {
		var found bool
		channelID, found = h.guilds.UserVoiceChannel(inv.guildID, inv.userID)
		if !found {
			return h.respondError(r, inv.locale, "not_in_voice")
		}
	}

	if err := h.voice.Join(ctx, inv.guildID, channelID); err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}
	if _, err := h.orchestrator.Init(ctx, inv.guildID, inv.locale, inv.channelID); err != nil {
		return err
	}

	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "join", "connected", map[string]string{
		"channel": fmt.Sprintf("<#%d>", channelID),
	}))
}

// HandleLeave handles the /leave command.
func (h *Handlers) HandleLeave(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	ctx := context.Background()

	err = h.orchestrator.Destroy(ctx, inv.guildID)
	switch {
	case errors.Is(err, application.ErrPlayerNotFound):
		// No player, but the bot may still sit in a channel from a failed
		// init. Leave directly in that case.
		if _, connected := h.voice.ConnectionInfo(inv.guildID); !connected {
			return h.respondError(r, inv.locale, "not_connected")
		}
		if err := h.voice.Leave(ctx, inv.guildID); err != nil {
			return fmt.Errorf("leaving voice channel: %w", err)
		}
	case err != nil:
		return err
	}

	return h.respondSuccess(r, h.localizer.Text(inv.locale, "leave", "disconnected"))
}

// HandlePlay handles the /play command.
func (h *Handlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	ctx := context.Background()

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	player, err := h.ensurePlayer(ctx, inv, r)
	if player == nil {
		return err
	}

	result, err := player.Play(ctx, query, inv.userID)
	if errors.Is(err, application.ErrNoMatches) {
		return h.respondError(r, inv.locale, "no_matches")
	}
	if err != nil {
		return err
	}
	if result.Count == 0 {
		return h.respondError(r, inv.locale, "queue_full")
	}

	var description string
	if result.Count == 1 {
		description = h.localizer.Textf(inv.locale, "play", "added", map[string]string{
			"track": trackDisplay(*result.Track),
		})
	} else {
		description = h.localizer.Textf(inv.locale, "play", "added_many", map[string]string{
			"count": strconv.Itoa(result.Count),
		})
	}
	if result.Truncated {
		description += "\n" + h.localizer.Text(inv.locale, "play", "truncated")
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, description)
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}
	ctx := context.Background()

	track, err := player.Skip(ctx)
	if err != nil {
		return err
	}
	if track == nil {
		return h.respondError(r, inv.locale, "queue_empty")
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "skip", "skipped", map[string]string{
		"track": trackDisplay(*track),
	}))
}

// HandlePrevious handles the /prev command.
func (h *Handlers) HandlePrevious(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}
	ctx := context.Background()

	track, err := player.Previous(ctx)
	if err != nil {
		return err
	}
	if track == nil {
		return h.respondError(r, inv.locale, "queue_empty")
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "prev", "previous", map[string]string{
		"track": trackDisplay(*track),
	}))
}

// HandleSeek handles the /seek command.
func (h *Handlers) HandleSeek(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}

	var seconds int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "seconds" {
			seconds = opt.IntValue()
		}
	}

	result, err := player.Seek(context.Background(), time.Duration(seconds)*time.Second)
	if err != nil {
		return err
	}
	if result == nil {
		return h.respondError(r, inv.locale, "nothing_playing")
	}

	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "seek", "seeked", map[string]string{
		"track":    trackDisplay(result.Track),
		"position": domain.FormatDuration(result.Position),
		"total":    result.Track.FormattedLength(),
	}))
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}
	ctx := context.Background()

	if err := player.SetPaused(ctx, true); err != nil {
		return err
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, h.localizer.Text(inv.locale, "pause", "paused"))
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}
	ctx := context.Background()

	if err := player.SetPaused(ctx, false); err != nil {
		return err
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, h.localizer.Text(inv.locale, "resume", "resumed"))
}

// HandleLoop handles the /loop command. Without a mode option the command
// cycles to the next mode, mirroring the panel's loop button.
func (h *Handlers) HandleLoop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}

	var modeStr string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			modeStr = opt.StringValue()
		}
	}

	queue := player.Queue()
	mode := queue.Mode().Cycle()
	if modeStr != "" {
		mode = domain.ParseLoopMode(modeStr)
	}
	queue.SetMode(mode)

	h.orchestrator.RefreshPanel(context.Background(), player)
	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "loop", "changed", map[string]string{
		"mode": h.localizer.Text(inv.locale, "loop", mode.String()),
	}))
}

// HandleShuffle handles the /shuffle command.
func (h *Handlers) HandleShuffle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}

	queue := player.Queue()
	if queue.Len() == 0 {
		return h.respondError(r, inv.locale, "queue_empty")
	}
	queue.Shuffle()

	h.orchestrator.RefreshPanel(context.Background(), player)
	return h.respondSuccess(r, h.localizer.Textf(inv.locale, "shuffle", "shuffled", map[string]string{
		"count": strconv.Itoa(queue.Len()),
	}))
}

// HandleQueue handles the /queue command.
func (h *Handlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}

	queue := player.Queue()
	length := queue.Len()
	mode := h.localizer.Text(inv.locale, "loop", queue.Mode().String())

	if length == 0 {
		return h.respondEmbed(r, &discordgo.MessageEmbed{
			Title:       h.localizer.Text(inv.locale, "queue", "title"),
			Description: h.localizer.Text(inv.locale, "queue", "empty"),
			Footer: &discordgo.MessageEmbedFooter{
				Text: h.localizer.Textf(inv.locale, "queue", "footer", map[string]string{
					"page": "1", "pages": "1", "count": "0", "mode": mode,
				}),
			},
		})
	}

	current := queue.Index()
	pages := (length + queuePageSize - 1) / queuePageSize
	page := current/queuePageSize + 1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * queuePageSize
	var sb strings.Builder
	for idx, track := range queue.Slice(start, queuePageSize) {
		position := start + idx
		marker := ""
		if position == current {
			marker = "▶ "
		}
		// Escape the period so Discord does not reformat lines as a list.
		fmt.Fprintf(&sb, "%s%d\\. %s - %s\n", marker, position+1, trackDisplay(track), track.Author)
	}

	return h.respondEmbed(r, &discordgo.MessageEmbed{
		Title:       h.localizer.Text(inv.locale, "queue", "title"),
		Description: sb.String(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: h.localizer.Textf(inv.locale, "queue", "footer", map[string]string{
				"page":  strconv.Itoa(page),
				"pages": strconv.Itoa(pages),
				"count": strconv.Itoa(length),
				"mode":  mode,
			}),
		},
	})
}

// HandleStop handles the /stop command.
func (h *Handlers) HandleStop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok, err := h.parseInvocation(i, r)
	if !ok {
		return err
	}
	player, err := h.getPlayer(inv, r)
	if player == nil {
		return err
	}
	ctx := context.Background()

	if err := player.Stop(ctx); err != nil {
		return err
	}

	h.orchestrator.RefreshPanel(ctx, player)
	return h.respondSuccess(r, h.localizer.Text(inv.locale, "stop", "stopped"))
}

// Response helpers.

func (h *Handlers) respondSuccess(r bot.Responder, description string) error {
	return h.respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

// respondError sends a localized refusal from the error catalog.
func (h *Handlers) respondError(r bot.Responder, locale, key string) error {
	return h.respondEmbed(r, &discordgo.MessageEmbed{
		Title:       h.localizer.Text(locale, "error", "title"),
		Description: h.localizer.Text(locale, "error", key),
		Color:       colorError,
	})
}

func (h *Handlers) respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// trackDisplay renders a track as a markdown link, or bold when it carries no
// URI.
func trackDisplay(track domain.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}
