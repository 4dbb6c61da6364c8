package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/lavalink"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// Player is the per-guild playback state machine. It owns the guild's queue
// and voice connection, and translates user operations into REST calls on
// its node. Players are created and destroyed by the Orchestrator; once
// destroyed, every operation fails with ErrPlayerNotFound.
type Player struct {
	guildID       snowflake.ID
	locale        string
	textChannelID snowflake.ID
	node          lavalink.Node
	voice         ports.VoiceManager
	queue         *domain.Queue
	searchPrefix  string

	mu         sync.RWMutex
	connection domain.Connection
	paused     bool
	panel      *domain.NowPlayingMessage

	destroyed atomic.Bool
}

// PlayResult describes what a play request did.
type PlayResult struct {
	Track     *domain.Track // track that will play, or the first appended
	Count     int           // number of tracks appended
	Playing   bool          // true when a track was pushed to the node
	Truncated bool          // true when the queue limit cut the batch
}

// SeekResult reports the position after a seek.
type SeekResult struct {
	Position time.Duration
	Total    time.Duration
	Track    domain.Track
}

// NewPlayer creates a player bound to a node and an initial voice
// connection.
func NewPlayer(
	guildID snowflake.ID,
	locale string,
	textChannelID snowflake.ID,
	node lavalink.Node,
	voice ports.VoiceManager,
	connection domain.Connection,
	queueSize int,
	searchPrefix string,
) *Player {
	return &Player{
		guildID:       guildID,
		locale:        locale,
		textChannelID: textChannelID,
		node:          node,
		voice:         voice,
		queue:         domain.NewQueue(queueSize),
		searchPrefix:  searchPrefix,
		connection:    connection,
	}
}

// GuildID returns the guild this player belongs to.
func (p *Player) GuildID() snowflake.ID {
	return p.guildID
}

// Locale returns the guild locale used for panel rendering.
func (p *Player) Locale() string {
	return p.locale
}

// TextChannelID returns the channel the now-playing panel lives in.
func (p *Player) TextChannelID() snowflake.ID {
	return p.textChannelID
}

// Node returns the lavalink node this player renders on.
func (p *Player) Node() lavalink.Node {
	return p.node
}

// Queue returns the player's queue.
func (p *Player) Queue() *domain.Queue {
	return p.queue
}

// Paused returns the local paused flag.
func (p *Player) Paused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// Connection returns a copy of the current voice connection.
func (p *Player) Connection() domain.Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connection
}

// Panel returns the now-playing message handle, or nil before the first
// panel is sent.
func (p *Player) Panel() *domain.NowPlayingMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.panel
}

// SetPanel records the now-playing message handle.
func (p *Player) SetPanel(msg *domain.NowPlayingMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panel = msg
}

// Destroyed reports whether Destroy has been called.
func (p *Player) Destroyed() bool {
	return p.destroyed.Load()
}

// Play resolves query into tracks, appends them to the queue and starts
// playback when the node has nothing loaded for this guild. A query that
// resolves to nothing is retried with the configured search prefix before
// giving up with ErrNoMatches.
func (p *Player) Play(ctx context.Context, query string, requester snowflake.ID) (PlayResult, error) {
	if err := p.checkAlive(); err != nil {
		return PlayResult{}, err
	}

	result, err := p.node.LoadTracks(ctx, query)
	if err != nil {
		return PlayResult{}, fmt.Errorf("loading tracks: %w", err)
	}
	if len(result.Tracks) == 0 {
		result, err = p.node.LoadTracks(ctx, p.searchPrefix+query)
		if err != nil {
			return PlayResult{}, fmt.Errorf("loading tracks: %w", err)
		}
		if len(result.Tracks) == 0 {
			return PlayResult{}, ErrNoMatches
		}
	}

	// The player may have been destroyed while the load was in flight.
	if err := p.checkAlive(); err != nil {
		return PlayResult{}, err
	}

	loaded := result.Tracks
	if result.LoadType == lavalink.LoadTypeSearchResult {
		loaded = loaded[:1]
	}
	tracks := make([]domain.Track, len(loaded))
	for i, t := range loaded {
		tracks[i] = trackFromLoad(t, requester)
	}

	added := p.queue.Add(tracks...)

	remote, err := p.node.GetPlayer(ctx, p.guildID)
	if err != nil {
		return PlayResult{}, fmt.Errorf("fetching remote player: %w", err)
	}

	res := PlayResult{Count: len(added.Added), Truncated: added.Truncated}
	if len(added.Added) > 0 {
		first := added.Added[0]
		res.Track = &first
	}

	if remote != nil && remote.Track != nil {
		return res, nil
	}

	start := added.Offset + max(0, result.PlaylistInfo.SelectedTrack)
	if length := p.queue.Len(); start >= length {
		start = length - 1
	}
	if track, ok := p.queue.SetIndex(start); ok {
		res.Track = &track
	}

	playing, err := p.startPlaying(ctx)
	if err != nil {
		return res, fmt.Errorf("starting playback: %w", err)
	}
	res.Playing = playing
	return res, nil
}

// Skip moves one track forward with wrap-around and starts it. Returns nil
// when the queue is empty.
func (p *Player) Skip(ctx context.Context) (*domain.Track, error) {
	if err := p.checkAlive(); err != nil {
		return nil, err
	}
	track, ok := p.queue.Skip()
	if !ok {
		return nil, nil
	}
	if _, err := p.startPlaying(ctx); err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}
	return &track, nil
}

// Previous moves one track back with wrap-around and starts it. Returns nil
// when the queue is empty.
func (p *Player) Previous(ctx context.Context) (*domain.Track, error) {
	if err := p.checkAlive(); err != nil {
		return nil, err
	}
	track, ok := p.queue.Previous()
	if !ok {
		return nil, nil
	}
	if _, err := p.startPlaying(ctx); err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}
	return &track, nil
}

// Next reacts to a finished track: advance the queue per the loop mode and
// start the next track, or mark the player paused when nothing should
// autoplay. No REST call is issued in the latter case.
func (p *Player) Next(ctx context.Context) error {
	if err := p.checkAlive(); err != nil {
		return err
	}
	if _, ok := p.queue.Advance(); !ok {
		p.setLocalPaused(true)
		return nil
	}
	if _, err := p.startPlaying(ctx); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	return nil
}

// SetPaused pauses or resumes playback. Unpausing a guild whose node lost
// its track re-pushes the current track so the resume is audible.
func (p *Player) SetPaused(ctx context.Context, paused bool) error {
	if err := p.checkAlive(); err != nil {
		return err
	}

	remote, err := p.node.GetPlayer(ctx, p.guildID)
	if err != nil {
		return fmt.Errorf("fetching remote player: %w", err)
	}

	if remote == nil {
		p.setLocalPaused(paused)
		if !paused {
			if _, err := p.startPlaying(ctx); err != nil {
				return fmt.Errorf("starting playback: %w", err)
			}
		}
		return nil
	}

	update := lavalink.PlayerUpdate{Paused: &paused}
	if remote.Track == nil && !paused {
		if track, ok := p.queue.Current(); ok {
			if conn := p.Connection(); conn.Complete() {
				update.EncodedTrack = lavalink.PlayTrack(track.Encoded)
				update.Voice = voiceStateOf(conn)
			}
		}
	}
	if _, err := p.node.UpdatePlayer(ctx, p.guildID, true, update); err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	p.setLocalPaused(paused)
	return nil
}

// Seek jumps to a position in the current track. Returns nil when the node
// has no track loaded or the queue is empty.
func (p *Player) Seek(ctx context.Context, position time.Duration) (*SeekResult, error) {
	if err := p.checkAlive(); err != nil {
		return nil, err
	}

	ms := position.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	remote, err := p.node.UpdatePlayer(ctx, p.guildID, false, lavalink.PlayerUpdate{Position: &ms})
	if err != nil {
		return nil, fmt.Errorf("seeking: %w", err)
	}

	current, ok := p.queue.Current()
	if remote == nil || remote.Track == nil || !ok {
		return nil, nil
	}
	return &SeekResult{
		Position: time.Duration(remote.Track.Info.Position) * time.Millisecond,
		Total:    current.Length,
		Track:    current,
	}, nil
}

// Stop clears the queue and tells the node to drop the current track. The
// player itself stays alive.
func (p *Player) Stop(ctx context.Context) error {
	if err := p.checkAlive(); err != nil {
		return err
	}
	p.queue.Clear()
	p.setLocalPaused(false)
	update := lavalink.PlayerUpdate{EncodedTrack: lavalink.StopTrack()}
	if _, err := p.node.UpdatePlayer(ctx, p.guildID, false, update); err != nil {
		return fmt.Errorf("stopping playback: %w", err)
	}
	return nil
}

// UpdateConnection pushes the voice connection to the node. Incomplete
// connections are never sent; the call is a no-op until the gateway has
// delivered session, token and endpoint.
func (p *Player) UpdateConnection(ctx context.Context) error {
	if err := p.checkAlive(); err != nil {
		return err
	}
	conn := p.Connection()
	if !conn.Complete() {
		return nil
	}
	update := lavalink.PlayerUpdate{Voice: voiceStateOf(conn)}
	if _, err := p.node.UpdatePlayer(ctx, p.guildID, true, update); err != nil {
		return fmt.Errorf("pushing voice state: %w", err)
	}
	return nil
}

// SetVoiceState records the session id and channel from a gateway
// voice-state update.
func (p *Player) SetVoiceState(sessionID string, channelID *snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connection.SessionID = sessionID
	p.connection.ChannelID = channelID
}

// SetVoiceServer records the token and endpoint from a gateway voice-server
// update. An empty endpoint keeps the previous one.
func (p *Player) SetVoiceServer(token, endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connection.Token = token
	if endpoint != "" {
		p.connection.Endpoint = endpoint
	}
}

// Destroy leaves the voice channel and removes the remote player. It is
// idempotent; only the first call does any work. The node call is skipped
// when the node is no longer connected.
func (p *Player) Destroy(ctx context.Context) error {
	if !p.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := p.voice.Leave(ctx, p.guildID); err != nil {
		errs = append(errs, fmt.Errorf("leaving voice channel: %w", err))
	}
	if p.node.Status() == lavalink.StatusConnected {
		if err := p.node.DestroyPlayer(ctx, p.guildID); err != nil {
			errs = append(errs, fmt.Errorf("destroying remote player: %w", err))
		}
	}
	return errors.Join(errs...)
}

// startPlaying pushes the current track with the voice state and paused
// flag. It reports false without error when there is no track or the
// connection is incomplete.
func (p *Player) startPlaying(ctx context.Context) (bool, error) {
	track, ok := p.queue.Current()
	if !ok {
		return false, nil
	}

	p.mu.RLock()
	conn := p.connection
	paused := p.paused
	p.mu.RUnlock()
	if !conn.Complete() {
		return false, nil
	}

	update := lavalink.PlayerUpdate{
		EncodedTrack: lavalink.PlayTrack(track.Encoded),
		Voice:        voiceStateOf(conn),
		Paused:       &paused,
	}
	if _, err := p.node.UpdatePlayer(ctx, p.guildID, false, update); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Player) checkAlive() error {
	if p.destroyed.Load() {
		return ErrPlayerNotFound
	}
	return nil
}

func (p *Player) setLocalPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = paused
}

func voiceStateOf(conn domain.Connection) *lavalink.VoiceState {
	return &lavalink.VoiceState{
		Token:     conn.Token,
		Endpoint:  conn.Endpoint,
		SessionID: conn.SessionID,
	}
}

func trackFromLoad(t lavalink.Track, requester snowflake.ID) domain.Track {
	return domain.Track{
		Encoded:    t.Encoded,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		Length:     time.Duration(t.Info.Length) * time.Millisecond,
		URI:        t.Info.URI,
		ArtworkURL: t.Info.ArtworkURL,
		Stream:     t.Info.IsStream,
		Requester:  requester,
	}
}
