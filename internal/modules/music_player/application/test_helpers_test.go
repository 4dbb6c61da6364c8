package application

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/lavalink"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

func loadedTrack(encoded, title string) lavalink.Track {
	return lavalink.Track{
		Encoded: encoded,
		Info: lavalink.TrackInfo{
			Identifier: encoded,
			Title:      title,
			Author:     "Artist",
			Length:     180_000,
			URI:        "https://tracks.example/" + encoded,
		},
	}
}

func queuedTrack(encoded string) domain.Track {
	return domain.Track{Encoded: encoded, Title: "Song " + encoded, Requester: 123}
}

func completeConnection() domain.Connection {
	channel := snowflake.ID(555)
	return domain.Connection{ChannelID: &channel, SessionID: "sess", Token: "tok", Endpoint: "voice.example"}
}

type playerUpdateCall struct {
	guildID   snowflake.ID
	noReplace bool
	update    lavalink.PlayerUpdate
}

// mockNode is a scriptable lavalink.Node. Load results are keyed by the
// requested identifier; every REST call is recorded.
type mockNode struct {
	mu sync.Mutex

	address string
	session string
	status  lavalink.Status

	loadResults map[string]*lavalink.LoadResult
	loadErr     error
	remote      *lavalink.Player
	getErr      error
	updateRes   *lavalink.Player
	updateErr   error
	destroyErr  error

	loads    []string
	updates  []playerUpdateCall
	destroys []snowflake.ID
}

func newMockNode(address string) *mockNode {
	return &mockNode{
		address:     address,
		session:     "session-" + address,
		status:      lavalink.StatusConnected,
		loadResults: make(map[string]*lavalink.LoadResult),
	}
}

func (m *mockNode) Address() string { return m.address }

func (m *mockNode) SessionID() string { return m.session }

func (m *mockNode) Status() lavalink.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockNode) setStatus(status lavalink.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

func (m *mockNode) LoadTracks(_ context.Context, identifier string) (*lavalink.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, identifier)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if result, ok := m.loadResults[identifier]; ok {
		return result, nil
	}
	return &lavalink.LoadResult{LoadType: lavalink.LoadTypeNoMatches}, nil
}

func (m *mockNode) UpdatePlayer(_ context.Context, guildID snowflake.ID, noReplace bool, update lavalink.PlayerUpdate) (*lavalink.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, playerUpdateCall{guildID: guildID, noReplace: noReplace, update: update})
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updateRes != nil {
		return m.updateRes, nil
	}
	return &lavalink.Player{GuildID: guildID}, nil
}

func (m *mockNode) GetPlayer(_ context.Context, _ snowflake.ID) (*lavalink.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.remote, nil
}

func (m *mockNode) DestroyPlayer(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroys = append(m.destroys, guildID)
	return m.destroyErr
}

func (m *mockNode) updateCalls() []playerUpdateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]playerUpdateCall, len(m.updates))
	copy(calls, m.updates)
	return calls
}

func (m *mockNode) loadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.loads))
	copy(calls, m.loads)
	return calls
}

func (m *mockNode) destroyCalls() []snowflake.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]snowflake.ID, len(m.destroys))
	copy(calls, m.destroys)
	return calls
}

// mockVoice is a scriptable ports.VoiceManager.
type mockVoice struct {
	mu          sync.Mutex
	connections map[snowflake.ID]domain.Connection
	joined      []snowflake.ID
	left        []snowflake.ID
	joinErr     error
	leaveErr    error
}

func newMockVoice() *mockVoice {
	return &mockVoice{connections: make(map[snowflake.ID]domain.Connection)}
}

func (m *mockVoice) Join(_ context.Context, guildID, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joined = append(m.joined, guildID)
	return m.joinErr
}

func (m *mockVoice) Leave(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.left = append(m.left, guildID)
	return m.leaveErr
}

func (m *mockVoice) ConnectionInfo(guildID snowflake.ID) (domain.Connection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	connection, ok := m.connections[guildID]
	return connection, ok
}

func (m *mockVoice) leftGuilds() []snowflake.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	left := make([]snowflake.ID, len(m.left))
	copy(left, m.left)
	return left
}

// mockCache is a scriptable ports.GuildCache.
type mockCache struct {
	mu           sync.Mutex
	channels     map[snowflake.ID]ports.ChannelInfo
	userChannels map[snowflake.ID]snowflake.ID
}

func newMockCache() *mockCache {
	return &mockCache{
		channels:     make(map[snowflake.ID]ports.ChannelInfo),
		userChannels: make(map[snowflake.ID]snowflake.ID),
	}
}

func (m *mockCache) setChannel(channelID snowflake.ID, info ports.ChannelInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channelID] = info
}

func (m *mockCache) ChannelInfo(channelID snowflake.ID) (ports.ChannelInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.channels[channelID]
	return info, ok
}

func (m *mockCache) UserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	channelID, ok := m.userChannels[userID]
	return channelID, ok
}

// mockMessenger records panel operations and hands out sequential message
// ids.
type mockMessenger struct {
	mu        sync.Mutex
	sent      []ports.PanelView
	updated   []ports.PanelView
	deleted   []domain.NowPlayingMessage
	sendErr   error
	updateErr error
	deleteErr error
	nextID    snowflake.ID
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{nextID: 1000}
}

func (m *mockMessenger) SendPanel(_ context.Context, channelID snowflake.ID, view ports.PanelView) (domain.NowPlayingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return domain.NowPlayingMessage{}, m.sendErr
	}
	m.sent = append(m.sent, view)
	m.nextID++
	return domain.NowPlayingMessage{ChannelID: channelID, MessageID: m.nextID}, nil
}

func (m *mockMessenger) UpdatePanel(_ context.Context, _ domain.NowPlayingMessage, view ports.PanelView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, view)
	return nil
}

func (m *mockMessenger) DeletePanel(_ context.Context, msg domain.NowPlayingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, msg)
	return nil
}

func (m *mockMessenger) sentViews() []ports.PanelView {
	m.mu.Lock()
	defer m.mu.Unlock()
	views := make([]ports.PanelView, len(m.sent))
	copy(views, m.sent)
	return views
}

func (m *mockMessenger) updatedViews() []ports.PanelView {
	m.mu.Lock()
	defer m.mu.Unlock()
	views := make([]ports.PanelView, len(m.updated))
	copy(views, m.updated)
	return views
}

func (m *mockMessenger) deletedPanels() []domain.NowPlayingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	panels := make([]domain.NowPlayingMessage, len(m.deleted))
	copy(panels, m.deleted)
	return panels
}

func newTestPlayer(node *mockNode, voice *mockVoice) *Player {
	return NewPlayer(1, "en-US", 42, node, voice, completeConnection(), 10, "ytsearch:")
}

// testOrchestrator bundles an orchestrator with its mocks.
type testOrchestrator struct {
	orch      *Orchestrator
	pool      *lavalink.Pool
	voice     *mockVoice
	cache     *mockCache
	messenger *mockMessenger
	fatal     chan error
}

func newTestOrchestrator(idleTimeout time.Duration, nodes ...*mockNode) *testOrchestrator {
	pool := lavalink.NewPool()
	for _, node := range nodes {
		pool.Add(node)
	}

	voice := newMockVoice()
	cache := newMockCache()
	messenger := newMockMessenger()
	fatal := make(chan error, 1)

	orch := NewOrchestrator(OrchestratorConfig{
		BotID:        900,
		Voice:        voice,
		Guilds:       cache,
		Messenger:    messenger,
		Pool:         pool,
		Fatal:        fatal,
		QueueSize:    10,
		SearchPrefix: "ytsearch:",
		IdleTimeout:  idleTimeout,
	})

	return &testOrchestrator{
		orch:      orch,
		pool:      pool,
		voice:     voice,
		cache:     cache,
		messenger: messenger,
		fatal:     fatal,
	}
}
